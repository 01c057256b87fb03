package metric

import (
	"strings"
	"time"
)

// Type identifies what a truth metric measures.
type Type string

const (
	TypeAccuracy     Type = "accuracy"
	TypeConsistency  Type = "consistency"
	TypeCompleteness Type = "completeness"
	TypeTimeliness   Type = "timeliness"
	TypeReliability  Type = "reliability"
)

// VerificationMethod describes how a claim was verified.
type VerificationMethod string

const (
	VerificationAutomated VerificationMethod = "automated"
	VerificationHuman     VerificationMethod = "human"
	VerificationHybrid    VerificationMethod = "hybrid"
)

// Severity classifies a validation error.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Context carries the task metadata attached to a metric by the
// verification pipeline.
type Context struct {
	TaskType           string             `json:"task_type"`
	Complexity         string             `json:"complexity"`
	VerificationMethod VerificationMethod `json:"verification_method"`
}

// ValidationError is one failure found while validating a claim.
type ValidationError struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
}

// AutomatedCheck records a single automated validation step.
type AutomatedCheck struct {
	Name          string  `json:"name"`
	Passed        bool    `json:"passed"`
	ExecutionTime float64 `json:"execution_time_ms"`
}

// Validation is the outcome of validating the claim behind a metric.
type Validation struct {
	IsValid         bool              `json:"is_valid"`
	Errors          []ValidationError `json:"errors,omitempty"`
	AutomatedChecks []AutomatedCheck  `json:"automated_checks,omitempty"`
}

// TruthMetric is one verification observation emitted by the validation
// pipeline. Immutable once created; the engine only reads it.
type TruthMetric struct {
	Timestamp  time.Time  `json:"timestamp"`
	MetricType Type       `json:"metric_type"`
	Value      float64    `json:"value"`      // 0..1
	Confidence float64    `json:"confidence"` // 0..1 weight
	AgentID    string     `json:"agent_id"`
	Context    Context    `json:"context"`
	Validation Validation `json:"validation"`
}

// Normalize defaults missing or out-of-range fields in place. Ingestion is a
// best-effort sink: malformed input is repaired, never rejected.
func (m *TruthMetric) Normalize(now time.Time) {
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	if m.MetricType == "" {
		m.MetricType = TypeAccuracy
	}
	m.Value = clamp01(m.Value)
	if m.Confidence <= 0 {
		m.Confidence = 0.5
	}
	m.Confidence = clamp01(m.Confidence)
	if m.AgentID == "" {
		m.AgentID = "unknown"
	}
	if m.Context.TaskType == "" {
		m.Context.TaskType = "general"
	}
	if m.Context.Complexity == "" {
		m.Context.Complexity = "medium"
	}
	switch m.Context.VerificationMethod {
	case VerificationAutomated, VerificationHuman, VerificationHybrid:
	default:
		m.Context.VerificationMethod = VerificationAutomated
	}
	for i := range m.Validation.Errors {
		switch m.Validation.Errors[i].Severity {
		case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		default:
			m.Validation.Errors[i].Severity = SeverityLow
		}
		if m.Validation.Errors[i].Type == "" {
			m.Validation.Errors[i].Type = "unspecified"
		}
	}
}

// IsCritical reports whether this metric must bypass batching and refresh
// real-time aggregates immediately.
func (m *TruthMetric) IsCritical() bool {
	if m.MetricType == TypeAccuracy {
		return true
	}
	if m.Value < 0.7 {
		return true
	}
	for _, e := range m.Validation.Errors {
		if e.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// HumanIntervened reports whether a human took part in verification.
func (m *TruthMetric) HumanIntervened() bool {
	return m.Context.VerificationMethod != VerificationAutomated
}

// CriticalErrorCount returns how many validation errors are critical.
func (m *TruthMetric) CriticalErrorCount() int {
	n := 0
	for _, e := range m.Validation.Errors {
		if e.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// AccuracyBucket maps a value to its reporting band.
func AccuracyBucket(value float64) string {
	switch {
	case value >= 0.95:
		return "95-100%"
	case value >= 0.9:
		return "90-95%"
	case value >= 0.8:
		return "80-90%"
	case value >= 0.7:
		return "70-80%"
	default:
		return "<70%"
	}
}

// ParseType returns the metric type for a string, defaulting to accuracy.
func ParseType(s string) Type {
	switch Type(strings.ToLower(s)) {
	case TypeConsistency:
		return TypeConsistency
	case TypeCompleteness:
		return TypeCompleteness
	case TypeTimeliness:
		return TypeTimeliness
	case TypeReliability:
		return TypeReliability
	default:
		return TypeAccuracy
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
