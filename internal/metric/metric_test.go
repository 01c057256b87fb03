package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaultsEmptyMetric(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	var m TruthMetric
	m.Normalize(now)

	assert.Equal(t, now, m.Timestamp)
	assert.Equal(t, TypeAccuracy, m.MetricType)
	assert.Equal(t, 0.0, m.Value)
	assert.Equal(t, 0.5, m.Confidence)
	assert.Equal(t, "unknown", m.AgentID)
	assert.Equal(t, "general", m.Context.TaskType)
	assert.Equal(t, "medium", m.Context.Complexity)
	assert.Equal(t, VerificationAutomated, m.Context.VerificationMethod)
}

func TestNormalizeClampsRanges(t *testing.T) {
	m := TruthMetric{Value: 1.7, Confidence: -0.2, MetricType: TypeConsistency, Timestamp: time.Now()}
	m.Normalize(time.Now())
	assert.Equal(t, 1.0, m.Value)
	assert.Equal(t, 0.5, m.Confidence) // non-positive falls back to the default weight
}

func TestNormalizeRepairsErrorFields(t *testing.T) {
	m := TruthMetric{
		Timestamp: time.Now(),
		Validation: Validation{
			Errors: []ValidationError{{}, {Type: "timeout", Severity: "bogus"}},
		},
	}
	m.Normalize(time.Now())
	assert.Equal(t, "unspecified", m.Validation.Errors[0].Type)
	assert.Equal(t, SeverityLow, m.Validation.Errors[0].Severity)
	assert.Equal(t, SeverityLow, m.Validation.Errors[1].Severity)
}

func TestIsCritical(t *testing.T) {
	acc := TruthMetric{MetricType: TypeAccuracy, Value: 0.99}
	assert.True(t, acc.IsCritical(), "accuracy metrics always take the fast path")

	low := TruthMetric{MetricType: TypeTimeliness, Value: 0.5}
	assert.True(t, low.IsCritical(), "values below 0.7 are critical")

	critErr := TruthMetric{
		MetricType: TypeConsistency,
		Value:      0.95,
		Validation: Validation{Errors: []ValidationError{{Severity: SeverityCritical}}},
	}
	assert.True(t, critErr.IsCritical())

	fine := TruthMetric{MetricType: TypeConsistency, Value: 0.95}
	assert.False(t, fine.IsCritical())
}

func TestHumanIntervened(t *testing.T) {
	m := TruthMetric{Context: Context{VerificationMethod: VerificationHybrid}}
	assert.True(t, m.HumanIntervened())
	m.Context.VerificationMethod = VerificationAutomated
	assert.False(t, m.HumanIntervened())
}

func TestAccuracyBucket(t *testing.T) {
	assert.Equal(t, "95-100%", AccuracyBucket(0.97))
	assert.Equal(t, "95-100%", AccuracyBucket(0.95))
	assert.Equal(t, "90-95%", AccuracyBucket(0.93))
	assert.Equal(t, "80-90%", AccuracyBucket(0.85))
	assert.Equal(t, "70-80%", AccuracyBucket(0.72))
	assert.Equal(t, "<70%", AccuracyBucket(0.69))
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeConsistency, ParseType("Consistency"))
	assert.Equal(t, TypeAccuracy, ParseType("whatever"))
}

func TestDefaultSystemMetrics(t *testing.T) {
	m := DefaultSystemMetrics()
	assert.Equal(t, 1.0, m.SystemReliability)
	assert.Equal(t, 100.0, m.SuccessRate)
	assert.NotNil(t, m.DistributionMetrics.TasksByType)
}
