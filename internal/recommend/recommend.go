// Package recommend turns health, trend and prediction signals into
// human-readable action items via an independent threshold rule table.
package recommend

import (
	"fmt"

	"github.com/daverage/veristat/internal/metric"
)

// Rule thresholds.
const (
	degradedHealth       = 0.8
	highErrorRate        = 0.05
	highUtilization      = 0.8
	lowConfidence        = 0.5
	accuracyFloor        = 0.9
	interventionCeiling  = 0.15
	negativeFactorImpact = -0.3
)

// Generate evaluates the full rule table. Rules are independent; any number
// may fire together. Duplicates across predictions are removed while
// preserving first-seen order.
func Generate(m metric.SystemTruthMetrics, h metric.HealthIndicators, trends []metric.SystemTrend, predictions []metric.SystemPrediction) []string {
	var out []string

	if h.OverallHealth < degradedHealth {
		out = append(out, "System health degraded - investigate subsystem performance")
	}
	if m.ErrorRate > highErrorRate {
		out = append(out, "High error rate detected - review validation processes")
	}
	if h.CapacityMetrics.UtilizationRate > highUtilization {
		out = append(out, "High system utilization - consider scaling resources")
	}

	for _, t := range trends {
		if t.Direction == metric.TrendDeclining && t.Significance == metric.SignificanceHigh {
			out = append(out, fmt.Sprintf("%s is declining significantly - immediate attention required", t.Metric))
		}
	}

	for _, p := range predictions {
		out = append(out, ForPrediction(p)...)
	}

	return dedupe(out)
}

// ForPrediction evaluates the prediction-scoped rules for one forecast.
// The result also populates SystemPrediction.Recommendations.
func ForPrediction(p metric.SystemPrediction) []string {
	var out []string

	if p.ShortTerm.Confidence < lowConfidence {
		out = append(out,
			"Increase data collection frequency to improve forecast confidence",
			"Add monitoring points for "+p.Metric)
	}

	if p.Metric == metric.SeriesOverallAccuracy && p.ShortTerm.Value < accuracyFloor {
		out = append(out,
			"Add validation checks - accuracy predicted to fall below 90%",
			"Retrain or recalibrate agents")
	}

	if p.Metric == metric.SeriesHumanInterventionRate && p.ShortTerm.Value > interventionCeiling {
		out = append(out,
			"Analyze intervention patterns - rate predicted above 15%",
			"Improve automated decision confidence")
	}

	for _, f := range p.Factors {
		if f.Impact < negativeFactorImpact {
			out = append(out, fmt.Sprintf("Address %s: %s", f.Name, f.Description))
		}
	}

	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
