// Package trend classifies how a derived metric series moved over its
// recent window.
package trend

import (
	"math"

	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"
	"github.com/daverage/veristat/internal/predict"
	"github.com/daverage/veristat/internal/stats"
)

const (
	// MinPoints is the minimum window size; below it Calculate returns nil.
	// "No trend yet" is a valid state, not an error.
	MinPoints = 10

	stableThreshold = 1.0  // |changePercent| below this is stable
	mediumThreshold = 5.0  // |changePercent| above this is medium
	highThreshold   = 10.0 // |changePercent| above this is high
)

// Calculate splits a series at its midpoint, compares half means, and
// classifies direction and significance of the change. The attached point
// prediction comes from the regression predictor.
func Calculate(name string, points []history.Point) *metric.SystemTrend {
	if len(points) < MinPoints {
		return nil
	}

	values := history.Values(points)
	mid := len(values) / 2
	earlier := stats.Mean(values[:mid])
	later := stats.Mean(values[mid:])

	changePercent := 0.0
	if earlier != 0 {
		changePercent = (later - earlier) / earlier * 100
	}

	t := &metric.SystemTrend{
		Metric:        name,
		CurrentValue:  later,
		PreviousValue: earlier,
		ChangePercent: changePercent,
		Prediction:    predict.Next(values),
	}
	t.Direction, t.Significance = classify(changePercent)
	return t
}

func classify(changePercent float64) (metric.TrendDirection, metric.TrendSignificance) {
	abs := math.Abs(changePercent)
	if abs < stableThreshold {
		return metric.TrendStable, metric.SignificanceLow
	}

	direction := metric.TrendImproving
	if changePercent < 0 {
		direction = metric.TrendDeclining
	}

	switch {
	case abs > highThreshold:
		return direction, metric.SignificanceHigh
	case abs > mediumThreshold:
		return direction, metric.SignificanceMedium
	default:
		return direction, metric.SignificanceLow
	}
}
