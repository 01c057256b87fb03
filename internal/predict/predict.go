// Package predict produces point and multi-horizon forecasts for derived
// metric series. Both algorithms are closed-form statistics, not trained
// models.
package predict

import (
	"fmt"
	"math"

	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"
	"github.com/daverage/veristat/internal/stats"
)

const (
	// SmoothingAlpha is the single smoothing parameter walked across the
	// series for multi-horizon forecasts.
	SmoothingAlpha = 0.3

	// MinRegressionPoints is the cutoff below which the single-step
	// prediction short-circuits to the last observed value.
	MinRegressionPoints = 5

	// MinForecastPoints is the minimum series length for a multi-horizon
	// forecast; below it Forecast returns nil (insufficient data, not an
	// error).
	MinForecastPoints = 20

	// fallbackConfidence is used when too few points exist to fit a line.
	fallbackConfidence = 0.3

	varianceWindow = 20
)

// Next is the single-step regression prediction used by the trend
// calculator: OLS of value against index, next value extrapolated one step,
// confidence = R-squared clamped to [0,1].
func Next(values []float64) metric.PointPrediction {
	if len(values) == 0 {
		return metric.PointPrediction{Confidence: 0}
	}
	if len(values) < MinRegressionPoints {
		return metric.PointPrediction{
			NextValue:  values[len(values)-1],
			Confidence: fallbackConfidence,
		}
	}
	fit := stats.FitRegression(values)
	return metric.PointPrediction{
		NextValue:  fit.Slope*float64(len(values)) + fit.Intercept,
		Confidence: fit.RSquared,
	}
}

// Forecast builds the three-horizon prediction for one metric series.
// Returns nil with fewer than MinForecastPoints samples.
//
// The smoothed level is deliberately reused as the point estimate for all
// three horizons; slope is not extrapolated across timeframes. Downstream
// consumers should read the horizon confidences, not assume divergent
// values.
func Forecast(name string, points []history.Point) *metric.SystemPrediction {
	if len(points) < MinForecastPoints {
		return nil
	}

	values := history.Values(points)
	level := stats.ExponentialSmooth(values, SmoothingAlpha)
	confidence := forecastConfidence(values)

	p := &metric.SystemPrediction{
		Metric:       name,
		CurrentValue: values[len(values)-1],
		ShortTerm:    metric.Horizon{Value: level, Confidence: confidence, Timeframe: "1 day"},
		MediumTerm:   metric.Horizon{Value: level, Confidence: confidence, Timeframe: "1 week"},
		LongTerm:     metric.Horizon{Value: level, Confidence: confidence, Timeframe: "1 month"},
		Factors:      factors(values),
	}
	return p
}

// forecastConfidence derives confidence from the variance of the most
// recent samples, clamped to [0.1, 0.9].
func forecastConfidence(values []float64) float64 {
	recent := values
	if len(recent) > varianceWindow {
		recent = recent[len(recent)-varianceWindow:]
	}
	c := 1 - math.Sqrt(stats.Variance(recent))
	return math.Max(0.1, math.Min(0.9, c))
}

// factors names the main influences on the forecast with impacts in [-1,1].
func factors(values []float64) []metric.PredictionFactor {
	fit := stats.FitRegression(values)
	sd := stats.StdDev(values)

	momentum := clampImpact(fit.Slope * float64(len(values)))
	direction := "upward"
	if momentum < 0 {
		direction = "downward"
	}

	out := []metric.PredictionFactor{
		{
			Name:        "trend_momentum",
			Impact:      momentum,
			Confidence:  fit.RSquared,
			Description: fmt.Sprintf("recent %s movement across %d samples", direction, len(values)),
		},
		{
			Name:        "volatility",
			Impact:      clampImpact(-2 * sd),
			Confidence:  0.8,
			Description: fmt.Sprintf("observed standard deviation %.3f", sd),
		},
		{
			Name:        "sample_size",
			Impact:      math.Min(1, float64(len(values))/100),
			Confidence:  0.9,
			Description: fmt.Sprintf("%d historical samples available", len(values)),
		},
	}
	return out
}

func clampImpact(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
