package predict

import (
	"testing"
	"time"

	"github.com/daverage/veristat/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePoints(values []float64) []history.Point {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]history.Point, len(values))
	for i, v := range values {
		out[i] = history.Point{Timestamp: base.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return out
}

func TestNextShortCircuitsBelowFivePoints(t *testing.T) {
	p := Next([]float64{0.5, 0.6, 0.7})
	assert.Equal(t, 0.7, p.NextValue)
	assert.Equal(t, 0.3, p.Confidence)
}

func TestNextEmptySeries(t *testing.T) {
	p := Next(nil)
	assert.Equal(t, 0.0, p.NextValue)
	assert.Equal(t, 0.0, p.Confidence)
}

func TestNextLinearSeries(t *testing.T) {
	p := Next([]float64{1, 2, 3, 4, 5})
	assert.InDelta(t, 6.0, p.NextValue, 1e-9)
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
}

func TestNextConfidenceClamped(t *testing.T) {
	p := Next([]float64{0.2, 0.9, 0.1, 0.8, 0.3, 0.7})
	assert.GreaterOrEqual(t, p.Confidence, 0.0)
	assert.LessOrEqual(t, p.Confidence, 1.0)
}

func TestForecastRequiresTwentyPoints(t *testing.T) {
	values := make([]float64, MinForecastPoints-1)
	for i := range values {
		values[i] = 0.8
	}
	assert.Nil(t, Forecast("overallAccuracy", makePoints(values)))
}

func TestForecastHorizons(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		values = append(values, 0.70+float64(i)*0.25/19)
	}
	p := Forecast("overallAccuracy", makePoints(values))
	require.NotNil(t, p)

	assert.Equal(t, "overallAccuracy", p.Metric)
	assert.InDelta(t, 0.95, p.CurrentValue, 1e-9)
	assert.Equal(t, "1 day", p.ShortTerm.Timeframe)
	assert.Equal(t, "1 week", p.MediumTerm.Timeframe)
	assert.Equal(t, "1 month", p.LongTerm.Timeframe)

	// The smoothed level is reused for every horizon: the forecaster does
	// not extrapolate slope across timeframes. This pins that behavior.
	assert.Equal(t, p.ShortTerm.Value, p.MediumTerm.Value)
	assert.Equal(t, p.ShortTerm.Value, p.LongTerm.Value)

	assert.GreaterOrEqual(t, p.ShortTerm.Confidence, 0.1)
	assert.LessOrEqual(t, p.ShortTerm.Confidence, 0.9)
	assert.NotEmpty(t, p.Factors)
}

func TestForecastConfidenceClampFloor(t *testing.T) {
	// Alternating 0/2 has variance 1, so raw confidence would be 0.
	values := make([]float64, 20)
	for i := range values {
		if i%2 == 0 {
			values[i] = 2
		}
	}
	p := Forecast("efficiency", makePoints(values))
	require.NotNil(t, p)
	assert.Equal(t, 0.1, p.ShortTerm.Confidence)
}

func TestForecastConfidenceClampCeiling(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 0.9
	}
	p := Forecast("systemReliability", makePoints(values))
	require.NotNil(t, p)
	assert.Equal(t, 0.9, p.ShortTerm.Confidence)
}

func TestFactorImpactsBounded(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i) // steep climb
	}
	p := Forecast("overallAccuracy", makePoints(values))
	require.NotNil(t, p)
	for _, f := range p.Factors {
		assert.GreaterOrEqual(t, f.Impact, -1.0, f.Name)
		assert.LessOrEqual(t, f.Impact, 1.0, f.Name)
	}
}
