package trend

import (
	"testing"
	"time"

	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"
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

func TestCalculateInsufficientData(t *testing.T) {
	values := make([]float64, MinPoints-1)
	assert.Nil(t, Calculate("overallAccuracy", makePoints(values)))
}

func TestCalculateImproving(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		values = append(values, 0.70+float64(i)*0.25/19)
	}
	tr := Calculate("overallAccuracy", makePoints(values))
	require.NotNil(t, tr)

	assert.Equal(t, "overallAccuracy", tr.Metric)
	assert.Equal(t, metric.TrendImproving, tr.Direction)
	assert.Greater(t, tr.ChangePercent, 0.0)
	assert.Equal(t, metric.SignificanceHigh, tr.Significance)
	assert.Greater(t, tr.CurrentValue, tr.PreviousValue)
	assert.Greater(t, tr.Prediction.Confidence, 0.0)
}

func TestCalculateDeclining(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		values = append(values, 0.95-float64(i)*0.25/19)
	}
	tr := Calculate("systemReliability", makePoints(values))
	require.NotNil(t, tr)
	assert.Equal(t, metric.TrendDeclining, tr.Direction)
	assert.Less(t, tr.ChangePercent, 0.0)
	assert.Equal(t, metric.SignificanceHigh, tr.Significance)
}

func TestCalculateStable(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 0.85
	}
	tr := Calculate("efficiency", makePoints(values))
	require.NotNil(t, tr)
	assert.Equal(t, metric.TrendStable, tr.Direction)
	assert.Equal(t, metric.SignificanceLow, tr.Significance)
	assert.Equal(t, 0.0, tr.ChangePercent)
}

func TestCalculateZeroEarlierMeanGuard(t *testing.T) {
	// The first half being all zero must not divide by zero.
	values := []float64{0, 0, 0, 0, 0, 0, 0.5, 0.6, 0.7, 0.8, 0.9, 0.9}
	tr := Calculate("humanInterventionRate", makePoints(values))
	require.NotNil(t, tr)
	assert.Equal(t, 0.0, tr.ChangePercent)
	assert.Equal(t, metric.TrendStable, tr.Direction)
}

func TestCalculateMediumSignificance(t *testing.T) {
	// Earlier half mean 1.00, later half mean 1.08: +8% is medium.
	values := make([]float64, 0, 20)
	for i := 0; i < 10; i++ {
		values = append(values, 1.00)
	}
	for i := 0; i < 10; i++ {
		values = append(values, 1.08)
	}
	tr := Calculate("efficiency", makePoints(values))
	require.NotNil(t, tr)
	assert.Equal(t, metric.TrendImproving, tr.Direction)
	assert.Equal(t, metric.SignificanceMedium, tr.Significance)
}
