package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/daverage/veristat/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleMetric(ts time.Time) metric.TruthMetric {
	return metric.TruthMetric{
		Timestamp:  ts,
		MetricType: metric.TypeAccuracy,
		Value:      0.88,
		Confidence: 0.9,
		AgentID:    "agent-7",
		Context: metric.Context{
			TaskType:           "extraction",
			Complexity:         "high",
			VerificationMethod: metric.VerificationHybrid,
		},
		Validation: metric.Validation{
			IsValid: true,
			Errors:  []metric.ValidationError{{Type: "minor_drift", Severity: metric.SeverityLow}},
			AutomatedChecks: []metric.AutomatedCheck{
				{Name: "schema", Passed: true, ExecutionTime: 12.5},
			},
		},
	}
}

func TestInsertAndCount(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Insert(sampleMetric(base.Add(time.Duration(i)*time.Hour))))
	}
	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestHistoricalValuesProjections(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	m1 := sampleMetric(base)
	require.NoError(t, db.Insert(m1))

	m2 := sampleMetric(base.Add(time.Hour))
	m2.MetricType = metric.TypeConsistency
	m2.Value = 0.5
	m2.Context.VerificationMethod = metric.VerificationAutomated
	m2.Validation.IsValid = false
	require.NoError(t, db.Insert(m2))

	// Accuracy series only includes accuracy-type rows.
	points, err := db.HistoricalValues(metric.SeriesOverallAccuracy, base)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.88, points[0].Value, 1e-9)

	// Intervention series is a 1/0 indicator over all rows.
	points, err = db.HistoricalValues(metric.SeriesHumanInterventionRate, base)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].Value)
	assert.Equal(t, 0.0, points[1].Value)

	// Reliability projects validity.
	points, err = db.HistoricalValues(metric.SeriesSystemReliability, base)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].Value)
	assert.Equal(t, 0.0, points[1].Value)

	// Efficiency is value*confidence.
	points, err = db.HistoricalValues(metric.SeriesEfficiency, base)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 0.88*0.9, points[0].Value, 1e-9)

	// The since bound excludes older rows.
	points, err = db.HistoricalValues(metric.SeriesEfficiency, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, points, 1)

	// Unknown names yield no series.
	points, err = db.HistoricalValues("nonsense", base)
	require.NoError(t, err)
	assert.Nil(t, points)
}

func TestRecentMetricsRoundTrip(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	want := sampleMetric(base)
	require.NoError(t, db.Insert(want))

	got, err := db.RecentMetrics(base.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Timestamp.Equal(want.Timestamp))
	assert.Equal(t, want.MetricType, got[0].MetricType)
	assert.Equal(t, want.Value, got[0].Value)
	assert.Equal(t, want.AgentID, got[0].AgentID)
	assert.Equal(t, want.Context, got[0].Context)
	assert.Equal(t, want.Validation.IsValid, got[0].Validation.IsValid)
	require.Len(t, got[0].Validation.Errors, 1)
	assert.Equal(t, "minor_drift", got[0].Validation.Errors[0].Type)
	require.Len(t, got[0].Validation.AutomatedChecks, 1)
	assert.Equal(t, 12.5, got[0].Validation.AutomatedChecks[0].ExecutionTime)
}

func TestWriterFlushesOnClose(t *testing.T) {
	db := testDB(t)
	w := NewWriter(db, zap.NewNop())

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		w.Enqueue(sampleMetric(base.Add(time.Duration(i) * time.Minute)))
	}
	w.Close()

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, int64(0), w.Dropped())
}

func TestWriterNilSafety(t *testing.T) {
	var w *Writer
	assert.NotPanics(t, func() {
		w.Enqueue(sampleMetric(time.Now()))
		w.Close()
	})
	assert.Nil(t, NewWriter(nil, zap.NewNop()))
}

func TestWriterEnqueueAfterClose(t *testing.T) {
	db := testDB(t)
	w := NewWriter(db, zap.NewNop())
	w.Close()
	assert.NotPanics(t, func() { w.Enqueue(sampleMetric(time.Now())) })
}
