// Package history keeps the bounded in-memory record of ingested truth
// metrics and projects it into the derived per-name series the trend and
// prediction components consume.
package history

import (
	"sync"
	"time"

	"github.com/daverage/veristat/internal/metric"
)

// Point is one sample of a derived metric series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// SeriesReader is the pluggable time-series read interface. The in-memory
// buffer and the SQLite store both implement it, so analysis code never
// cares where historical values come from.
type SeriesReader interface {
	HistoricalValues(name string, since time.Time) ([]Point, error)
}

// Buffer is the bounded metric history. When length exceeds cap it is
// trimmed to the most recent trimTo entries in one pass, so trimming cost is
// amortized instead of paid on every insert.
type Buffer struct {
	mu      sync.RWMutex
	metrics []metric.TruthMetric
	cap     int
	trimTo  int
}

// NewBuffer creates a history buffer. trimTo must be <= cap; out-of-range
// arguments fall back to the 100k/50k defaults.
func NewBuffer(capacity, trimTo int) *Buffer {
	if capacity <= 0 {
		capacity = 100000
	}
	if trimTo <= 0 || trimTo > capacity {
		trimTo = capacity / 2
	}
	return &Buffer{cap: capacity, trimTo: trimTo}
}

// Append records a metric, trimming the oldest half once the cap is hit.
func (b *Buffer) Append(m metric.TruthMetric) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.metrics = append(b.metrics, m)
	if len(b.metrics) > b.cap {
		keep := b.metrics[len(b.metrics)-b.trimTo:]
		b.metrics = append(make([]metric.TruthMetric, 0, b.cap), keep...)
	}
}

// Len returns the current history length.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.metrics)
}

// Since returns a copy of all metrics with Timestamp >= t, oldest first.
func (b *Buffer) Since(t time.Time) []metric.TruthMetric {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []metric.TruthMetric
	for _, m := range b.metrics {
		if !m.Timestamp.Before(t) {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops all history.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics = nil
}

// HistoricalValues projects the raw history onto the named derived series.
// Implements SeriesReader. An unknown name yields an empty series, which
// downstream components treat as "no data yet".
func (b *Buffer) HistoricalValues(name string, since time.Time) ([]Point, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Point
	for _, m := range b.metrics {
		if m.Timestamp.Before(since) {
			continue
		}
		if v, ok := Project(name, m); ok {
			out = append(out, Point{Timestamp: m.Timestamp, Value: v})
		}
	}
	return out, nil
}

// Project maps one raw metric onto a derived series sample. The second
// return is false when the metric does not contribute to that series.
func Project(name string, m metric.TruthMetric) (float64, bool) {
	switch name {
	case metric.SeriesOverallAccuracy:
		if m.MetricType != metric.TypeAccuracy {
			return 0, false
		}
		return m.Value, true
	case metric.SeriesHumanInterventionRate:
		if m.HumanIntervened() {
			return 1, true
		}
		return 0, true
	case metric.SeriesSystemReliability:
		if m.Validation.IsValid {
			return 1, true
		}
		return 0, true
	case metric.SeriesEfficiency:
		return m.Value * m.Confidence, true
	default:
		return 0, false
	}
}

// Values extracts just the values of a point series, preserving order.
func Values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
