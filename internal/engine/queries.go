package engine

import (
	"github.com/daverage/veristat/internal/metric"
)

// GetSystemMetrics returns a copy of the current aggregate snapshot.
func (e *Engine) GetSystemMetrics() metric.SystemTruthMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := e.snapshot
	snap.DistributionMetrics = copyDistribution(e.snapshot.DistributionMetrics)
	return snap
}

// GetHealthIndicators returns the latest health snapshot.
func (e *Engine) GetHealthIndicators() metric.HealthIndicators {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.healthInd
}

// GetSystemTrends returns all current trends, sorted by metric name.
func (e *Engine) GetSystemTrends() []metric.SystemTrend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedTrends(e.trends)
}

// GetTrend returns the trend for one metric. The second return is false
// when insufficient data exists — a valid state, not an error.
func (e *Engine) GetTrend(name string) (metric.SystemTrend, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.trends[name]
	return t, ok
}

// GetPredictions returns all current forecasts, sorted by metric name.
func (e *Engine) GetPredictions() []metric.SystemPrediction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedPredictions(e.predictions)
}

// GetPrediction returns the forecast for one metric, if one exists.
func (e *Engine) GetPrediction(name string) (metric.SystemPrediction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.predictions[name]
	return p, ok
}

// GetDistributionAnalysis returns the statistical profile for one metric,
// if enough data exists.
func (e *Engine) GetDistributionAnalysis(name string) (metric.DistributionAnalysis, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.distributions[name]
	return d, ok
}

// GetSystemStatistics summarizes engine activity since startup.
func (e *Engine) GetSystemStatistics() metric.SystemStatistics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	uptime := e.now().Sub(e.startedAt).Hours()
	rate := 0.0
	if uptime > 0 {
		rate = float64(e.processed) / uptime
	}
	return metric.SystemStatistics{
		TotalMetricsProcessed: e.processed,
		SystemUptime:          uptime,
		AverageProcessingRate: rate,
		HealthScore:           e.healthInd.OverallHealth,
		LastAnalysis:          e.lastAnalysis,
	}
}

// QueueDepth reports the current ingestion buffer depth. A steadily growing
// depth means the periodic cycle has stalled.
func (e *Engine) QueueDepth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.buffer)
}

// HistoryLen reports the bounded history length.
func (e *Engine) HistoryLen() int {
	return e.hist.Len()
}

func copyDistribution(d metric.DistributionMetrics) metric.DistributionMetrics {
	return metric.DistributionMetrics{
		TasksByType:            copyCounts(d.TasksByType),
		AccuracyDistribution:   copyCounts(d.AccuracyDistribution),
		ComplexityDistribution: copyCounts(d.ComplexityDistribution),
		ErrorsByType:           copyCounts(d.ErrorsByType),
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
