// Package distribution aggregates categorical counts and statistical
// profiles over a trailing window of truth metrics.
package distribution

import (
	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"
	"github.com/daverage/veristat/internal/stats"
)

// minAnalysisPoints is the floor for a meaningful statistical profile.
const minAnalysisPoints = 4

// Counts builds the four category->count maps from a window of raw metrics.
// Pure aggregation, no smoothing. Error types are flattened across all
// validation errors in the window.
func Counts(window []metric.TruthMetric) metric.DistributionMetrics {
	d := metric.NewDistributionMetrics()
	for _, m := range window {
		d.TasksByType[m.Context.TaskType]++
		d.AccuracyDistribution[metric.AccuracyBucket(m.Value)]++
		d.ComplexityDistribution[m.Context.Complexity]++
		for _, e := range m.Validation.Errors {
			d.ErrorsByType[e.Type]++
		}
	}
	return d
}

// Analyze computes the statistical profile of a derived series: summary,
// IQR outliers, and a Jarque-Bera normality check. Returns nil below
// minAnalysisPoints.
func Analyze(name string, points []history.Point) *metric.DistributionAnalysis {
	if len(points) < minAnalysisPoints {
		return nil
	}
	values := history.Values(points)

	outliers := stats.Outliers(values)
	statistic, pValue, isNormal := stats.JarqueBera(values)

	return &metric.DistributionAnalysis{
		Metric: name,
		Summary: metric.StatisticalSummary{
			Min:    stats.Percentile(values, 0),
			Max:    stats.Percentile(values, 100),
			Mean:   stats.Mean(values),
			Median: stats.Median(values),
			Mode:   stats.Mode(values),
			StdDev: stats.StdDev(values),
			Percentiles: map[string]float64{
				"p25": stats.Percentile(values, 25),
				"p50": stats.Percentile(values, 50),
				"p75": stats.Percentile(values, 75),
				"p90": stats.Percentile(values, 90),
				"p95": stats.Percentile(values, 95),
				"p99": stats.Percentile(values, 99),
			},
		},
		Outliers: metric.OutlierSummary{
			Values:     outliers,
			Count:      len(outliers),
			Percentage: float64(len(outliers)) / float64(len(values)) * 100,
		},
		Normality: metric.NormalityTest{
			IsNormal:      isNormal,
			PValue:        pValue,
			TestStatistic: statistic,
		},
	}
}
