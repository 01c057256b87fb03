package metric

import "time"

// Tracked metric names. These are the derived system series the trend and
// prediction cycles operate on.
const (
	SeriesOverallAccuracy       = "overallAccuracy"
	SeriesHumanInterventionRate = "humanInterventionRate"
	SeriesSystemReliability     = "systemReliability"
	SeriesEfficiency            = "efficiency"
)

// TrendMetricNames is the fixed set analyzed every periodic tick.
var TrendMetricNames = []string{
	SeriesOverallAccuracy,
	SeriesHumanInterventionRate,
	SeriesSystemReliability,
	SeriesEfficiency,
}

// PredictionMetricNames is the fixed set forecast every predictive cycle.
var PredictionMetricNames = []string{
	SeriesOverallAccuracy,
	SeriesHumanInterventionRate,
	SeriesSystemReliability,
}

// DistributionMetrics holds the four category->count maps built over the
// trailing 24h window.
type DistributionMetrics struct {
	TasksByType            map[string]int `json:"tasks_by_type"`
	AccuracyDistribution   map[string]int `json:"accuracy_distribution"`
	ComplexityDistribution map[string]int `json:"complexity_distribution"`
	ErrorsByType           map[string]int `json:"errors_by_type"`
}

// NewDistributionMetrics returns empty, non-nil maps.
func NewDistributionMetrics() DistributionMetrics {
	return DistributionMetrics{
		TasksByType:            make(map[string]int),
		AccuracyDistribution:   make(map[string]int),
		ComplexityDistribution: make(map[string]int),
		ErrorsByType:           make(map[string]int),
	}
}

// SystemTruthMetrics is the current aggregate snapshot. Written only by the
// engine (real-time path and periodic batch update); readers get copies.
type SystemTruthMetrics struct {
	OverallAccuracy       float64             `json:"overall_accuracy"`
	HumanInterventionRate float64             `json:"human_intervention_rate"`
	SystemReliability     float64             `json:"system_reliability"`
	Throughput            float64             `json:"throughput"` // events/hour
	Latency               float64             `json:"latency"`    // ms
	ErrorRate             float64             `json:"error_rate"`
	SuccessRate           float64             `json:"success_rate"` // percent
	ActiveAgents          int                 `json:"active_agents"`
	TotalTasks            int                 `json:"total_tasks"`
	VerifiedTasks         int                 `json:"verified_tasks"`
	CriticalFailures      int                 `json:"critical_failures"`
	Efficiency            float64             `json:"efficiency"`
	DistributionMetrics   DistributionMetrics `json:"distribution_metrics"`
}

// DefaultSystemMetrics is the snapshot an engine starts from.
func DefaultSystemMetrics() SystemTruthMetrics {
	return SystemTruthMetrics{
		SystemReliability:   1.0,
		SuccessRate:         100,
		DistributionMetrics: NewDistributionMetrics(),
	}
}

// SubsystemHealth holds the five per-subsystem scores, each in [0,1].
type SubsystemHealth struct {
	Collection  float64 `json:"collection"`
	Validation  float64 `json:"validation"`
	Scoring     float64 `json:"scoring"`
	Alerting    float64 `json:"alerting"`
	Persistence float64 `json:"persistence"`
}

// PerformanceIndicators summarizes operational performance.
type PerformanceIndicators struct {
	Latency      float64 `json:"latency"`
	Throughput   float64 `json:"throughput"`
	ErrorRate    float64 `json:"error_rate"`
	Availability float64 `json:"availability"`
}

// CapacityMetrics is the buffer/load snapshot at computation time.
type CapacityMetrics struct {
	CurrentLoad     int     `json:"current_load"`
	MaxCapacity     int     `json:"max_capacity"`
	UtilizationRate float64 `json:"utilization_rate"`
	QueueDepth      int     `json:"queue_depth"`
}

// HealthIndicators is the composite health snapshot, fully replaced each
// periodic tick.
type HealthIndicators struct {
	OverallHealth         float64               `json:"overall_health"`
	SubsystemHealth       SubsystemHealth       `json:"subsystem_health"`
	PerformanceIndicators PerformanceIndicators `json:"performance_indicators"`
	CapacityMetrics       CapacityMetrics       `json:"capacity_metrics"`
	ComputedAt            time.Time             `json:"computed_at"`
}

// TrendDirection classifies how a metric moved.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendSignificance classifies how strongly a metric moved.
type TrendSignificance string

const (
	SignificanceLow    TrendSignificance = "low"
	SignificanceMedium TrendSignificance = "medium"
	SignificanceHigh   TrendSignificance = "high"
)

// PointPrediction is a single-step forecast with confidence.
type PointPrediction struct {
	NextValue  float64 `json:"next_value"`
	Confidence float64 `json:"confidence"`
}

// SystemTrend is the per-metric trend summary, overwritten each tick.
type SystemTrend struct {
	Metric        string            `json:"metric"`
	CurrentValue  float64           `json:"current_value"`
	PreviousValue float64           `json:"previous_value"`
	ChangePercent float64           `json:"change_percent"`
	Direction     TrendDirection    `json:"direction"`
	Significance  TrendSignificance `json:"significance"`
	Prediction    PointPrediction   `json:"prediction"`
}

// Horizon is one forecast horizon of a SystemPrediction.
type Horizon struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Timeframe  string  `json:"timeframe"`
}

// PredictionFactor names something influencing a forecast. Impact is in
// [-1,1]; negative values drag the metric down.
type PredictionFactor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// SystemPrediction is the per-metric multi-horizon forecast, overwritten
// each predictive cycle.
type SystemPrediction struct {
	Metric          string             `json:"metric"`
	CurrentValue    float64            `json:"current_value"`
	ShortTerm       Horizon            `json:"short_term"`  // 1 day
	MediumTerm      Horizon            `json:"medium_term"` // 1 week
	LongTerm        Horizon            `json:"long_term"`   // 1 month
	Factors         []PredictionFactor `json:"factors,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// StatisticalSummary is the central-tendency/spread block of a
// DistributionAnalysis.
type StatisticalSummary struct {
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	Mode        float64            `json:"mode"`
	StdDev      float64            `json:"std_dev"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// OutlierSummary describes values flagged as outliers.
type OutlierSummary struct {
	Values     []float64 `json:"values"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
}

// NormalityTest is a goodness-of-fit result for the series.
type NormalityTest struct {
	IsNormal      bool    `json:"is_normal"`
	PValue        float64 `json:"p_value"`
	TestStatistic float64 `json:"test_statistic"`
}

// DistributionAnalysis is the per-metric statistical profile.
type DistributionAnalysis struct {
	Metric    string             `json:"metric"`
	Summary   StatisticalSummary `json:"summary"`
	Outliers  OutlierSummary     `json:"outliers"`
	Normality NormalityTest      `json:"normality"`
}

// AnalysisReport is the result of one comprehensive analysis pass.
type AnalysisReport struct {
	Health          HealthIndicators   `json:"health"`
	Trends          []SystemTrend      `json:"trends"`
	Predictions     []SystemPrediction `json:"predictions"`
	Recommendations []string           `json:"recommendations"`
}

// SystemStatistics summarizes engine activity since startup.
type SystemStatistics struct {
	TotalMetricsProcessed int64     `json:"total_metrics_processed"`
	SystemUptime          float64   `json:"system_uptime_hours"`
	AverageProcessingRate float64   `json:"average_processing_rate"` // metrics/hour
	HealthScore           float64   `json:"health_score"`
	LastAnalysis          time.Time `json:"last_analysis"`
}
