// Package health combines the aggregate snapshot into per-subsystem and
// overall health scores.
package health

import (
	"math"
	"time"

	"github.com/daverage/veristat/internal/metric"
)

// Weight constants of the collection and validation scores.
const (
	collectionThroughputWeight = 0.7
	collectionErrorWeight      = 0.3
	validationSuccessWeight    = 0.8
	validationLatencyWeight    = 0.2
)

// Alerting and persistence have no live signal yet; the scores are
// documented stubs until those subsystems are wired in.
const (
	alertingStubScore    = 0.95
	persistenceStubScore = 0.98
)

// targetThroughput is the events/hour rate that earns full collection
// credit.
const targetThroughput = 100.0

// Inputs carries everything the aggregator reads. QueueDepth is the
// ingestion buffer depth at computation time; BufferSize is the configured
// capacity ceiling.
type Inputs struct {
	Metrics     metric.SystemTruthMetrics
	AgentCount  int
	UptimeHours float64
	QueueDepth  int
	BufferSize  int
}

// Compute derives the five subsystem scores, their mean, and the
// performance/capacity snapshot. The previous indicator set is meant to be
// replaced wholesale by the caller.
func Compute(in Inputs, now time.Time) metric.HealthIndicators {
	m := in.Metrics

	collection := collectionThroughputWeight*math.Min(1, m.Throughput/targetThroughput) +
		collectionErrorWeight*math.Max(0, 1-m.ErrorRate*10)

	latencyFactor := 1.0
	if m.Latency > 0 {
		latencyFactor = math.Max(0.1, math.Min(1, 5000/m.Latency))
	}
	validation := validationSuccessWeight*(m.SuccessRate/100) +
		validationLatencyWeight*latencyFactor

	scoring := 1.0
	if in.AgentCount > 0 {
		scoring = math.Min(1, float64(m.ActiveAgents)/float64(in.AgentCount))
	}

	sub := metric.SubsystemHealth{
		Collection:  clamp01(collection),
		Validation:  clamp01(validation),
		Scoring:     clamp01(scoring),
		Alerting:    alertingStubScore,
		Persistence: persistenceStubScore,
	}

	overall := (sub.Collection + sub.Validation + sub.Scoring + sub.Alerting + sub.Persistence) / 5

	utilization := 0.0
	if in.BufferSize > 0 {
		utilization = float64(in.QueueDepth) / float64(in.BufferSize)
	}

	return metric.HealthIndicators{
		OverallHealth:   overall,
		SubsystemHealth: sub,
		PerformanceIndicators: metric.PerformanceIndicators{
			Latency:      m.Latency,
			Throughput:   m.Throughput,
			ErrorRate:    m.ErrorRate,
			Availability: math.Min(1, in.UptimeHours/(in.UptimeHours+0.1)),
		},
		CapacityMetrics: metric.CapacityMetrics{
			CurrentLoad:     in.QueueDepth,
			MaxCapacity:     in.BufferSize,
			UtilizationRate: utilization,
			QueueDepth:      in.QueueDepth,
		},
		ComputedAt: now,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
