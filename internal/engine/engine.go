// Package engine is the truth analytics core: it ingests verification
// observations, maintains rolling aggregates, and drives the periodic and
// predictive analysis cycles.
package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daverage/veristat/internal/distribution"
	"github.com/daverage/veristat/internal/health"
	"github.com/daverage/veristat/internal/history"
	"github.com/daverage/veristat/internal/metric"
	"github.com/daverage/veristat/internal/predict"
	"github.com/daverage/veristat/internal/recommend"
	"github.com/daverage/veristat/internal/trend"
	"go.uber.org/zap"
)

// Analysis windows.
const (
	realtimeWindow     = time.Hour
	distributionWindow = 24 * time.Hour
	trendWindow        = 7 * 24 * time.Hour
	forecastWindow     = 30 * 24 * time.Hour
)

// Config holds the engine's tunables. Zero values fall back to defaults.
type Config struct {
	PeriodicInterval   time.Duration // default 5m
	PredictiveInterval time.Duration // default 15m
	HistoryCap         int           // default 100000
	HistoryTrim        int           // default 50000
	BufferSize         int           // default 10000
}

func (c *Config) applyDefaults() {
	if c.PeriodicInterval <= 0 {
		c.PeriodicInterval = 5 * time.Minute
	}
	if c.PredictiveInterval <= 0 {
		c.PredictiveInterval = 15 * time.Minute
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = 100000
	}
	if c.HistoryTrim <= 0 || c.HistoryTrim > c.HistoryCap {
		c.HistoryTrim = c.HistoryCap / 2
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 10000
	}
}

// Persister receives every ingested metric off the critical path.
type Persister interface {
	Enqueue(m metric.TruthMetric)
}

// Engine owns all analytics state. All exported methods are safe for
// concurrent use; readers always observe a complete snapshot because keyed
// maps are swapped wholesale, never mutated in place.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	hist      *history.Buffer
	series    history.SeriesReader
	persister Persister

	mu            sync.RWMutex
	buffer        []metric.TruthMetric
	snapshot      metric.SystemTruthMetrics
	healthInd     metric.HealthIndicators
	trends        map[string]metric.SystemTrend
	predictions   map[string]metric.SystemPrediction
	distributions map[string]metric.DistributionAnalysis
	agentsSeen    map[string]bool
	processed     int64
	verifiedTotal int
	criticalTotal int
	startedAt     time.Time
	lastAnalysis  time.Time

	runMu   sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock injects a time source so tests can drive windows without
// waiting on wall clocks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSeriesReader replaces the in-memory projection with another
// time-series source (e.g. the SQLite store).
func WithSeriesReader(r history.SeriesReader) Option {
	return func(e *Engine) { e.series = r }
}

// WithPersister attaches an async metric sink.
func WithPersister(p Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// New constructs an engine. Call Initialize to start the background cycles;
// Ingest and the explicit Run* entry points work without them.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		hist:   history.NewBuffer(cfg.HistoryCap, cfg.HistoryTrim),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.series == nil {
		e.series = e.hist
	}
	e.resetState()
	return e
}

// resetState restores the default aggregates. History is kept; aggregates
// never survive a restart.
func (e *Engine) resetState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = nil
	e.snapshot = metric.DefaultSystemMetrics()
	e.healthInd = metric.HealthIndicators{}
	e.trends = make(map[string]metric.SystemTrend)
	e.predictions = make(map[string]metric.SystemPrediction)
	e.distributions = make(map[string]metric.DistributionAnalysis)
	e.agentsSeen = make(map[string]bool)
	e.processed = 0
	e.verifiedTotal = 0
	e.criticalTotal = 0
	e.startedAt = e.now()
	e.lastAnalysis = time.Time{}
}

// Initialize resets aggregates and starts the two analysis cycles. It fails
// only if the engine is already running.
func (e *Engine) Initialize() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return fmt.Errorf("engine already initialized")
	}

	e.resetState()
	e.done = make(chan struct{})
	e.wg.Add(2)
	go e.loop(e.cfg.PeriodicInterval, e.RunPeriodicAnalysis, "periodic")
	go e.loop(e.cfg.PredictiveInterval, e.RunPredictiveAnalysis, "predictive")
	e.running = true

	e.logger.Info("analytics engine started",
		zap.Duration("periodic_interval", e.cfg.PeriodicInterval),
		zap.Duration("predictive_interval", e.cfg.PredictiveInterval))
	return nil
}

// Shutdown stops both cycles, then runs one final comprehensive analysis so
// buffered metrics are not silently dropped. Idempotent.
func (e *Engine) Shutdown() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return nil
	}

	close(e.done)
	e.wg.Wait()
	e.running = false

	e.PerformComprehensiveAnalysis()
	e.logger.Info("analytics engine stopped")
	return nil
}

func (e *Engine) loop(interval time.Duration, tick func(), name string) {
	defer e.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.guarded(name, tick)
		}
	}
}

// guarded isolates one cycle run: panics and errors inside analysis steps
// are logged and swallowed so the next tick always proceeds.
func (e *Engine) guarded(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("analysis cycle failed",
				zap.String("cycle", name), zap.Any("panic", r))
		}
	}()
	fn()
}

// Ingest records one observation. It never fails: malformed fields are
// defaulted, and a full buffer drops its oldest entry rather than block.
// Critical metrics trigger a synchronous real-time aggregate refresh.
func (e *Engine) Ingest(m metric.TruthMetric) {
	now := e.now()
	m.Normalize(now)

	e.hist.Append(m)
	if e.persister != nil {
		e.persister.Enqueue(m)
	}

	e.mu.Lock()
	e.buffer = append(e.buffer, m)
	if len(e.buffer) > e.cfg.BufferSize {
		e.buffer = e.buffer[1:]
	}
	e.processed++
	e.agentsSeen[m.AgentID] = true
	if m.Validation.IsValid {
		e.verifiedTotal++
	}
	e.criticalTotal += m.CriticalErrorCount()
	critical := m.IsCritical()
	e.mu.Unlock()

	if critical {
		e.refreshRealtime(now)
	}
}

// Backfill appends previously persisted metrics to the in-memory history
// without touching the batch buffer or the persister.
func (e *Engine) Backfill(metrics []metric.TruthMetric) {
	for _, m := range metrics {
		e.hist.Append(m)
		e.mu.Lock()
		e.agentsSeen[m.AgentID] = true
		e.mu.Unlock()
	}
	e.logger.Info("history backfilled", zap.Int("metrics", len(metrics)))
}

// refreshRealtime recomputes the fast-path aggregates from the last rolling
// hour of history. Runs synchronously inside Ingest for critical metrics.
func (e *Engine) refreshRealtime(now time.Time) {
	window := e.hist.Since(now.Add(-realtimeWindow))

	var accSum, accWeight float64
	var intervened, valid int
	agents := make(map[string]bool)
	for _, m := range window {
		if m.MetricType == metric.TypeAccuracy {
			accSum += m.Value * m.Confidence
			accWeight += m.Confidence
		}
		if m.HumanIntervened() {
			intervened++
		}
		if m.Validation.IsValid {
			valid++
		}
		agents[m.AgentID] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if accWeight > 0 {
		e.snapshot.OverallAccuracy = accSum / accWeight
	}
	if n := len(window); n > 0 {
		e.snapshot.HumanInterventionRate = float64(intervened) / float64(n)
		e.snapshot.SystemReliability = float64(valid) / float64(n)
	}
	e.snapshot.ActiveAgents = len(agents)
	e.snapshot.TotalTasks = int(e.processed)
	e.snapshot.VerifiedTasks = e.verifiedTotal
	e.snapshot.CriticalFailures = e.criticalTotal
	if e.processed > 0 {
		e.snapshot.Efficiency = float64(e.verifiedTotal) / float64(e.processed)
	}
}

// RunPeriodicAnalysis is the periodic tick body: drain the buffer as one
// batch, rebuild distributions over 24h, recompute trends for the tracked
// metric set, then aggregate health. Steps are isolated; a failing step
// never aborts the rest.
func (e *Engine) RunPeriodicAnalysis() {
	now := e.now()

	e.mu.Lock()
	batch := e.buffer
	e.buffer = nil
	e.mu.Unlock()

	if len(batch) > 0 {
		e.logger.Debug("processing metric batch", zap.Int("size", len(batch)))
	}

	e.guarded("batch-update", func() { e.updateAggregates(now) })
	e.guarded("distribution", func() { e.updateDistributions(now) })
	e.guarded("trend", func() { e.updateTrends(now) })
	e.guarded("health", func() { e.updateHealth(now) })

	e.mu.Lock()
	e.lastAnalysis = now
	e.mu.Unlock()
}

// RunPredictiveAnalysis is the predictive tick body: multi-horizon
// forecasts for the tracked prediction set.
func (e *Engine) RunPredictiveAnalysis() {
	now := e.now()
	next := make(map[string]metric.SystemPrediction)

	for _, name := range metric.PredictionMetricNames {
		e.guarded("forecast", func() {
			points, err := e.series.HistoricalValues(name, now.Add(-forecastWindow))
			if err != nil {
				e.logger.Warn("failed to read series", zap.String("metric", name), zap.Error(err))
				return
			}
			p := predict.Forecast(name, points)
			if p == nil {
				return
			}
			p.Recommendations = recommend.ForPrediction(*p)
			next[name] = *p
		})
	}

	e.mu.Lock()
	e.predictions = next
	e.lastAnalysis = now
	e.mu.Unlock()
}

// updateAggregates refreshes the full snapshot from recent history,
// including the batch-only fields (throughput, latency, error and success
// rates).
func (e *Engine) updateAggregates(now time.Time) {
	e.refreshRealtime(now)

	window := e.hist.Since(now.Add(-realtimeWindow))
	var withErrors int
	var execTime float64
	var checks int
	for _, m := range window {
		if len(m.Validation.Errors) > 0 {
			withErrors++
		}
		for _, c := range m.Validation.AutomatedChecks {
			execTime += c.ExecutionTime
			checks++
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot.Throughput = float64(len(window)) // events in the last hour
	if checks > 0 {
		e.snapshot.Latency = execTime / float64(checks)
	}
	if n := len(window); n > 0 {
		e.snapshot.ErrorRate = float64(withErrors) / float64(n)
	}
	e.snapshot.SuccessRate = e.snapshot.SystemReliability * 100
}

// updateDistributions rebuilds the category counts and the per-metric
// statistical profiles over the trailing 24h.
func (e *Engine) updateDistributions(now time.Time) {
	window := e.hist.Since(now.Add(-distributionWindow))
	counts := distribution.Counts(window)

	next := make(map[string]metric.DistributionAnalysis)
	for _, name := range metric.TrendMetricNames {
		points, err := e.series.HistoricalValues(name, now.Add(-distributionWindow))
		if err != nil {
			e.logger.Warn("failed to read series", zap.String("metric", name), zap.Error(err))
			continue
		}
		if a := distribution.Analyze(name, points); a != nil {
			next[name] = *a
		}
	}

	e.mu.Lock()
	e.snapshot.DistributionMetrics = counts
	e.distributions = next
	e.mu.Unlock()
}

// updateTrends recomputes the tracked trend set over the trailing 7 days.
// Metrics with insufficient data simply have no entry.
func (e *Engine) updateTrends(now time.Time) {
	next := make(map[string]metric.SystemTrend)
	for _, name := range metric.TrendMetricNames {
		points, err := e.series.HistoricalValues(name, now.Add(-trendWindow))
		if err != nil {
			e.logger.Warn("failed to read series", zap.String("metric", name), zap.Error(err))
			continue
		}
		if t := trend.Calculate(name, points); t != nil {
			next[name] = *t
		}
	}

	e.mu.Lock()
	e.trends = next
	e.mu.Unlock()
}

// updateHealth replaces the health indicator set.
func (e *Engine) updateHealth(now time.Time) {
	e.mu.RLock()
	in := health.Inputs{
		Metrics:     e.snapshot,
		AgentCount:  len(e.agentsSeen),
		UptimeHours: now.Sub(e.startedAt).Hours(),
		QueueDepth:  len(e.buffer),
		BufferSize:  e.cfg.BufferSize,
	}
	e.mu.RUnlock()

	indicators := health.Compute(in, now)

	e.mu.Lock()
	e.healthInd = indicators
	e.mu.Unlock()
}

// PerformComprehensiveAnalysis forces both cycles to run once synchronously
// and returns the combined report.
func (e *Engine) PerformComprehensiveAnalysis() metric.AnalysisReport {
	e.guarded("periodic", e.RunPeriodicAnalysis)
	e.guarded("predictive", e.RunPredictiveAnalysis)

	e.mu.RLock()
	defer e.mu.RUnlock()

	report := metric.AnalysisReport{
		Health:      e.healthInd,
		Trends:      sortedTrends(e.trends),
		Predictions: sortedPredictions(e.predictions),
	}
	report.Recommendations = recommend.Generate(e.snapshot, e.healthInd, report.Trends, report.Predictions)
	return report
}

func sortedTrends(m map[string]metric.SystemTrend) []metric.SystemTrend {
	out := make([]metric.SystemTrend, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

func sortedPredictions(m map[string]metric.SystemPrediction) []metric.SystemPrediction {
	out := make([]metric.SystemPrediction, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}
