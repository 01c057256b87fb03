package storage

import (
	"sync"
	"sync/atomic"

	"github.com/daverage/veristat/internal/metric"
	"go.uber.org/zap"
)

const writerBufferSize = 1000

// Writer persists metrics asynchronously so a slow disk can never stall
// ingestion or an analysis tick. Enqueue is non-blocking and drops when the
// channel is full; analytics persistence is best-effort.
type Writer struct {
	db        *DB
	logger    *zap.Logger
	metrics   chan metric.TruthMetric
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
}

// NewWriter starts the background write loop. Pass nil for db to disable
// persistence entirely; a nil *Writer is safe to use.
func NewWriter(db *DB, logger *zap.Logger) *Writer {
	if db == nil {
		return nil
	}

	w := &Writer{
		db:      db,
		logger:  logger,
		metrics: make(chan metric.TruthMetric, writerBufferSize),
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Enqueue queues a metric for async writing. Non-blocking; drops if full.
func (w *Writer) Enqueue(m metric.TruthMetric) {
	if w == nil || w.closed.Load() {
		return
	}
	select {
	case w.metrics <- m:
	default:
		w.dropped.Add(1)
	}
}

// Dropped returns how many metrics were discarded due to backpressure.
func (w *Writer) Dropped() int64 {
	if w == nil {
		return 0
	}
	return w.dropped.Load()
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case m := <-w.metrics:
			if err := w.db.Insert(m); err != nil {
				w.logger.Warn("failed to persist truth metric", zap.Error(err))
			}
		case <-w.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case m := <-w.metrics:
					if err := w.db.Insert(m); err != nil {
						w.logger.Warn("failed to persist truth metric", zap.Error(err))
					}
				default:
					return
				}
			}
		}
	}
}

// Close flushes queued metrics and stops the write loop. Idempotent.
func (w *Writer) Close() {
	if w == nil {
		return
	}
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		close(w.done)
		w.wg.Wait()
	})
}
