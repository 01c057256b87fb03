// Package app assembles configuration, logging, storage and the analytics
// engine into one runnable unit.
package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/daverage/veristat/internal/config"
	"github.com/daverage/veristat/internal/engine"
	"github.com/daverage/veristat/internal/logging"
	"github.com/daverage/veristat/internal/storage"
	"go.uber.org/zap"
)

// backfillWindow is how far back stored metrics are reloaded on startup.
const backfillWindow = 30 * 24 * time.Hour

// App holds the wired core components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *storage.DB
	Writer *storage.Writer
	Engine *engine.Engine
}

// NewApp loads configuration and wires logger, store and engine. The engine
// is constructed but not initialized; callers decide when timers start.
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(cfg.VeristatDir, "logs", fmt.Sprintf("veristat-%s.log", time.Now().Format("2006-01-02")))
	} else if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(cfg.VeristatDir, logFile)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, logFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}

	if cfg.PersistEnabled {
		db, err := storage.NewDB(cfg.DBPath)
		if err != nil {
			logger.Error("failed to initialize database", zap.Error(err))
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		a.Writer = storage.NewWriter(db, logger)
	}

	engCfg := engine.Config{
		PeriodicInterval:   cfg.PeriodicInterval,
		PredictiveInterval: cfg.PredictiveInterval,
		HistoryCap:         cfg.HistoryCap,
		HistoryTrim:        cfg.HistoryTrim,
		BufferSize:         cfg.BufferSize,
	}
	var opts []engine.Option
	if a.Writer != nil {
		opts = append(opts, engine.WithPersister(a.Writer))
	}
	a.Engine = engine.New(engCfg, logger, opts...)

	return a, nil
}

// Backfill reloads recent stored metrics into the engine's history so
// trends and forecasts survive a restart. No-op without a database.
func (a *App) Backfill() error {
	if a.DB == nil {
		return nil
	}
	since := time.Now().Add(-backfillWindow)
	metrics, err := a.DB.RecentMetrics(since, a.Config.HistoryCap)
	if err != nil {
		return fmt.Errorf("failed to backfill history: %w", err)
	}
	a.Engine.Backfill(metrics)
	return nil
}

// Close shuts the engine down (final flush included), then storage and
// logging.
func (a *App) Close() {
	if a.Engine != nil {
		if err := a.Engine.Shutdown(); err != nil {
			a.Logger.Error("engine shutdown failed", zap.Error(err))
		}
	}
	if a.Writer != nil {
		a.Writer.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("failed to close database", zap.Error(err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
