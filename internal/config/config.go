package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPeriodicIntervalSeconds   = 300
	DefaultPredictiveIntervalSeconds = 900
	DefaultHistoryCap                = 100000
	DefaultHistoryTrim               = 50000
	DefaultBufferSize                = 10000
	DefaultLogLevel                  = "info"
	DefaultDBFile                    = "veristat.sqlite3"
)

// Config holds the application configuration after defaults, the TOML file
// and environment overrides have been merged, in that order.
type Config struct {
	PeriodicInterval   time.Duration
	PredictiveInterval time.Duration
	HistoryCap         int
	HistoryTrim        int
	BufferSize         int
	LogLevel           string
	LogFile            string
	DBPath             string
	PersistEnabled     bool
	VeristatDir        string
	ConfigPath         string
}

type fileConfig struct {
	Engine struct {
		PeriodicIntervalSeconds   int `toml:"periodic_interval_seconds"`
		PredictiveIntervalSeconds int `toml:"predictive_interval_seconds"`
		HistoryCap                int `toml:"history_cap"`
		HistoryTrim               int `toml:"history_trim"`
		BufferSize                int `toml:"buffer_size"`
	} `toml:"engine"`
	Logging struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"logging"`
	Storage struct {
		Path    string `toml:"path"`
		Enabled *bool  `toml:"enabled"`
	} `toml:"storage"`
}

// LoadConfig resolves the veristat directory, reads the optional config
// file, and applies environment overrides. A missing config file is not an
// error; defaults apply.
func LoadConfig() (*Config, error) {
	dir, err := veristatDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PeriodicInterval:   DefaultPeriodicIntervalSeconds * time.Second,
		PredictiveInterval: DefaultPredictiveIntervalSeconds * time.Second,
		HistoryCap:         DefaultHistoryCap,
		HistoryTrim:        DefaultHistoryTrim,
		BufferSize:         DefaultBufferSize,
		LogLevel:           DefaultLogLevel,
		PersistEnabled:     true,
		VeristatDir:        dir,
		DBPath:             filepath.Join(dir, DefaultDBFile),
		ConfigPath:         filepath.Join(dir, "config.toml"),
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if cfg.HistoryTrim > cfg.HistoryCap {
		cfg.HistoryTrim = cfg.HistoryCap / 2
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.ConfigPath, err)
	}

	if fc.Engine.PeriodicIntervalSeconds > 0 {
		c.PeriodicInterval = time.Duration(fc.Engine.PeriodicIntervalSeconds) * time.Second
	}
	if fc.Engine.PredictiveIntervalSeconds > 0 {
		c.PredictiveInterval = time.Duration(fc.Engine.PredictiveIntervalSeconds) * time.Second
	}
	if fc.Engine.HistoryCap > 0 {
		c.HistoryCap = fc.Engine.HistoryCap
	}
	if fc.Engine.HistoryTrim > 0 {
		c.HistoryTrim = fc.Engine.HistoryTrim
	}
	if fc.Engine.BufferSize > 0 {
		c.BufferSize = fc.Engine.BufferSize
	}
	if fc.Logging.Level != "" {
		c.LogLevel = fc.Logging.Level
	}
	if fc.Logging.File != "" {
		c.LogFile = fc.Logging.File
	}
	if fc.Storage.Path != "" {
		c.DBPath = fc.Storage.Path
	}
	if fc.Storage.Enabled != nil {
		c.PersistEnabled = *fc.Storage.Enabled
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VERISTAT_PERIODIC_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PeriodicInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("VERISTAT_PREDICTIVE_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PredictiveInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("VERISTAT_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BufferSize = n
		}
	}
	if v := os.Getenv("VERISTAT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("VERISTAT_DB_PATH"); v != "" {
		c.DBPath = v
	}
}

// veristatDir resolves the application directory, creating it if needed.
// VERISTAT_DIR overrides the default ~/.veristat.
func veristatDir() (string, error) {
	dir := os.Getenv("VERISTAT_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".veristat")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create veristat directory: %w", err)
	}
	return dir, nil
}
