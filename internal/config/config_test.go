package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("VERISTAT_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.PeriodicInterval)
	assert.Equal(t, 15*time.Minute, cfg.PredictiveInterval)
	assert.Equal(t, DefaultHistoryCap, cfg.HistoryCap)
	assert.Equal(t, DefaultHistoryTrim, cfg.HistoryTrim)
	assert.Equal(t, DefaultBufferSize, cfg.BufferSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.PersistEnabled)
	assert.Equal(t, filepath.Join(cfg.VeristatDir, DefaultDBFile), cfg.DBPath)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERISTAT_DIR", dir)

	content := `
[engine]
periodic_interval_seconds = 60
predictive_interval_seconds = 120
history_cap = 500
history_trim = 250
buffer_size = 64

[logging]
level = "debug"

[storage]
enabled = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.PeriodicInterval)
	assert.Equal(t, 2*time.Minute, cfg.PredictiveInterval)
	assert.Equal(t, 500, cfg.HistoryCap)
	assert.Equal(t, 250, cfg.HistoryTrim)
	assert.Equal(t, 64, cfg.BufferSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.PersistEnabled)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERISTAT_DIR", dir)
	t.Setenv("VERISTAT_LOG_LEVEL", "warn")
	t.Setenv("VERISTAT_PERIODIC_INTERVAL_SECONDS", "30")

	content := "[logging]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.PeriodicInterval)
}

func TestTrimNeverExceedsCap(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERISTAT_DIR", dir)

	content := "[engine]\nhistory_cap = 100\nhistory_trim = 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.HistoryTrim)
}

func TestInvalidTOMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VERISTAT_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}
