package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daverage/veristat/internal/app"
	"github.com/daverage/veristat/internal/metric"
	"github.com/daverage/veristat/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the veristat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("veristat %s\n", version.Version)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics engine with background analysis cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backfill(); err != nil {
			a.Logger.Warn("history backfill failed", zap.Error(err))
		}
		if err := a.Engine.Initialize(); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		a.Logger.Info("shutting down")
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one comprehensive analysis over stored history and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backfill(); err != nil {
			return err
		}
		report := a.Engine.PerformComprehensiveAnalysis()
		return printJSON(report)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print engine statistics and the current aggregate snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backfill(); err != nil {
			return err
		}
		a.Engine.RunPeriodicAnalysis()

		out := struct {
			Statistics metric.SystemStatistics   `json:"statistics"`
			Metrics    metric.SystemTruthMetrics `json:"metrics"`
		}{
			Statistics: a.Engine.GetSystemStatistics(),
			Metrics:    a.Engine.GetSystemMetrics(),
		}
		return printJSON(out)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the current health indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backfill(); err != nil {
			return err
		}
		a.Engine.RunPeriodicAnalysis()
		return printJSON(a.Engine.GetHealthIndicators())
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Ingest a JSONL stream of truth metrics, then run one analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		defer f.Close()

		var ingested, skipped int
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var m metric.TruthMetric
			if err := json.Unmarshal(line, &m); err != nil {
				skipped++
				continue
			}
			a.Engine.Ingest(m)
			ingested++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read replay file: %w", err)
		}

		a.Logger.Info("replay complete",
			zap.Int("ingested", ingested), zap.Int("skipped", skipped))
		report := a.Engine.PerformComprehensiveAnalysis()
		return printJSON(report)
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
