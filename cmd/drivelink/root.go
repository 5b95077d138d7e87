package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"drivelink/internal/config"
	"drivelink/internal/logging"
	"drivelink/internal/monitor"
	"drivelink/internal/overtake"
)

var (
	configPath string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:   "drivelink",
	Short: "Overtake advisory and navigation link for a driver-assistance computer",
	Long: "drivelink reads vehicle telemetry, decides whether an overtake is safe " +
		"and streams navigation packets back to the vehicle.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration YAML (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath, schemaPath)
}

// newLogger builds the process logger. The TUI owns the terminal, so its
// sessions log nowhere.
func newLogger(cfg *config.Config, quiet bool) *slog.Logger {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if quiet {
		opts.Out = io.Discard
	}
	l := logging.New(opts)
	slog.SetDefault(l)
	return l
}

func monitorOptions(cfg *config.Config) (monitor.Options, error) {
	mode, err := overtake.ParseMode(cfg.Overtake.Mode)
	if err != nil {
		return monitor.Options{}, err
	}
	return monitor.Options{
		VehicleID:       cfg.VehicleID,
		Tick:            cfg.Tick,
		StaleAfter:      cfg.Staleness.StaleAfter,
		DisconnectAfter: cfg.Staleness.DisconnectAfter,
		Mode:            mode,
		Thresholds: overtake.Thresholds{
			MinSpeedKph:   cfg.Overtake.MinSpeedKph,
			SpeedDiffKph:  cfg.Overtake.SpeedDiffKph,
			MinLaneWidthM: cfg.Overtake.MinLaneWidthM,
			MinLaneProb:   cfg.Overtake.MinLaneProb,
			MaxCurvature:  cfg.Overtake.MaxCurvature,
		},
		Advisor: overtake.Options{
			DebounceFrames: cfg.Overtake.DebounceFrames,
			Cooldown:       cfg.Overtake.Cooldown,
		},
	}, nil
}
