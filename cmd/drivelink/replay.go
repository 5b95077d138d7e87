package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"drivelink/internal/logging"
	"drivelink/internal/monitor"
	"drivelink/internal/telemetry"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-evaluate a recorded snapshot log",
	Long:  "replay feeds recorded snapshots back through the overtake monitor and writes the verdicts to GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		if replaySpeed <= 0 {
			return fmt.Errorf("speed must be positive")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg, false)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		w, err := newWriters(cfg, replayPrintOnly, false, "")
		if err != nil {
			return err
		}
		defer w.cleanup()

		opts, err := monitorOptions(cfg)
		if err != nil {
			return err
		}
		// the replay writes every row itself
		mon := monitor.New(opts, telemetry.NewStore(), nil)
		n, err := monitor.ReplayLogFile(ctx, replayInput, mon, w.verdict, replaySpeed)
		log.Info("replay finished", "snapshots", n, "input", replayInput)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to a recorded snapshot log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print verdicts to STDOUT instead of writing to DB")
	replayCmd.MarkFlagRequired("input")
}
