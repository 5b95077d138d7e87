package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"drivelink/internal/admin"
	"drivelink/internal/logging"
	"drivelink/internal/metrics"
	"drivelink/internal/monitor"
	"drivelink/internal/scenario"
	"drivelink/internal/telemetry"
	"drivelink/internal/transmit"
)

var (
	simScenario  string
	simPrintOnly bool
	simTUI       bool
	simLogFile   string
	simNoAdmin   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the monitor against a scripted scenario",
	Long:  "simulate feeds the monitor from a scenario generator instead of a live vehicle.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := loadScenario(simScenario)
		if err != nil {
			return err
		}

		w, err := newWriters(cfg, simPrintOnly, simTUI, simLogFile)
		if err != nil {
			return err
		}
		defer w.cleanup()
		log := newLogger(cfg, w.tui != nil)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		opts, err := monitorOptions(cfg)
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		met := metrics.New(reg)
		store := telemetry.NewStore()
		gen := scenario.NewGenerator(sc)

		mon := monitor.New(opts, store, w.verdict)
		mon.SetObserver(met)
		if w.recorder != nil {
			mon.SetRecorder(w.recorder)
		}
		if w.tui != nil {
			w.tui.SetModeSwitcher(mon.SetMode)
		}

		var tx monitor.Transmitter
		if cfg.Transmit.Target != "" {
			sender, err := transmit.NewSender(cfg.Transmit.Target, cfg.Transmit.MaxPacketBytes)
			if err != nil {
				return err
			}
			defer sender.Close()
			tx = sender
		}
		gate := transmit.NewGate(cfg.Transmit.MinInterval(), met)
		mon.AttachTransmit(gen, gate, tx, w.stats, cfg.Transmit.MinInterval()/2)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			gen.Run(gctx, store, cfg.Tick)
			return nil
		})
		g.Go(func() error {
			mon.Run(gctx)
			return nil
		})
		g.Go(func() error {
			mon.RunTransmit(gctx)
			return nil
		})
		if !simNoAdmin {
			srv := admin.NewServer(mon, metrics.Handler(reg))
			g.Go(func() error { return srv.Start(gctx, cfg.Admin.Addr) })
		}

		err = g.Wait()
		log.Info("simulation stopped", "run_id", gen.RunID())
		return err
	},
}

// loadScenario resolves a built-in scenario name or a YAML file path.
func loadScenario(name string) (*scenario.Scenario, error) {
	if sc, ok := scenario.BuiltIn()[name]; ok {
		return &sc, nil
	}
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return scenario.Load(name)
}

func init() {
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "highway-overtake", "Built-in scenario name or path to a scenario YAML")
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print verdicts to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render verdicts in a terminal UI")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export verdict/stats/snapshot logs (JSONL)")
	simulateCmd.Flags().BoolVar(&simNoAdmin, "no-admin", false, "Do not start the admin HTTP server")
}
