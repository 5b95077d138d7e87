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
	"drivelink/internal/ingest"
	"drivelink/internal/logging"
	"drivelink/internal/metrics"
	"drivelink/internal/monitor"
	"drivelink/internal/telemetry"
	"drivelink/internal/transmit"
)

var (
	runPrintOnly bool
	runLogFile   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Monitor a live vehicle feed",
	Long:  "run connects to the vehicle telemetry feed, listens for navigation fields and forwards them to the vehicle.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Ingest.Address == "" {
			return fmt.Errorf("ingest.address is required for live mode")
		}
		log := newLogger(cfg, false)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, log)

		w, err := newWriters(cfg, runPrintOnly, false, runLogFile)
		if err != nil {
			return err
		}
		defer w.cleanup()

		opts, err := monitorOptions(cfg)
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		met := metrics.New(reg)
		store := telemetry.NewStore()

		mon := monitor.New(opts, store, w.verdict)
		mon.SetObserver(met)
		if w.recorder != nil {
			mon.SetRecorder(w.recorder)
		}

		recv := ingest.NewReceiver(ingest.Options{
			Address:        cfg.Ingest.Address,
			Heartbeat:      cfg.Ingest.Heartbeat,
			ReconnectDelay: cfg.Ingest.ReconnectDelay,
			ReadTimeout:    cfg.Ingest.ReadTimeout,
			DataTimeout:    cfg.Ingest.DataTimeout,
		}, store, met)

		g, gctx := errgroup.WithContext(ctx)
		if cfg.Ingest.NavListen != "" {
			nav, err := ingest.ListenNav(cfg.Ingest.NavListen)
			if err != nil {
				return err
			}
			defer nav.Close()

			var tx monitor.Transmitter
			if cfg.Transmit.Target != "" {
				sender, err := transmit.NewSender(cfg.Transmit.Target, cfg.Transmit.MaxPacketBytes)
				if err != nil {
					return err
				}
				defer sender.Close()
				tx = sender
			} else {
				log.Warn("no transmit target configured, navigation packets are gated but not sent")
			}
			gate := transmit.NewGate(cfg.Transmit.MinInterval(), met)
			mon.AttachTransmit(nav, gate, tx, w.stats, cfg.Transmit.MinInterval()/2)

			g.Go(func() error { return nav.Run(gctx) })
			g.Go(func() error {
				mon.RunTransmit(gctx)
				return nil
			})
		}

		srv := admin.NewServer(mon, metrics.Handler(reg))
		g.Go(func() error { return recv.Run(gctx) })
		g.Go(func() error { return srv.Start(gctx, cfg.Admin.Addr) })
		g.Go(func() error {
			mon.Run(gctx)
			return nil
		})

		err = g.Wait()
		log.Info("drivelink stopped")
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print verdicts to STDOUT instead of writing to DB")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Path to export verdict/stats/snapshot logs (JSONL)")
}
