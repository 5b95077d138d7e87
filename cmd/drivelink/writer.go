package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"drivelink/internal/config"
	"drivelink/internal/monitor"
)

// writers bundles the sinks one session writes to.
type writers struct {
	verdict  monitor.VerdictWriter
	stats    monitor.StatsWriter
	recorder monitor.SnapshotRecorder
	tui      *monitor.TUIWriter
	cleanup  func()
}

// newWriters sets up verdict and stats writers based on flags, config and env vars.
// The returned cleanup closes any files and stops the TUI.
func newWriters(cfg *config.Config, printOnly, tui bool, logFile string) (*writers, error) {
	w := &writers{cleanup: func() {}}

	switch {
	case tui && term.IsTerminal(int(os.Stdout.Fd())):
		tw := monitor.NewTUIWriter(cfg.VehicleID)
		w.verdict, w.stats, w.tui = tw, tw, tw
		w.cleanup = func() { _ = tw.Close() }
	case printOnly || cfg.Greptime.Endpoint == "":
		if tui {
			slog.Warn("stdout is not a terminal, falling back to JSON output")
		}
		sw := monitor.NewJSONStdoutWriter()
		w.verdict, w.stats = sw, sw
	default:
		gw, err := monitor.NewGreptimeDBWriter(cfg.Greptime)
		if err != nil {
			return nil, err
		}
		w.verdict, w.stats = gw, gw
	}

	if logFile == "" {
		return w, nil
	}
	fw, err := monitor.NewFileWriter(logFile, logFile+".stats", logFile+".snapshots")
	if err != nil {
		w.cleanup()
		return nil, err
	}
	mw := monitor.NewMultiWriter(
		[]monitor.VerdictWriter{w.verdict, fw},
		[]monitor.StatsWriter{w.stats, fw},
	)
	w.verdict, w.stats, w.recorder = mw, mw, fw
	base := w.cleanup
	w.cleanup = func() {
		base()
		_ = fw.Close()
	}
	return w, nil
}
