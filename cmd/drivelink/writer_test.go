package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"drivelink/internal/config"
	"drivelink/internal/monitor"
	"drivelink/internal/telemetry"
)

func TestNewWritersPrintOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Greptime.Endpoint = "greptime.local"
	w, err := newWriters(cfg, true, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	w.cleanup()
	if _, ok := w.verdict.(*monitor.JSONStdoutWriter); !ok {
		t.Fatalf("expected *monitor.JSONStdoutWriter, got %T", w.verdict)
	}
	if _, ok := w.stats.(*monitor.JSONStdoutWriter); !ok {
		t.Fatalf("expected *monitor.JSONStdoutWriter, got %T", w.stats)
	}
	if w.recorder != nil {
		t.Fatalf("expected no snapshot recorder without a log file")
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	cfg := config.Default()
	w, err := newWriters(cfg, false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	w.cleanup()
	if _, ok := w.verdict.(*monitor.JSONStdoutWriter); !ok {
		t.Fatalf("expected *monitor.JSONStdoutWriter, got %T", w.verdict)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.log")
	w, err := newWriters(config.Default(), true, false, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer w.cleanup()
	if _, ok := w.verdict.(*monitor.MultiWriter); !ok {
		t.Fatalf("expected *monitor.MultiWriter, got %T", w.verdict)
	}
	if w.recorder == nil {
		t.Fatalf("expected a snapshot recorder")
	}

	row := monitor.VerdictRow{VehicleID: "car-01", State: "MONITORING", Timestamp: time.Now()}
	if err := w.verdict.WriteVerdict(row); err != nil {
		t.Fatalf("write verdict failed: %v", err)
	}
	if err := w.stats.WriteStats(monitor.StatsRow{VehicleID: "car-01", Sent: true, Timestamp: time.Now()}); err != nil {
		t.Fatalf("write stats failed: %v", err)
	}
	if err := w.recorder.RecordSnapshot(&telemetry.Snapshot{Sequence: 1, ReceivedAt: time.Now()}); err != nil {
		t.Fatalf("record snapshot failed: %v", err)
	}

	for _, p := range []string{path, path + ".stats", path + ".snapshots"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s failed: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestMonitorOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Overtake.Mode = "auto"
	cfg.Overtake.MinSpeedKph = 70
	opts, err := monitorOptions(cfg)
	if err != nil {
		t.Fatalf("monitorOptions returned error: %v", err)
	}
	if opts.Mode.String() != "auto" {
		t.Fatalf("expected auto mode, got %s", opts.Mode)
	}
	if opts.Thresholds.MinSpeedKph != 70 {
		t.Fatalf("expected min speed 70, got %v", opts.Thresholds.MinSpeedKph)
	}

	cfg.Overtake.Mode = "sideways"
	if _, err := monitorOptions(cfg); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := loadScenario("highway-overtake")
	if err != nil {
		t.Fatalf("load built-in: %v", err)
	}
	if len(sc.Phases) == 0 {
		t.Fatalf("expected phases in %q", sc.Name)
	}
	if _, err := loadScenario("no-such-scenario"); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}
