package monitor

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"drivelink/internal/overtake"
	"drivelink/internal/telemetry"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	ts := time.Unix(0, 0).UTC()
	vRow := VerdictRow{
		VehicleID:      "car-01",
		State:          "MONITORING",
		BlockingReason: overtake.NameBlindSpot,
		Conditions:     []overtake.Condition{{Name: overtake.NameBlindSpot, Actual: "occupied"}},
		Timestamp:      ts,
	}
	sRow := StatsRow{VehicleID: "car-01", SessionID: "s1", Sent: true, Reason: "first packet", Timestamp: ts}
	snap := &telemetry.Snapshot{Sequence: 9, ReceivedAt: ts, CarState: &telemetry.CarState{VEgo: 12}}

	paths := map[string]string{
		"verdicts":  filepath.Join(dir, "verdicts.jsonl"),
		"stats":     filepath.Join(dir, "stats.jsonl"),
		"snapshots": filepath.Join(dir, "snapshots.jsonl"),
	}
	fw, err := NewFileWriter(paths["verdicts"], paths["stats"], paths["snapshots"])
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteVerdict(vRow); err != nil {
		t.Fatalf("WriteVerdict: %v", err)
	}
	if err := fw.WriteStats(sRow); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	if err := fw.RecordSnapshot(snap); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	t.Run("verdicts", func(t *testing.T) {
		var got VerdictRow
		readFirstLine(t, paths["verdicts"], &got)
		if got.BlockingReason != vRow.BlockingReason || len(got.Conditions) != 1 {
			t.Fatalf("unexpected verdict: %#v", got)
		}
	})
	t.Run("stats", func(t *testing.T) {
		var got StatsRow
		readFirstLine(t, paths["stats"], &got)
		if got.SessionID != "s1" || !got.Sent {
			t.Fatalf("unexpected stats: %#v", got)
		}
	})
	t.Run("snapshots", func(t *testing.T) {
		var got telemetry.Snapshot
		readFirstLine(t, paths["snapshots"], &got)
		if got.Sequence != 9 || got.CarState == nil || got.CarState.VEgo != 12 {
			t.Fatalf("unexpected snapshot: %#v", got)
		}
	})
}

func TestFileWriterOptionalLogs(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(filepath.Join(dir, "v.jsonl"), "", "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteStats(StatsRow{}); err != nil {
		t.Fatalf("WriteStats without stats log: %v", err)
	}
	if err := fw.RecordSnapshot(&telemetry.Snapshot{}); err != nil {
		t.Fatalf("RecordSnapshot without snapshot log: %v", err)
	}
}

func readFirstLine(t *testing.T, path string, v any) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatalf("%s is empty", path)
	}
	if err := json.Unmarshal(sc.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}
