package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	ts := time.Unix(0, 0).UTC()
	if err := w.WriteVerdict(VerdictRow{VehicleID: "car-01", State: "DISABLED", Timestamp: ts}); err != nil {
		t.Fatalf("WriteVerdict: %v", err)
	}
	if err := w.WriteStats(StatsRow{SessionID: "abc", Reason: "throttled", Timestamp: ts}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"vehicle_id":"car-01"`) || !strings.Contains(lines[0], `"state":"DISABLED"`) {
		t.Fatalf("verdict line = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"reason":"throttled"`) {
		t.Fatalf("stats line = %s", lines[1])
	}
}
