package monitor

import (
	"errors"
	"testing"
)

type plainWriter struct{ n int }

func (p *plainWriter) WriteVerdict(VerdictRow) error { p.n++; return nil }

type failingWriter struct{}

func (failingWriter) WriteVerdict(VerdictRow) error { return errors.New("sink down") }

func TestMultiWriterFanOut(t *testing.T) {
	a, b := &collectWriter{}, &plainWriter{}
	mw := NewMultiWriter([]VerdictWriter{a, b}, []StatsWriter{a})

	if err := mw.WriteVerdict(VerdictRow{VehicleID: "v"}); err != nil {
		t.Fatalf("WriteVerdict: %v", err)
	}
	if err := mw.WriteVerdicts([]VerdictRow{{}, {}}); err != nil {
		t.Fatalf("WriteVerdicts: %v", err)
	}
	if err := mw.WriteStats(StatsRow{}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	if len(a.verdicts) != 3 || b.n != 3 || len(a.stats) != 1 {
		t.Fatalf("fan-out counts: collect=%d plain=%d stats=%d", len(a.verdicts), b.n, len(a.stats))
	}
}

func TestMultiWriterStopsOnError(t *testing.T) {
	after := &plainWriter{}
	mw := NewMultiWriter([]VerdictWriter{failingWriter{}, after}, nil)
	if err := mw.WriteVerdict(VerdictRow{}); err == nil {
		t.Fatalf("expected error")
	}
	if after.n != 0 {
		t.Fatalf("writer after the failing one was called")
	}
}
