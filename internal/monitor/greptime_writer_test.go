package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"drivelink/internal/overtake"
)

type mockGreptimeClient struct {
	table *table.Table
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterVerdicts(t *testing.T) {
	ts := time.Unix(10, 0).UTC()
	rows := []VerdictRow{{
		VehicleID:      "car-01",
		Sequence:       5,
		State:          "MONITORING",
		Mode:           "auto",
		CanOvertake:    true,
		Recommendation: &overtake.Recommendation{Direction: "LEFT", Action: overtake.ActionCommand},
		Conditions:     []overtake.Condition{{Name: overtake.NameEgoSpeed, Met: true}, {Name: overtake.NameBlindSpot, Met: true}},
		EgoSpeedKph:    95,
		Timestamp:      ts,
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, verdictTable: "overtake_verdicts", timeout: time.Second}
	if err := w.WriteVerdicts(rows); err != nil {
		t.Fatalf("WriteVerdicts: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	r := m.table.GetRows()
	if got := r.Schema[0].ColumnName; got != "vehicle_id" {
		t.Fatalf("first column = %s", got)
	}
	if r.Schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("vehicle_id is not a tag")
	}
	vals := r.Rows[0].Values
	if got := vals[0].GetStringValue(); got != "car-01" {
		t.Fatalf("vehicle_id = %s", got)
	}
	if !vals[5].GetBoolValue() {
		t.Fatalf("can_overtake not true")
	}
	if got := vals[7].GetStringValue(); got != "command LEFT" {
		t.Fatalf("recommendation = %q", got)
	}
	if got := vals[11].GetI64Value(); got != 2 {
		t.Fatalf("conditions_met = %d, want 2", got)
	}
}

func TestGreptimeWriterStats(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, statsTable: "nav_tx_stats", timeout: time.Second}
	row := StatsRow{VehicleID: "car-01", SessionID: "s", Sent: true, Reason: "first packet", PacketsSent: 1, Timestamp: time.Unix(0, 0)}
	if err := w.WriteStats(row); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	vals := m.table.GetRows().Rows[0].Values
	if got := vals[1].GetStringValue(); got != "s" {
		t.Fatalf("session_id = %q", got)
	}
	if got := vals[6].GetI64Value(); got != 1 {
		t.Fatalf("packets_sent = %d", got)
	}
}

func TestGreptimeWriterError(t *testing.T) {
	m := &mockGreptimeClient{err: errors.New("unavailable")}
	w := &GreptimeDBWriter{client: m, verdictTable: "v", timeout: time.Second}
	if err := w.WriteVerdict(VerdictRow{Timestamp: time.Unix(0, 0)}); err == nil {
		t.Fatalf("expected write error")
	}
	if err := w.WriteVerdicts(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}
