package monitor

import (
	"context"
	"fmt"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"drivelink/internal/config"
)

// greptimeClient is the subset of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes verdict and stats rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client       greptimeClient
	verdictTable string
	statsTable   string
	timeout      time.Duration
}

// NewGreptimeDBWriter connects to the configured GreptimeDB endpoint. Tables
// are created on first write.
func NewGreptimeDBWriter(cfg config.Greptime) (*GreptimeDBWriter, error) {
	gcfg := greptime.NewConfig(cfg.Endpoint).WithPort(cfg.Port).WithDatabase(cfg.Database)
	client, err := greptime.NewClient(gcfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:       client,
		verdictTable: cfg.VerdictTable,
		statsTable:   cfg.StatsTable,
		timeout:      5 * time.Second,
	}, nil
}

// WriteVerdict inserts a single verdict row.
func (w *GreptimeDBWriter) WriteVerdict(row VerdictRow) error {
	return w.WriteVerdicts([]VerdictRow{row})
}

// WriteVerdicts inserts multiple verdict rows.
func (w *GreptimeDBWriter) WriteVerdicts(rows []VerdictRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.verdictTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vehicle_id", types.STRING)
	tbl.AddFieldColumn("sequence", types.INT64)
	tbl.AddFieldColumn("freshness", types.STRING)
	tbl.AddFieldColumn("state", types.STRING)
	tbl.AddFieldColumn("mode", types.STRING)
	tbl.AddFieldColumn("can_overtake", types.BOOLEAN)
	tbl.AddFieldColumn("blocking_reason", types.STRING)
	tbl.AddFieldColumn("recommendation", types.STRING)
	tbl.AddFieldColumn("lane", types.STRING)
	tbl.AddFieldColumn("ego_speed_kph", types.FLOAT64)
	tbl.AddFieldColumn("lead_distance_m", types.FLOAT64)
	tbl.AddFieldColumn("conditions_met", types.INT64)
	tbl.AddFieldColumn("conditions", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		conds, err := json.MarshalToString(r.Conditions)
		if err != nil {
			return err
		}
		var rec string
		if r.Recommendation != nil {
			rec = r.Recommendation.Action + " " + r.Recommendation.Direction
		}
		met := int64(0)
		for _, c := range r.Conditions {
			if c.Met {
				met++
			}
		}
		if err := tbl.AddRow(
			r.VehicleID,
			int64(r.Sequence),
			r.Freshness,
			r.State,
			r.Mode,
			r.CanOvertake,
			r.BlockingReason,
			rec,
			r.Lane,
			r.EgoSpeedKph,
			r.LeadDistanceM,
			met,
			conds,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

// WriteStats inserts a transmission stats row.
func (w *GreptimeDBWriter) WriteStats(r StatsRow) error {
	tbl, err := table.New(w.statsTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("vehicle_id", types.STRING)
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddFieldColumn("sent", types.BOOLEAN)
	tbl.AddFieldColumn("reason", types.STRING)
	tbl.AddFieldColumn("high_priority", types.BOOLEAN)
	tbl.AddFieldColumn("size", types.INT64)
	tbl.AddFieldColumn("packets_sent", types.INT64)
	tbl.AddFieldColumn("packets_skipped", types.INT64)
	tbl.AddFieldColumn("bytes_sent", types.INT64)
	tbl.AddFieldColumn("send_rate", types.FLOAT64)
	tbl.AddFieldColumn("optimization_rate", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(
		r.VehicleID,
		r.SessionID,
		r.Sent,
		r.Reason,
		r.HighPriority,
		int64(r.Size),
		r.PacketsSent,
		r.PacketsSkipped,
		r.BytesSent,
		r.SendRate,
		r.OptimizationRate,
		r.Timestamp,
	); err != nil {
		return err
	}
	return w.write(tbl)
}

func (w *GreptimeDBWriter) write(tbl *table.Table) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptime write: %w", err)
	}
	return nil
}
