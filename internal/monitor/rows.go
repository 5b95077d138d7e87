package monitor

import (
	"time"

	"drivelink/internal/lane"
	"drivelink/internal/overtake"
	"drivelink/internal/telemetry"
	"drivelink/internal/transmit"
)

const kphPerMS = 3.6

// VerdictRow is one evaluation tick as written to the verdict sinks.
type VerdictRow struct {
	VehicleID      string                   `json:"vehicle_id"`
	Sequence       uint64                   `json:"sequence"`
	Freshness      string                   `json:"freshness"`
	State          string                   `json:"state"`
	Mode           string                   `json:"mode"`
	CanOvertake    bool                     `json:"can_overtake"`
	BlockingReason string                   `json:"blocking_reason,omitempty"`
	Direction      string                   `json:"direction,omitempty"`
	Recommendation *overtake.Recommendation `json:"recommendation,omitempty"`
	Lane           string                   `json:"lane,omitempty"`
	LanePosition   *lane.Position           `json:"lane_position,omitempty"`
	EgoSpeedKph    float64                  `json:"ego_speed_kph"`
	LeadDistanceM  float64                  `json:"lead_distance_m,omitempty"`
	Conditions     []overtake.Condition     `json:"conditions,omitempty"`
	Timestamp      time.Time                `json:"timestamp"`
}

func newVerdictRow(vehicleID string, s *telemetry.Snapshot, f telemetry.Freshness, st overtake.Status, now time.Time) VerdictRow {
	row := VerdictRow{
		VehicleID:      vehicleID,
		Freshness:      f.String(),
		State:          st.State.String(),
		Mode:           st.Mode.String(),
		CanOvertake:    st.Verdict.CanOvertake,
		BlockingReason: st.Verdict.BlockingReason,
		Direction:      st.Direction,
		Recommendation: st.Recommendation,
		Conditions:     st.Conditions,
		Timestamp:      now.UTC(),
	}
	if s == nil {
		return row
	}
	row.Sequence = s.Sequence
	if s.CarState != nil {
		row.EgoSpeedKph = s.CarState.VEgo * kphPerMS
	}
	if s.ModelV2 != nil {
		if lead, ok := s.ModelV2.LeadVehicle(); ok {
			row.LeadDistanceM = lead.X
		}
	}
	if pos, ok := lane.FromSnapshot(s); ok {
		row.Lane = pos.String()
		row.LanePosition = &pos
	} else if s.ModelV2 != nil && s.ModelV2.Meta != nil {
		row.Lane = lane.Describe(s.ModelV2.Meta.LaneWidthLeft, s.ModelV2.Meta.LaneWidthRight)
	}
	return row
}

// StatsRow is one transmission decision together with the session counters.
type StatsRow struct {
	VehicleID        string    `json:"vehicle_id"`
	SessionID        string    `json:"session_id"`
	Sent             bool      `json:"sent"`
	Reason           string    `json:"reason"`
	HighPriority     bool      `json:"high_priority"`
	Size             int       `json:"size"`
	PacketsSent      int64     `json:"packets_sent"`
	PacketsSkipped   int64     `json:"packets_skipped"`
	BytesSent        int64     `json:"bytes_sent"`
	AvgPacketSize    int64     `json:"avg_packet_size"`
	SendRate         float64   `json:"send_rate"`
	OptimizationRate float64   `json:"optimization_rate"`
	Timestamp        time.Time `json:"timestamp"`
}

func newStatsRow(vehicleID string, d transmit.Decision, st transmit.Stats, now time.Time) StatsRow {
	return StatsRow{
		VehicleID:        vehicleID,
		SessionID:        st.SessionID,
		Sent:             d.Send,
		Reason:           d.Reason,
		HighPriority:     d.HighPriority,
		Size:             d.Size,
		PacketsSent:      st.PacketsSent,
		PacketsSkipped:   st.PacketsSkipped,
		BytesSent:        st.BytesSent,
		AvgPacketSize:    st.AvgPacketSize,
		SendRate:         st.SendRate,
		OptimizationRate: st.OptimizationRate(),
		Timestamp:        now.UTC(),
	}
}
