package monitor

import (
	"context"

	"drivelink/internal/overtake"
	"drivelink/internal/telemetry"
)

// VerdictWriter receives one row per evaluation tick.
type VerdictWriter interface {
	WriteVerdict(VerdictRow) error
}

// StatsWriter receives one row per transmission decision.
type StatsWriter interface {
	WriteStats(StatsRow) error
}

// Optional: writers may batch verdicts (replay)
type batchVerdictWriter interface {
	WriteVerdicts([]VerdictRow) error
}

// SnapshotRecorder persists raw snapshots for later replay.
type SnapshotRecorder interface {
	RecordSnapshot(*telemetry.Snapshot) error
}

// Observer is notified of every tick, typically the Prometheus collectors.
type Observer interface {
	ObserveStatus(overtake.Status)
	ObserveFeed(ageSeconds float64, f telemetry.Freshness)
}

// NavSource yields the latest navigation field set.
type NavSource interface {
	Latest() (telemetry.NavigationFields, bool)
}

// Transmitter puts an approved packet on the wire.
type Transmitter interface {
	Send(ctx context.Context, nf telemetry.NavigationFields) error
}
