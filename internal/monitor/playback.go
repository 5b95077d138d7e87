package monitor

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"drivelink/internal/telemetry"
)

// Evaluator turns one snapshot into a verdict row.
type Evaluator interface {
	Evaluate(s *telemetry.Snapshot, f telemetry.Freshness, now time.Time) VerdictRow
}

// ReplayLog re-evaluates recorded snapshots from r and writes the verdicts.
// A speed >0 replays with the recorded spacing scaled by speed; speed <= 0
// inserts no delay.
func ReplayLog(ctx context.Context, r io.Reader, ev Evaluator, w VerdictWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var snap telemetry.Snapshot
		if err := dec.Decode(&snap); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := snap.ReceivedAt.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				select {
				case <-ctx.Done():
					return n, ctx.Err()
				case <-time.After(diff):
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		row := ev.Evaluate(&snap, telemetry.Fresh, snap.ReceivedAt)
		if err := w.WriteVerdict(row); err != nil {
			return n, err
		}
		n++
		prev = snap.ReceivedAt
	}
}

// ReplayLogFile opens a file and replays its snapshots.
func ReplayLogFile(ctx context.Context, path string, ev Evaluator, w VerdictWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, ev, w, speed)
}
