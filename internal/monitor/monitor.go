// Package monitor runs the periodic overtake evaluation and the navigation
// transmission loop, and fans their results out to writers.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"drivelink/internal/logging"
	"drivelink/internal/overtake"
	"drivelink/internal/telemetry"
	"drivelink/internal/transmit"
)

// ErrInvalidThresholds is returned by SetThresholds for out-of-range limits.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Options configures a Monitor.
type Options struct {
	VehicleID       string
	Tick            time.Duration
	StaleAfter      time.Duration
	DisconnectAfter time.Duration
	Mode            overtake.Mode
	Thresholds      overtake.Thresholds
	Advisor         overtake.Options
}

// Monitor evaluates the latest snapshot every tick. Mode and thresholds may
// be swapped at runtime; each tick works on a copy.
type Monitor struct {
	vehicleID       string
	tick            time.Duration
	staleAfter      time.Duration
	disconnectAfter time.Duration
	store           *telemetry.Store
	machine         *overtake.Machine
	writer          VerdictWriter
	observer        Observer
	recorder        SnapshotRecorder
	now             func() time.Time

	mu       sync.RWMutex
	mode     overtake.Mode
	th       overtake.Thresholds
	last     VerdictRow
	pending  *overtake.Recommendation
	recorded uint64

	tx *txLoop
}

// New returns a monitor reading from store and writing verdicts to w. A nil
// w only keeps the last row.
func New(opts Options, store *telemetry.Store, w VerdictWriter) *Monitor {
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 2 * time.Second
	}
	if opts.DisconnectAfter < opts.StaleAfter {
		opts.DisconnectAfter = 2 * opts.StaleAfter
	}
	return &Monitor{
		vehicleID:       opts.VehicleID,
		tick:            opts.Tick,
		staleAfter:      opts.StaleAfter,
		disconnectAfter: opts.DisconnectAfter,
		store:           store,
		machine:         overtake.NewMachine(opts.Advisor),
		writer:          w,
		now:             time.Now,
		mode:            opts.Mode,
		th:              opts.Thresholds,
		last: VerdictRow{
			VehicleID: opts.VehicleID,
			Freshness: telemetry.NoData.String(),
			State:     overtake.StateDisabled.String(),
			Mode:      opts.Mode.String(),
		},
	}
}

// SetObserver attaches a tick observer.
func (m *Monitor) SetObserver(o Observer) { m.observer = o }

// SetRecorder makes every tick record a newly received snapshot.
func (m *Monitor) SetRecorder(r SnapshotRecorder) { m.recorder = r }

// Mode returns the active overtake mode.
func (m *Monitor) Mode() overtake.Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// SetMode switches the overtake mode from the next tick on.
func (m *Monitor) SetMode(mode overtake.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	if mode != overtake.ModeAuto {
		m.pending = nil
	}
}

// Thresholds returns the active limits.
func (m *Monitor) Thresholds() overtake.Thresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.th
}

// SetThresholds replaces the limits from the next tick on.
func (m *Monitor) SetThresholds(th overtake.Thresholds) error {
	if err := validateThresholds(th); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.th = th
	return nil
}

func validateThresholds(th overtake.Thresholds) error {
	switch {
	case th.MinSpeedKph < 0, th.SpeedDiffKph < 0, th.MinLaneWidthM < 0, th.MaxCurvature < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidThresholds)
	case th.MinLaneProb < 0 || th.MinLaneProb > 1:
		return fmt.Errorf("%w: minLaneProb must be within [0,1]", ErrInvalidThresholds)
	}
	return nil
}

// Last returns the row of the most recent tick.
func (m *Monitor) Last() VerdictRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Evaluate runs one tick on s. Snapshots that are disconnected or absent are
// evaluated as missing, which makes every condition unavailable. Evaluate
// must not be called concurrently with Run.
func (m *Monitor) Evaluate(s *telemetry.Snapshot, f telemetry.Freshness, now time.Time) VerdictRow {
	m.mu.RLock()
	mode, th := m.mode, m.th
	m.mu.RUnlock()

	if f != telemetry.Fresh && f != telemetry.Stale {
		s = nil
	}
	st := m.machine.Step(s, mode, th)
	row := newVerdictRow(m.vehicleID, s, f, st, now)

	m.mu.Lock()
	m.last = row
	if r := st.Recommendation; r != nil && r.Action == overtake.ActionCommand {
		m.pending = r
	}
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.ObserveStatus(st)
	}
	return row
}

// Run evaluates every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting monitor", "vehicle_id", m.vehicleID, "tick_interval", m.tick)
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.step(ctx)
		case <-ctx.Done():
			log.Info("stopping monitor")
			return
		}
	}
}

func (m *Monitor) step(ctx context.Context) {
	log := logging.FromContext(ctx)
	now := m.now()
	snap := m.store.Load()

	f := telemetry.NoData
	var age time.Duration
	if snap != nil {
		age = now.Sub(snap.ReceivedAt)
		f = telemetry.Classify(age, m.staleAfter, m.disconnectAfter)
	}
	if m.observer != nil {
		m.observer.ObserveFeed(age.Seconds(), f)
	}

	if m.recorder != nil && snap != nil {
		if n := m.store.Updates(); n != m.recorded {
			m.recorded = n
			if err := m.recorder.RecordSnapshot(snap); err != nil {
				log.Error("snapshot record failed", "err", err)
			}
		}
	}

	row := m.Evaluate(snap, f, now)
	if m.writer == nil {
		return
	}
	if err := m.writer.WriteVerdict(row); err != nil {
		log.Error("verdict write failed", "err", err)
	}
}

// takePending hands out an auto-mode lane change command once.
func (m *Monitor) takePending() *overtake.Recommendation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.pending
	m.pending = nil
	return r
}

// TransmitStats returns the navigation session counters, zero when no
// transmission loop is attached.
func (m *Monitor) TransmitStats() transmit.Stats {
	if m.tx == nil {
		return transmit.Stats{}
	}
	return m.tx.gate.Stats()
}
