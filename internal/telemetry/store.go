package telemetry

import (
	"sync/atomic"
	"time"
)

// Freshness classifies the age of the latest snapshot.
type Freshness int

const (
	NoData Freshness = iota
	Fresh
	Stale
	Disconnected
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Disconnected:
		return "disconnected"
	default:
		return "no_data"
	}
}

// Store holds the latest snapshot. One ingest path writes, any number of
// evaluators read; a reader always sees a complete snapshot.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	updates atomic.Uint64
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Store replaces the current snapshot. The snapshot must not be mutated afterwards.
func (s *Store) Store(snap *Snapshot) {
	s.cur.Store(snap)
	s.updates.Add(1)
}

// Load returns the current snapshot or nil.
func (s *Store) Load() *Snapshot { return s.cur.Load() }

// Clear drops the current snapshot.
func (s *Store) Clear() { s.cur.Store(nil) }

// Updates returns how many snapshots have been stored.
func (s *Store) Updates() uint64 { return s.updates.Load() }

// Age returns the time since the current snapshot was received.
func (s *Store) Age(now time.Time) (time.Duration, bool) {
	snap := s.cur.Load()
	if snap == nil {
		return 0, false
	}
	return now.Sub(snap.ReceivedAt), true
}

// Freshness classifies the current snapshot against the stale and disconnect thresholds.
func (s *Store) Freshness(now time.Time, staleAfter, disconnectAfter time.Duration) Freshness {
	age, ok := s.Age(now)
	if !ok {
		return NoData
	}
	return Classify(age, staleAfter, disconnectAfter)
}

// Classify maps a snapshot age onto a Freshness.
func Classify(age, staleAfter, disconnectAfter time.Duration) Freshness {
	switch {
	case age >= disconnectAfter:
		return Disconnected
	case age >= staleAfter:
		return Stale
	default:
		return Fresh
	}
}
