package transmit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"drivelink/internal/logging"
	"drivelink/internal/telemetry"
)

// Decision reasons.
const (
	ReasonFirst        = "first packet"
	ReasonChanged      = "significant change"
	ReasonHighPriority = "high priority"
	ReasonUnchanged    = "no significant change"
	ReasonThrottled    = "throttled"
	ReasonEmitFailed   = "emit failed"
)

// Decision is the outcome of offering one packet candidate.
type Decision struct {
	Send         bool   `json:"send"`
	Significant  bool   `json:"significant"`
	HighPriority bool   `json:"highPriority"`
	Reason       string `json:"reason"`
	Size         int    `json:"size"`
}

// Recorder receives per-decision counters, typically Prometheus collectors.
type Recorder interface {
	PacketSent(bytes int, highPriority bool)
	PacketSkipped(reason string)
}

// EmitFunc hands an approved packet to the transport.
type EmitFunc func(telemetry.NavigationFields) error

// Gate combines the diff engine and the throttle: a candidate goes out iff
// it changed significantly and either the interval elapsed or the change is
// high priority. The baseline for the diff is the last packet actually sent.
// Offer may be called from several producers.
type Gate struct {
	mu          sync.Mutex
	minInterval time.Duration
	now         func() time.Time
	rec         Recorder
	sometimes   rate.Sometimes

	baseline *telemetry.NavigationFields
	lastSend time.Time
	stats    Stats
}

// NewGate returns a gate with a fresh session. rec may be nil.
func NewGate(minInterval time.Duration, rec Recorder) *Gate {
	return &Gate{
		minInterval: minInterval,
		now:         time.Now,
		rec:         rec,
		sometimes:   rate.Sometimes{First: 1, Every: 100},
		stats:       Stats{SessionID: uuid.NewString()},
	}
}

// Offer evaluates nf and, when approved, passes it to emit (nil emit is a
// dry run). A failed emit leaves the baseline and counters untouched.
func (g *Gate) Offer(ctx context.Context, nf telemetry.NavigationFields, emit EmitFunc) (Decision, error) {
	log := logging.FromContext(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	d := Decision{
		Significant:  HasSignificantChange(g.baseline, nf),
		HighPriority: IsHighPriority(g.baseline, nf),
		Size:         EstimateSize(nf),
	}
	switch {
	case !d.Significant:
		d.Reason = ReasonUnchanged
	case !ShouldSend(now, g.lastSend, g.minInterval, d.HighPriority):
		d.Reason = ReasonThrottled
	case g.baseline == nil:
		d.Send, d.Reason = true, ReasonFirst
	case d.HighPriority:
		d.Send, d.Reason = true, ReasonHighPriority
	default:
		d.Send, d.Reason = true, ReasonChanged
	}

	if !d.Send {
		g.stats.UpdateStats(d.Size, true, now)
		if g.rec != nil {
			g.rec.PacketSkipped(d.Reason)
		}
		g.sometimes.Do(func() {
			log.Debug("navigation packet skipped", "reason", d.Reason, "stats", g.stats.Format())
		})
		return d, nil
	}

	if emit != nil {
		if err := emit(nf); err != nil {
			d.Send, d.Reason = false, ReasonEmitFailed
			return d, fmt.Errorf("emit navigation packet: %w", err)
		}
	}
	cp := nf
	g.baseline = &cp
	g.lastSend = now
	g.stats.UpdateStats(d.Size, false, now)
	if g.rec != nil {
		g.rec.PacketSent(d.Size, d.HighPriority)
	}
	log.Debug("navigation packet sent", "reason", d.Reason, "size", d.Size)
	return d, nil
}

// Stats returns a copy of the session counters.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// Reset starts a new transmission session.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline = nil
	g.lastSend = time.Time{}
	g.stats = Stats{SessionID: uuid.NewString()}
}
