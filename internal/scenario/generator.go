package scenario

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"drivelink/internal/geo"
	"drivelink/internal/logging"
	"drivelink/internal/telemetry"
)

const (
	kphPerMS        = 3.6
	defaultLeadGapM = 40.0
	minLeadGapM     = 8.0
	maxLeadGapM     = 150.0
	turnSpacingM    = 2000
)

// Generator drives a scenario forward in time. It is not safe for
// concurrent use; Run owns it when used as a live feed.
type Generator struct {
	sc    *Scenario
	rng   *rand.Rand
	runID string
	now   func() time.Time

	elapsed time.Duration
	phase   int
	seq     uint64
	lat     float64
	lon     float64
	leadGap float64
	tbtDist float64

	latest atomic.Pointer[telemetry.NavigationFields]
}

// NewGenerator starts sc at its first phase and start position.
func NewGenerator(sc *Scenario) *Generator {
	return &Generator{
		sc:      sc,
		rng:     rand.New(rand.NewSource(sc.Seed)),
		runID:   uuid.NewString(),
		now:     time.Now,
		phase:   -1,
		lat:     sc.Start.Lat,
		lon:     sc.Start.Lon,
		tbtDist: turnSpacingM,
	}
}

// RunID identifies this generator run.
func (g *Generator) RunID() string { return g.runID }

// Phase returns the phase of the last generated step, the first phase
// before any step.
func (g *Generator) Phase() Phase {
	if g.phase < 0 {
		return g.sc.Phases[0]
	}
	return g.sc.Phases[g.phase]
}

// Next advances the drive by dt and returns the resulting snapshot and
// navigation fields.
func (g *Generator) Next(dt time.Duration) (*telemetry.Snapshot, telemetry.NavigationFields) {
	idx := g.sc.PhaseAt(g.elapsed)
	p := g.sc.Phases[idx]
	if idx != g.phase {
		g.phase = idx
		g.leadGap = p.LeadGapM
		if g.leadGap <= 0 {
			g.leadGap = defaultLeadGapM
		}
	}

	ego := math.Max(0, p.EgoKph+g.noise(1)) / kphPerMS
	dist := ego * dt.Seconds()
	g.lat, g.lon = geo.Offset(g.lat, g.lon, g.sc.Start.HeadingDeg, dist)
	g.tbtDist -= dist
	if g.tbtDist < 0 {
		g.tbtDist += turnSpacingM
	}
	g.elapsed += dt
	g.seq++
	now := g.now()

	model := &telemetry.ModelV2{
		LaneLineProbs: []float64{clamp01(p.LaneProb + g.noise(0.02)), clamp01(p.LaneProb + g.noise(0.02))},
		Meta: &telemetry.Meta{
			LaneWidthLeft:  math.Max(0, p.LaneWidthLeft+g.noise(0.05)),
			LaneWidthRight: math.Max(0, p.LaneWidthRight+g.noise(0.05)),
		},
	}
	if p.Curvature != 0 {
		model.Curvature = &telemetry.Curvature{MaxOrientationRate: p.Curvature}
	}
	switch p.LaneChange {
	case "left":
		model.Meta.LaneChangeState, model.Meta.LaneChangeDirection = telemetry.LaneChangeStarting, telemetry.DirectionLeft
	case "right":
		model.Meta.LaneChangeState, model.Meta.LaneChangeDirection = telemetry.LaneChangeStarting, telemetry.DirectionRight
	}
	if p.LeadKph != nil {
		lead := math.Max(0, *p.LeadKph) / kphPerMS
		g.leadGap = math.Min(maxLeadGapM, math.Max(minLeadGapM, g.leadGap+(lead-ego)*dt.Seconds()))
		model.Lead0 = &telemetry.Lead{X: g.leadGap, V: lead, Prob: 0.95}
	}

	snap := &telemetry.Snapshot{
		Sequence:   g.seq,
		Timestamp:  float64(now.UnixMilli()) / 1000,
		ReceivedAt: now,
		CarState: &telemetry.CarState{
			VEgo:           ego,
			LeftBlindspot:  p.LeftBlindspot,
			RightBlindspot: p.RightBlindspot,
			Standstill:     ego == 0,
		},
		ModelV2:     model,
		SystemState: &telemetry.SystemState{Enabled: !p.Disengaged, Active: !p.Disengaged},
		Road:        &telemetry.Road{Category: p.RoadCategory, LaneCount: p.LaneCount, SpeedLimitKph: p.SpeedLimitKph},
	}
	nf := telemetry.NavigationFields{
		RoadLimitSpeed: p.SpeedLimitKph,
		TBTDist:        int(g.tbtDist),
		TBTTurnType:    12,
		Latitude:       g.lat,
		Longitude:      g.lon,
		GPSSpeed:       ego,
		Command:        p.Command,
		CommandArg:     p.CommandArg,
		Navigating:     true,
		GoalName:       g.sc.Name,
		PosRoadName:    p.RoadName,
		RoadCategory:   p.RoadCategory,
		LaneCount:      p.LaneCount,
	}
	return snap, nf
}

func (g *Generator) noise(scale float64) float64 {
	if g.sc.Noise <= 0 {
		return 0
	}
	return g.rng.NormFloat64() * g.sc.Noise * scale
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Latest returns the navigation fields of the last Run step.
func (g *Generator) Latest() (telemetry.NavigationFields, bool) {
	nf := g.latest.Load()
	if nf == nil {
		return telemetry.NavigationFields{}, false
	}
	return *nf, true
}

// Run feeds store with a snapshot every tick until ctx is done, acting as
// a stand-in for the live vehicle feed and navigation listener.
func (g *Generator) Run(ctx context.Context, store *telemetry.Store, tick time.Duration) {
	log := logging.FromContext(ctx)
	log.Info("starting scenario", "name", g.sc.Name, "run_id", g.runID, "length", g.sc.Length())
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	current := -1
	for {
		select {
		case <-ticker.C:
			snap, nf := g.Next(tick)
			store.Store(snap)
			g.latest.Store(&nf)
			if g.phase != current {
				current = g.phase
				log.Info("scenario phase", "phase", g.sc.Phases[current].Name)
			}
		case <-ctx.Done():
			log.Info("stopping scenario", "run_id", g.runID)
			return
		}
	}
}
