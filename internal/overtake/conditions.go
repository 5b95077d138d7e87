// Package overtake decides whether an automated overtake is currently
// permitted and tracks the lane change state machine around that decision.
package overtake

import (
	"fmt"
	"math"

	"drivelink/internal/telemetry"
)

// Condition names, in evaluation order. The order is the priority in which
// a blocking reason is reported.
const (
	NameEgoSpeed       = "Ego speed"
	NameSpeedDiff      = "Speed differential"
	NameLaneWidth      = "Lane width"
	NameLaneConfidence = "Lane-line confidence"
	NameBlindSpot      = "Blind spot"
	NameCurvature      = "Road curvature"
	NameLaneChangeIdle = "Lane change idle"
)

// Unavailable is the actual value reported when the input a condition needs is missing.
const Unavailable = "unavailable"

const (
	kphPerMS = 3.6
	// epsilon absorbs km/h to m/s rounding so boundary values compare as equal.
	epsilon = 1e-9
)

// Condition is one evaluated safety predicate.
type Condition struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Met       bool   `json:"met"`
}

// Verdict summarizes a condition list.
type Verdict struct {
	CanOvertake    bool   `json:"canOvertake"`
	BlockingReason string `json:"blockingReason,omitempty"`
}

// Thresholds are the tunable limits. Speeds are km/h.
type Thresholds struct {
	MinSpeedKph   float64 `json:"minSpeedKph"`
	SpeedDiffKph  float64 `json:"speedDiffKph"`
	MinLaneWidthM float64 `json:"minLaneWidthM"`
	MinLaneProb   float64 `json:"minLaneProb"`
	MaxCurvature  float64 `json:"maxCurvature"`
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSpeedKph:   60,
		SpeedDiffKph:  10,
		MinLaneWidthM: 2.8,
		MinLaneProb:   0.7,
		MaxCurvature:  0.02,
	}
}

// Check evaluates every condition against s. All conditions are always
// evaluated so the full table is available for display. Check has no side
// effects and never fails; missing inputs make the dependent conditions
// unmet with Actual set to Unavailable.
func Check(s *telemetry.Snapshot, th Thresholds) []Condition {
	var cs *telemetry.CarState
	var m *telemetry.ModelV2
	if s != nil {
		cs, m = s.CarState, s.ModelV2
	}
	side := selectSide(s)
	return []Condition{
		checkSpeed(cs, th),
		checkSpeedDiff(cs, m, th),
		checkLaneWidth(m, side, th),
		checkLaneConfidence(m, side, th),
		checkBlindSpot(cs, side),
		checkCurvature(m, th),
		checkLaneChangeIdle(m),
	}
}

// Evaluate derives the verdict: every condition met, otherwise the name of
// the first unmet one.
func Evaluate(conds []Condition) Verdict {
	for _, c := range conds {
		if !c.Met {
			return Verdict{CanOvertake: false, BlockingReason: c.Name}
		}
	}
	return Verdict{CanOvertake: true}
}

// selectSide picks the side the geometry conditions look at: the committed
// lane change direction, else the side with more residual width. Left wins ties.
func selectSide(s *telemetry.Snapshot) telemetry.Direction {
	state, dir := s.LaneChange()
	if state.InProgress() && dir != telemetry.DirectionNone {
		return dir
	}
	if s == nil || s.ModelV2 == nil || s.ModelV2.Meta == nil {
		return telemetry.DirectionLeft
	}
	if s.ModelV2.Meta.LaneWidthRight > s.ModelV2.Meta.LaneWidthLeft {
		return telemetry.DirectionRight
	}
	return telemetry.DirectionLeft
}

func sideLabel(d telemetry.Direction) string {
	if d == telemetry.DirectionRight {
		return "right"
	}
	return "left"
}

func unavailable(name, threshold string) Condition {
	return Condition{Name: name, Threshold: threshold, Actual: Unavailable, Met: false}
}

func checkSpeed(cs *telemetry.CarState, th Thresholds) Condition {
	threshold := fmt.Sprintf(">= %.0f km/h", th.MinSpeedKph)
	if cs == nil {
		return unavailable(NameEgoSpeed, threshold)
	}
	return Condition{
		Name:      NameEgoSpeed,
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.0f km/h", cs.VEgo*kphPerMS),
		Met:       cs.VEgo >= th.MinSpeedKph/kphPerMS-epsilon,
	}
}

func checkSpeedDiff(cs *telemetry.CarState, m *telemetry.ModelV2, th Thresholds) Condition {
	threshold := fmt.Sprintf(">= %.0f km/h", th.SpeedDiffKph)
	if cs == nil || m == nil {
		return unavailable(NameSpeedDiff, threshold)
	}
	lead, ok := m.LeadVehicle()
	if !ok {
		return Condition{Name: NameSpeedDiff, Threshold: threshold, Actual: "no lead vehicle", Met: true}
	}
	diff := cs.VEgo - lead.V
	return Condition{
		Name:      NameSpeedDiff,
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.0f km/h", diff*kphPerMS),
		Met:       diff >= th.SpeedDiffKph/kphPerMS-epsilon,
	}
}

// laneWidth returns the residual width on side, falling back to the ego
// lane width spanned by the lane lines when the model carries no meta.
func laneWidth(m *telemetry.ModelV2, side telemetry.Direction) (float64, bool) {
	if m.Meta != nil {
		if side == telemetry.DirectionRight {
			return m.Meta.LaneWidthRight, true
		}
		return m.Meta.LaneWidthLeft, true
	}
	return egoLaneWidth(m.LaneLineOffsets)
}

// egoLaneWidth is the gap between the nearest lane lines left and right of
// the vehicle. Offsets are lateral positions with left negative.
func egoLaneWidth(offsets []float64) (float64, bool) {
	left, right := math.Inf(-1), math.Inf(1)
	for _, y := range offsets {
		if y < 0 && y > left {
			left = y
		}
		if y >= 0 && y < right {
			right = y
		}
	}
	if math.IsInf(left, 0) || math.IsInf(right, 0) {
		return 0, false
	}
	return right - left, true
}

func checkLaneWidth(m *telemetry.ModelV2, side telemetry.Direction, th Thresholds) Condition {
	threshold := fmt.Sprintf(">= %.1f m", th.MinLaneWidthM)
	if m == nil {
		return unavailable(NameLaneWidth, threshold)
	}
	w, ok := laneWidth(m, side)
	if !ok {
		return unavailable(NameLaneWidth, threshold)
	}
	return Condition{
		Name:      NameLaneWidth,
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.1f m (%s)", w, sideLabel(side)),
		Met:       w >= th.MinLaneWidthM,
	}
}

// laneProb returns the detection probability of the boundary on side.
func laneProb(m *telemetry.ModelV2, side telemetry.Direction) (float64, bool) {
	idx := 0
	if side == telemetry.DirectionRight {
		idx = 1
	}
	if idx >= len(m.LaneLineProbs) {
		return 0, false
	}
	return m.LaneLineProbs[idx], true
}

func checkLaneConfidence(m *telemetry.ModelV2, side telemetry.Direction, th Thresholds) Condition {
	threshold := fmt.Sprintf(">= %.2f", th.MinLaneProb)
	if m == nil {
		return unavailable(NameLaneConfidence, threshold)
	}
	p, ok := laneProb(m, side)
	if !ok {
		return unavailable(NameLaneConfidence, threshold)
	}
	return Condition{
		Name:      NameLaneConfidence,
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.2f (%s)", p, sideLabel(side)),
		Met:       p >= th.MinLaneProb,
	}
}

func blindspot(cs *telemetry.CarState, side telemetry.Direction) bool {
	if side == telemetry.DirectionRight {
		return cs.RightBlindspot
	}
	return cs.LeftBlindspot
}

func checkBlindSpot(cs *telemetry.CarState, side telemetry.Direction) Condition {
	threshold := "clear (" + sideLabel(side) + ")"
	if cs == nil {
		return unavailable(NameBlindSpot, threshold)
	}
	if blindspot(cs, side) {
		return Condition{Name: NameBlindSpot, Threshold: threshold, Actual: "occupied", Met: false}
	}
	return Condition{Name: NameBlindSpot, Threshold: threshold, Actual: "clear", Met: true}
}

func checkCurvature(m *telemetry.ModelV2, th Thresholds) Condition {
	threshold := fmt.Sprintf("< %.3f rad/s", th.MaxCurvature)
	if m == nil {
		return unavailable(NameCurvature, threshold)
	}
	if m.Curvature == nil {
		return Condition{Name: NameCurvature, Threshold: threshold, Actual: "straight", Met: true}
	}
	rate := math.Abs(m.Curvature.MaxOrientationRate)
	return Condition{
		Name:      NameCurvature,
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.3f rad/s", rate),
		Met:       rate < th.MaxCurvature,
	}
}

func checkLaneChangeIdle(m *telemetry.ModelV2) Condition {
	const threshold = "NONE"
	if m == nil {
		return unavailable(NameLaneChangeIdle, threshold)
	}
	var state telemetry.LaneChangeState
	if m.Meta != nil {
		state = m.Meta.LaneChangeState
	}
	return Condition{
		Name:      NameLaneChangeIdle,
		Threshold: threshold,
		Actual:    state.String(),
		Met:       !state.InProgress(),
	}
}
