// Vehicle telemetry model as delivered by the perception/control stack
package telemetry

import "time"

// LaneChangeState mirrors the controller's lane change progress.
type LaneChangeState int

// Lane change states. Any state other than LaneChangeOff counts as in progress.
const (
	LaneChangeOff LaneChangeState = iota
	LaneChangePre
	LaneChangeStarting
	LaneChangeFinishing
)

// InProgress reports whether a lateral maneuver is committed or executing.
func (s LaneChangeState) InProgress() bool { return s != LaneChangeOff }

func (s LaneChangeState) String() string {
	if s.InProgress() {
		return "IN_PROGRESS"
	}
	return "NONE"
}

// Direction is a lateral side.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "LEFT"
	case DirectionRight:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// Opposite returns the other side; DirectionNone stays none.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	default:
		return DirectionNone
	}
}

// CarState is the ego vehicle state. Speeds are m/s.
type CarState struct {
	VEgo             float64 `json:"vEgo"`
	SteeringAngleDeg float64 `json:"steeringAngleDeg"`
	LeftBlindspot    bool    `json:"leftBlindspot"`
	RightBlindspot   bool    `json:"rightBlindspot"`
	Standstill       bool    `json:"standstill"`
}

// Lead is a tracked vehicle ahead in the ego lane. A is its acceleration in m/s².
type Lead struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	V    float64 `json:"v"`
	A    float64 `json:"a"`
	Prob float64 `json:"prob"`
}

// SideLead is a tracked vehicle in an adjacent lane.
type SideLead struct {
	DRel   float64 `json:"dRel"`
	VRel   float64 `json:"vRel"`
	Status bool    `json:"status"`
}

// Meta carries the model's lane geometry summary.
type Meta struct {
	LaneWidthLeft       float64         `json:"laneWidthLeft"`
	LaneWidthRight      float64         `json:"laneWidthRight"`
	LaneChangeState     LaneChangeState `json:"laneChangeState"`
	LaneChangeDirection Direction       `json:"laneChangeDirection"`
}

// Curvature is the planned path curvature.
type Curvature struct {
	MaxOrientationRate float64 `json:"maxOrientationRate"`
}

// ModelV2 is the perception model output.
type ModelV2 struct {
	Lead0           *Lead      `json:"lead0,omitempty"`
	Lead1           *Lead      `json:"lead1,omitempty"`
	LeadLeft        *SideLead  `json:"leadLeft,omitempty"`
	LeadRight       *SideLead  `json:"leadRight,omitempty"`
	LaneLineOffsets []float64  `json:"laneLineOffsets,omitempty"`
	LaneLineProbs   []float64  `json:"laneLineProbs,omitempty"`
	Meta            *Meta      `json:"meta,omitempty"`
	Curvature       *Curvature `json:"curvature,omitempty"`
}

// LeadVehicle returns the lead vehicle when it is tracked with enough confidence.
func (m *ModelV2) LeadVehicle() (*Lead, bool) {
	if m == nil || m.Lead0 == nil {
		return nil, false
	}
	if m.Lead0.Prob <= 0.5 || m.Lead0.X <= 0 {
		return nil, false
	}
	return m.Lead0, true
}

// SystemState reports whether the driving assistance is engaged.
type SystemState struct {
	Enabled bool `json:"enabled"`
	Active  bool `json:"active"`
}

// Road is the map-derived context of the current road.
type Road struct {
	Category      int `json:"roadcate"`
	LaneCount     int `json:"nLaneCount"`
	SpeedLimitKph int `json:"nRoadLimitSpeed"`
}

// Snapshot is one immutable telemetry sample. Absent sub-structures are nil.
type Snapshot struct {
	Sequence    uint64       `json:"sequence"`
	Timestamp   float64      `json:"timestamp"`
	ReceivedAt  time.Time    `json:"receivedAt"`
	CarState    *CarState    `json:"carState,omitempty"`
	ModelV2     *ModelV2     `json:"modelV2,omitempty"`
	SystemState *SystemState `json:"systemState,omitempty"`
	Road        *Road        `json:"road,omitempty"`
}

// LaneChange returns the lane change state and direction, or off/none when meta is absent.
func (s *Snapshot) LaneChange() (LaneChangeState, Direction) {
	if s == nil || s.ModelV2 == nil || s.ModelV2.Meta == nil {
		return LaneChangeOff, DirectionNone
	}
	return s.ModelV2.Meta.LaneChangeState, s.ModelV2.Meta.LaneChangeDirection
}
