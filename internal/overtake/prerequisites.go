package overtake

import (
	"math"

	"drivelink/internal/lane"
	"drivelink/internal/telemetry"
)

// Advisor limits on top of the condition list.
const (
	maxLeadDistanceM   = 80.0
	minLead1DistanceM  = 150.0
	maxLeadAccel       = 0.5 // m/s²
	maxSteeringDeg     = 15.0
	speedLimitRatio    = 0.9
	speedRatioTrigger  = 0.8
	maxLead1ApproachMS = 5.0
)

// Reasons the advisor holds a recommendation back while the condition list passes.
const (
	HoldDisengaged = "system not engaged"
	HoldStandstill = "standstill"
	HoldSteering   = "steering angle"
	HoldRoad       = "not a highway"
	HoldNoLead     = "no lead vehicle in range"
	HoldLeadAccel  = "lead accelerating"
	HoldLead1Close = "second lead too close"
)

// holdReason returns why the advisor must wait, or "" when every
// prerequisite holds. A hold keeps the debounce count.
func holdReason(s *telemetry.Snapshot) string {
	switch {
	case s == nil || s.SystemState == nil || !s.SystemState.Enabled || !s.SystemState.Active:
		return HoldDisengaged
	case s.CarState == nil || s.CarState.Standstill:
		return HoldStandstill
	case math.Abs(s.CarState.SteeringAngleDeg) > maxSteeringDeg:
		return HoldSteering
	case s.Road == nil || !lane.IsHighway(s.Road.Category):
		return HoldRoad
	}
	lead, ok := s.ModelV2.LeadVehicle()
	if !ok || lead.X >= maxLeadDistanceM {
		return HoldNoLead
	}
	if lead.A > maxLeadAccel {
		return HoldLeadAccel
	}
	if l1 := s.ModelV2.Lead1; l1 != nil && l1.Prob > 0.5 && l1.X < minLead1DistanceM {
		return HoldLead1Close
	}
	return ""
}

// overtakeWanted reports whether the lead is slow enough to be worth
// passing. It expects holdReason to have passed.
func overtakeWanted(s *telemetry.Snapshot, th Thresholds) bool {
	lead, ok := s.ModelV2.LeadVehicle()
	if !ok {
		return false
	}
	vEgo := s.CarState.VEgo
	if limit := float64(s.Road.SpeedLimitKph) / kphPerMS; limit > 0.1 && lead.V >= limit*speedLimitRatio {
		return false
	}
	// a fast car closing in behind the lead occupies the gap we would use
	if l1 := s.ModelV2.Lead1; l1 != nil && l1.Prob > 0.5 && l1.V-vEgo > maxLead1ApproachMS {
		return false
	}
	ratio := 0.0
	if vEgo > 0.1 {
		ratio = lead.V / vEgo
	}
	return vEgo-lead.V >= th.SpeedDiffKph/kphPerMS-epsilon || ratio < speedRatioTrigger
}
