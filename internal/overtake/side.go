package overtake

import "drivelink/internal/telemetry"

const (
	minSideGapM      = 30.0
	maxClosingSpeedM = -5.0
)

// preferredSide returns the first feasible side, left before right.
func preferredSide(s *telemetry.Snapshot, th Thresholds) (telemetry.Direction, bool) {
	for _, d := range []telemetry.Direction{telemetry.DirectionLeft, telemetry.DirectionRight} {
		if sideFeasible(s, d, th) {
			return d, true
		}
	}
	return telemetry.DirectionNone, false
}

// sideFeasible checks the per-side requirements for moving into the lane on side.
func sideFeasible(s *telemetry.Snapshot, side telemetry.Direction, th Thresholds) bool {
	if s == nil || s.CarState == nil || s.ModelV2 == nil || side == telemetry.DirectionNone {
		return false
	}
	m := s.ModelV2
	if p, ok := laneProb(m, side); !ok || p < th.MinLaneProb {
		return false
	}
	// no moving towards the inside of a curve: negative rate is a left curve
	if m.Curvature != nil {
		rate := m.Curvature.MaxOrientationRate
		if (side == telemetry.DirectionLeft && rate < 0) || (side == telemetry.DirectionRight && rate > 0) {
			return false
		}
	}
	if m.Meta == nil {
		return false
	}
	if w, _ := laneWidth(m, side); w < th.MinLaneWidthM {
		return false
	}
	if blindspot(s.CarState, side) {
		return false
	}
	lead := m.LeadLeft
	if side == telemetry.DirectionRight {
		lead = m.LeadRight
	}
	if lead != nil && lead.Status {
		if lead.DRel < minSideGapM || lead.VRel < maxClosingSpeedM {
			return false
		}
	}
	return true
}
