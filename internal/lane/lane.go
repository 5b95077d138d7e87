// Package lane estimates which lane the ego vehicle occupies from the
// residual drivable width on each side and the detected lane count.
package lane

import (
	"fmt"
	"math"

	"drivelink/internal/telemetry"
)

// Position is an estimated lane index, 0 being the leftmost lane.
type Position struct {
	Index    int  `json:"index"`
	Accurate bool `json:"accurate"`
	Count    int  `json:"count"`
}

// Number returns the 1-based lane number shown to the driver.
func (p Position) Number() int { return p.Index + 1 }

func (p Position) String() string {
	q := "~"
	if p.Accurate {
		q = ""
	}
	return fmt.Sprintf("%s%d/%d", q, p.Number(), p.Count)
}

// IsHighway reports whether a road category is a highway class.
func IsHighway(category int) bool {
	return category == 0 || category == 1
}

// Estimate derives the lane index from the lane count n, the residual widths
// wl and wr in meters and the highway flag. The thresholds are fixed; widths
// are not validated. ok is false when n is zero.
func Estimate(n int, wl, wr float64, highway bool) (Position, bool) {
	if n <= 0 {
		return Position{}, false
	}
	var p Position
	switch {
	case n <= 2:
		p = estimateNarrow(n, wl, wr)
	case n == 3:
		p = estimateThree(wl, wr, highway)
	case n == 4:
		p = estimateFour(wl, wr, highway)
	default:
		p = estimateWide(n, wl, wr)
	}
	p.Count = n
	return p, true
}

func estimateNarrow(n int, wl, wr float64) Position {
	if n == 1 || wl < wr {
		return Position{Index: 0, Accurate: true}
	}
	return Position{Index: 1, Accurate: true}
}

func estimateThree(wl, wr float64, highway bool) Position {
	idx := 1
	switch {
	case wl < 2.0:
		idx = 0
	case wr < 2.0:
		idx = 2
	}
	return Position{Index: idx, Accurate: highway || wl < 1.5 || wr < 1.5}
}

func estimateFour(wl, wr float64, highway bool) Position {
	var idx int
	switch {
	case wl < 1.8:
		idx = 0
	case wr < 1.8:
		idx = 3
	case wl > 3.2 && wr < 3.2:
		idx = 2
	case wr > 3.2 && wl < 3.2:
		idx = 1
	case wl < wr:
		idx = 1
	default:
		idx = 2
	}
	return Position{Index: idx, Accurate: highway && (wl < 1.8 || wr < 1.8)}
}

// standardLaneWidth is the nominal lane width used to count lanes from residual width.
const standardLaneWidth = 3.5

func estimateWide(n int, wl, wr float64) Position {
	accurate := wl < 1.5 || wr < 1.5
	switch {
	case wl < 2.0:
		return Position{Index: 0, Accurate: accurate}
	case wr < 2.0:
		return Position{Index: n - 1, Accurate: accurate}
	}
	left := clamp(int(math.Floor(wl/standardLaneWidth)), 0, n-1)
	right := clamp(int(math.Floor(wr/standardLaneWidth)), 0, n-1)
	if left+right+1 == n {
		return Position{Index: left, Accurate: accurate}
	}
	prop := clamp(int(math.Floor(float64(n)*wl/(wl+wr))), 0, n-1)
	return Position{Index: prop, Accurate: accurate}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Describe is the coarse position text used when no lane count is known.
func Describe(wl, wr float64) string {
	const wide = 3.2
	switch {
	case wl > wide && wr > wide:
		return "middle lane"
	case wl <= wide && wr > wide:
		return "leftmost lane"
	case wr <= wide && wl > wide:
		return "rightmost lane"
	default:
		return "in lane"
	}
}

// FromSnapshot runs Estimate on the snapshot's road lane count and model
// lane widths. ok is false when either is missing.
func FromSnapshot(s *telemetry.Snapshot) (Position, bool) {
	if s == nil || s.Road == nil || s.ModelV2 == nil || s.ModelV2.Meta == nil {
		return Position{}, false
	}
	m := s.ModelV2.Meta
	return Estimate(s.Road.LaneCount, m.LaneWidthLeft, m.LaneWidthRight, IsHighway(s.Road.Category))
}
