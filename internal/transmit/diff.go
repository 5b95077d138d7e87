// Package transmit decides when a navigation packet is worth sending and
// accounts for what was sent.
package transmit

import (
	"math"
	"unicode/utf16"

	"drivelink/internal/geo"
	"drivelink/internal/telemetry"
)

const (
	// MinMoveM is the GPS displacement that counts as a significant change.
	MinMoveM = 10.0
	// MinSpeedDelta is the GPS speed change in m/s that counts as significant.
	MinSpeedDelta = 5 / 3.6
)

// HasSignificantChange reports whether next differs from prev enough to be
// sent. A nil prev always yields true, as does a missing GPS fix on either side.
func HasSignificantChange(prev *telemetry.NavigationFields, next telemetry.NavigationFields) bool {
	if prev == nil {
		return true
	}
	switch {
	case prev.RoadLimitSpeed != next.RoadLimitSpeed,
		prev.TBTDist != next.TBTDist,
		prev.TBTTurnType != next.TBTTurnType,
		prev.SdiType != next.SdiType,
		prev.SdiDist != next.SdiDist,
		prev.SdiSpeedLimit != next.SdiSpeedLimit,
		prev.TrafficState != next.TrafficState,
		prev.Command != next.Command,
		prev.CommandArg != next.CommandArg:
		return true
	}
	if moved(prev, &next) {
		return true
	}
	if math.Abs(prev.GPSSpeed-next.GPSSpeed) > MinSpeedDelta {
		return true
	}
	return prev.Navigating != next.Navigating
}

func moved(a, b *telemetry.NavigationFields) bool {
	if !geo.ValidFix(a.Latitude, a.Longitude) || !geo.ValidFix(b.Latitude, b.Longitude) {
		return true
	}
	return geo.DistanceMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude) > MinMoveM
}

// IsHighPriority reports whether the change from prev to next must bypass
// the send interval: a changed command or command argument.
func IsHighPriority(prev *telemetry.NavigationFields, next telemetry.NavigationFields) bool {
	if prev == nil {
		return next.Command != "" || next.CommandArg != ""
	}
	return prev.Command != next.Command || prev.CommandArg != next.CommandArg
}

// EstimateSize approximates the encoded packet size: two bytes per UTF-16
// code unit of the free-text and command fields plus 200 bytes of scalars.
func EstimateSize(nf telemetry.NavigationFields) int {
	size := 200
	for _, s := range []string{
		nf.GoalName, nf.TBTMainText, nf.NearDirName, nf.FarDirName,
		nf.PosRoadName, nf.Command, nf.CommandArg,
	} {
		size += utf16Len(s) * 2
	}
	return size
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}
