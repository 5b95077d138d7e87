package transmit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"drivelink/internal/geo"
	"drivelink/internal/telemetry"
)

func baseFields() telemetry.NavigationFields {
	return telemetry.NavigationFields{
		RoadLimitSpeed: 100,
		TBTDist:        850,
		TBTTurnType:    13,
		SdiType:        1,
		SdiDist:        420,
		SdiSpeedLimit:  80,
		TrafficState:   0,
		Latitude:       37.5665,
		Longitude:      126.9780,
		GPSSpeed:       25,
		Navigating:     true,
	}
}

func TestHasSignificantChangeFirstPacket(t *testing.T) {
	assert.True(t, HasSignificantChange(nil, baseFields()))
	assert.True(t, HasSignificantChange(nil, telemetry.NavigationFields{}))
}

func TestHasSignificantChangeIdentical(t *testing.T) {
	a, b := baseFields(), baseFields()
	assert.False(t, HasSignificantChange(&a, b))
}

func TestHasSignificantChangeFields(t *testing.T) {
	cases := map[string]func(*telemetry.NavigationFields){
		"speed limit":     func(n *telemetry.NavigationFields) { n.RoadLimitSpeed = 80 },
		"maneuver dist":   func(n *telemetry.NavigationFields) { n.TBTDist = 849 },
		"maneuver type":   func(n *telemetry.NavigationFields) { n.TBTTurnType = 12 },
		"camera type":     func(n *telemetry.NavigationFields) { n.SdiType = 2 },
		"camera dist":     func(n *telemetry.NavigationFields) { n.SdiDist = 400 },
		"camera limit":    func(n *telemetry.NavigationFields) { n.SdiSpeedLimit = 60 },
		"traffic light":   func(n *telemetry.NavigationFields) { n.TrafficState = 1 },
		"command":         func(n *telemetry.NavigationFields) { n.Command = "LANECHANGE" },
		"command arg":     func(n *telemetry.NavigationFields) { n.CommandArg = "LEFT" },
		"navigating flag": func(n *telemetry.NavigationFields) { n.Navigating = false },
		"speed jump":      func(n *telemetry.NavigationFields) { n.GPSSpeed += 1.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			prev, next := baseFields(), baseFields()
			mutate(&next)
			assert.True(t, HasSignificantChange(&prev, next))
			assert.True(t, HasSignificantChange(&next, prev), "symmetric")
		})
	}
}

func TestHasSignificantChangeSmallSpeedDelta(t *testing.T) {
	prev, next := baseFields(), baseFields()
	next.GPSSpeed += 1.3
	assert.False(t, HasSignificantChange(&prev, next))
}

func TestHasSignificantChangeGPSDistance(t *testing.T) {
	prev := baseFields()
	for _, d := range []float64{0, 5, 9.9} {
		next := baseFields()
		next.Latitude, next.Longitude = geo.Offset(prev.Latitude, prev.Longitude, 45, d)
		assert.False(t, HasSignificantChange(&prev, next), "moved %.1f m", d)
	}
	for _, d := range []float64{10.1, 50, 5000} {
		next := baseFields()
		next.Latitude, next.Longitude = geo.Offset(prev.Latitude, prev.Longitude, 200, d)
		assert.True(t, HasSignificantChange(&prev, next), "moved %.1f m", d)
	}
}

func TestHasSignificantChangeInvalidGPS(t *testing.T) {
	prev, next := baseFields(), baseFields()
	prev.Latitude, prev.Longitude = 0, 0
	next.Latitude, next.Longitude = 0, 0
	assert.True(t, HasSignificantChange(&prev, next), "no fix never suppresses")

	prev = baseFields()
	next = baseFields()
	next.Longitude = 0
	assert.True(t, HasSignificantChange(&prev, next))
	assert.True(t, HasSignificantChange(&next, prev))
}

func TestIsHighPriority(t *testing.T) {
	prev, next := baseFields(), baseFields()
	assert.False(t, IsHighPriority(&prev, next))
	next.CommandArg = "RIGHT"
	assert.True(t, IsHighPriority(&prev, next))
	assert.False(t, IsHighPriority(nil, baseFields()))
	next = baseFields()
	next.Command = "DETOUR"
	assert.True(t, IsHighPriority(nil, next))
}

func TestEstimateSize(t *testing.T) {
	assert.Equal(t, 200, EstimateSize(telemetry.NavigationFields{}))
	nf := telemetry.NavigationFields{GoalName: "Home", Command: "LANECHANGE", CommandArg: "LEFT", PosRoadName: "경부고속도로"}
	assert.Equal(t, 200+8+20+8+12, EstimateSize(nf))

	dirs := telemetry.NavigationFields{NearDirName: "Suwon", FarDirName: "Busan"}
	assert.Equal(t, 200+10+10, EstimateSize(dirs))

	// characters outside the BMP take two UTF-16 units
	assert.Equal(t, 200+4+2, EstimateSize(telemetry.NavigationFields{TBTMainText: "🚗a"}))
}
