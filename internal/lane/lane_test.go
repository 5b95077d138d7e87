package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivelink/internal/telemetry"
)

func TestEstimate(t *testing.T) {
	cases := []struct {
		name     string
		n        int
		wl, wr   float64
		highway  bool
		index    int
		accurate bool
	}{
		{"single lane", 1, 5, 0.5, false, 0, true},
		{"two lanes left", 2, 1.0, 2.0, false, 0, true},
		{"two lanes right", 2, 3.5, 0.4, false, 1, true},
		{"two lanes equal widths", 2, 2.0, 2.0, false, 1, true},

		{"three lanes left edge", 3, 1.2, 7.0, false, 0, true},
		{"three lanes left narrow not accurate", 3, 1.8, 7.0, false, 0, false},
		{"three lanes right edge", 3, 7.0, 1.9, false, 2, false},
		{"three lanes middle", 3, 2.5, 2.5, false, 1, false},
		{"three lanes middle highway", 3, 3.5, 3.5, true, 1, true},

		{"four lanes first branch wins", 4, 1.5, 4.0, false, 0, false},
		{"four lanes left edge highway", 4, 1.5, 10.0, true, 0, true},
		{"four lanes right edge", 4, 10.0, 1.0, true, 3, true},
		{"four lanes wide left", 4, 7.0, 3.0, true, 2, false},
		{"four lanes wide right", 4, 3.0, 7.0, false, 1, false},
		{"four lanes both wide left smaller", 4, 3.5, 6.0, true, 1, false},
		{"four lanes both wide right smaller", 4, 6.0, 3.5, true, 2, false},
		{"four lanes equal 3.2", 4, 3.2, 3.2, false, 2, false},

		{"five lanes left edge", 5, 1.0, 14.0, false, 0, true},
		{"five lanes right edge", 5, 14.0, 1.9, false, 4, false},
		{"five lanes counted", 5, 7.0, 7.0, false, 2, false},
		{"six lanes proportional", 6, 4.0, 4.0, false, 3, false},
		{"six lanes counted", 6, 7.5, 10.6, false, 2, false},
		{"five lanes clamp", 5, 30.0, 2.5, false, 4, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, ok := Estimate(c.n, c.wl, c.wr, c.highway)
			require.True(t, ok)
			assert.Equal(t, c.index, p.Index, "index")
			assert.Equal(t, c.accurate, p.Accurate, "accurate")
			assert.Equal(t, c.n, p.Count)
		})
	}
}

func TestEstimateUnavailable(t *testing.T) {
	_, ok := Estimate(0, 3, 3, true)
	assert.False(t, ok)
}

func TestEstimateDoesNotValidateWidths(t *testing.T) {
	p, ok := Estimate(3, -1, -1, false)
	require.True(t, ok)
	assert.Equal(t, 0, p.Index)
	assert.True(t, p.Accurate)
}

func TestIsHighway(t *testing.T) {
	assert.True(t, IsHighway(0))
	assert.True(t, IsHighway(1))
	assert.False(t, IsHighway(2))
	assert.False(t, IsHighway(6))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "middle lane", Describe(3.5, 3.5))
	assert.Equal(t, "leftmost lane", Describe(1.0, 3.5))
	assert.Equal(t, "rightmost lane", Describe(3.5, 3.2))
	assert.Equal(t, "in lane", Describe(2.0, 2.0))
}

func TestFromSnapshot(t *testing.T) {
	_, ok := FromSnapshot(nil)
	assert.False(t, ok)

	s := &telemetry.Snapshot{
		ModelV2: &telemetry.ModelV2{Meta: &telemetry.Meta{LaneWidthLeft: 1.0, LaneWidthRight: 6.0}},
	}
	_, ok = FromSnapshot(s)
	assert.False(t, ok, "no road context")

	s.Road = &telemetry.Road{Category: 0, LaneCount: 3}
	p, ok := FromSnapshot(s)
	require.True(t, ok)
	assert.Equal(t, Position{Index: 0, Accurate: true, Count: 3}, p)
	assert.Equal(t, "1/3", p.String())
}
