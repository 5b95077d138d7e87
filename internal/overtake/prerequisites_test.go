package overtake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivelink/internal/telemetry"
)

func TestMachineNoLeadNoRecommendation(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	m := newTestMachine(clock)
	s := overtakeSnapshot()
	s.ModelV2.Lead0 = nil

	for i := 0; i < 60; i++ {
		st := m.Step(s, ModeAuto, DefaultThresholds())
		require.True(t, st.Verdict.CanOvertake, "an empty road is not a blocker")
		require.Nil(t, st.Recommendation, "tick %d", i)
		clock.advance(100 * time.Millisecond)
	}
}

func TestHoldReason(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*telemetry.Snapshot)
		want   string
	}{
		{"all clear", func(*telemetry.Snapshot) {}, ""},
		{"disabled", func(s *telemetry.Snapshot) { s.SystemState.Enabled = false }, HoldDisengaged},
		{"inactive", func(s *telemetry.Snapshot) { s.SystemState.Active = false }, HoldDisengaged},
		{"standstill", func(s *telemetry.Snapshot) { s.CarState.Standstill = true }, HoldStandstill},
		{"steering left", func(s *telemetry.Snapshot) { s.CarState.SteeringAngleDeg = 40 }, HoldSteering},
		{"steering right", func(s *telemetry.Snapshot) { s.CarState.SteeringAngleDeg = -16 }, HoldSteering},
		{"steering at limit", func(s *telemetry.Snapshot) { s.CarState.SteeringAngleDeg = 15 }, ""},
		{"no road", func(s *telemetry.Snapshot) { s.Road = nil }, HoldRoad},
		{"urban road", func(s *telemetry.Snapshot) { s.Road.Category = 6 }, HoldRoad},
		{"expressway", func(s *telemetry.Snapshot) { s.Road.Category = 1 }, ""},
		{"no lead", func(s *telemetry.Snapshot) { s.ModelV2.Lead0 = nil }, HoldNoLead},
		{"lead uncertain", func(s *telemetry.Snapshot) { s.ModelV2.Lead0.Prob = 0.4 }, HoldNoLead},
		{"lead far", func(s *telemetry.Snapshot) { s.ModelV2.Lead0.X = 80 }, HoldNoLead},
		{"lead accelerating", func(s *telemetry.Snapshot) { s.ModelV2.Lead0.A = 0.8 }, HoldLeadAccel},
		{"lead steady", func(s *telemetry.Snapshot) { s.ModelV2.Lead0.A = 0.5 }, ""},
		{"second lead close", func(s *telemetry.Snapshot) {
			s.ModelV2.Lead1 = &telemetry.Lead{X: 120, V: kph(70), Prob: 0.8}
		}, HoldLead1Close},
		{"second lead far", func(s *telemetry.Snapshot) {
			s.ModelV2.Lead1 = &telemetry.Lead{X: 160, V: kph(70), Prob: 0.8}
		}, ""},
		{"second lead uncertain", func(s *telemetry.Snapshot) {
			s.ModelV2.Lead1 = &telemetry.Lead{X: 100, V: kph(70), Prob: 0.3}
		}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := overtakeSnapshot()
			tc.modify(s)
			assert.Equal(t, tc.want, holdReason(s))
		})
	}
}

func TestOvertakeWanted(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*telemetry.Snapshot, *Thresholds)
		want   bool
	}{
		{"slow lead", func(*telemetry.Snapshot, *Thresholds) {}, true},
		{"lead near the limit", func(s *telemetry.Snapshot, _ *Thresholds) {
			s.Road.SpeedLimitKph = 75 // 90% is 67.5 km/h, lead drives 70
		}, false},
		{"no limit known", func(s *telemetry.Snapshot, _ *Thresholds) { s.Road.SpeedLimitKph = 0 }, true},
		{"second lead closing fast", func(s *telemetry.Snapshot, _ *Thresholds) {
			s.ModelV2.Lead1 = &telemetry.Lead{X: 200, V: kph(110), Prob: 0.8}
		}, false},
		{"differential too small", func(s *telemetry.Snapshot, th *Thresholds) {
			s.ModelV2.Lead0.V = kph(85)
		}, false},
		{"ratio trigger", func(s *telemetry.Snapshot, th *Thresholds) {
			// 20 km/h short of the differential, but the lead drives at 78% of ego speed
			th.SpeedDiffKph = 40
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := overtakeSnapshot()
			th := DefaultThresholds()
			tc.modify(s, &th)
			assert.Equal(t, tc.want, overtakeWanted(s, th))
		})
	}
}

func TestMachineHoldKeepsDebounce(t *testing.T) {
	m := newTestMachine(&fakeClock{t: time.Unix(100, 0)})
	s := overtakeSnapshot()
	steering := overtakeSnapshot()
	steering.CarState.SteeringAngleDeg = 40

	m.Step(s, ModeAuto, DefaultThresholds())
	m.Step(s, ModeAuto, DefaultThresholds())
	assert.Nil(t, m.Step(steering, ModeAuto, DefaultThresholds()).Recommendation)
	assert.NotNil(t, m.Step(s, ModeAuto, DefaultThresholds()).Recommendation)
}

func TestMachineUnwantedResetsDebounce(t *testing.T) {
	m := newTestMachine(&fakeClock{t: time.Unix(100, 0)})
	s := overtakeSnapshot()
	nearLimit := overtakeSnapshot()
	nearLimit.Road.SpeedLimitKph = 75

	m.Step(s, ModeAuto, DefaultThresholds())
	m.Step(s, ModeAuto, DefaultThresholds())
	assert.Nil(t, m.Step(nearLimit, ModeAuto, DefaultThresholds()).Recommendation)
	assert.Nil(t, m.Step(s, ModeAuto, DefaultThresholds()).Recommendation)
	assert.Nil(t, m.Step(s, ModeAuto, DefaultThresholds()).Recommendation)
	assert.NotNil(t, m.Step(s, ModeAuto, DefaultThresholds()).Recommendation)
}
