package transmit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateStatsSkipped(t *testing.T) {
	var s Stats
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		s.UpdateStats(300, true, now.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, int64(5), s.PacketsSkipped)
	assert.Zero(t, s.PacketsSent)
	assert.Zero(t, s.BytesSent)
	assert.Zero(t, s.AvgPacketSize)
	assert.Zero(t, s.SendRate)
	assert.True(t, s.LastSendTime.IsZero())
}

func TestUpdateStatsSent(t *testing.T) {
	var s Stats
	t0 := time.Unix(100, 0)
	s.UpdateStats(200, false, t0)
	assert.Zero(t, s.SendRate, "no rate before the second send")
	s.UpdateStats(400, false, t0.Add(250*time.Millisecond))
	s.UpdateStats(0, true, t0.Add(300*time.Millisecond))

	assert.Equal(t, int64(2), s.PacketsSent)
	assert.Equal(t, int64(1), s.PacketsSkipped)
	assert.Equal(t, int64(600), s.BytesSent)
	assert.Equal(t, int64(300), s.AvgPacketSize)
	assert.InDelta(t, 4.0, s.SendRate, 1e-9)
	assert.Equal(t, t0.Add(250*time.Millisecond), s.LastSendTime)
}

func TestOptimizationRate(t *testing.T) {
	var s Stats
	assert.Zero(t, s.OptimizationRate())
	s.PacketsSent, s.PacketsSkipped = 1, 3
	assert.InDelta(t, 75.0, s.OptimizationRate(), 1e-9)
}

func TestFormat(t *testing.T) {
	s := Stats{PacketsSent: 1200, PacketsSkipped: 3600, BytesSent: 2048 * 1024, AvgPacketSize: 250, SendRate: 4.5}
	out := s.Format()
	for _, want := range []string{"sent 1,200", "skipped 3,600", "75.0% saved", "2.0 MiB", "250 B", "4.5 pkt/s"} {
		assert.True(t, strings.Contains(out, want), "%q missing from %q", want, out)
	}
}
