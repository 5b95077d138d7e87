package transmit

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats accumulates per-session transmission counters. They are diagnostic
// only and never feed back into send decisions.
type Stats struct {
	SessionID      string    `json:"sessionId"`
	PacketsSent    int64     `json:"packetsSent"`
	PacketsSkipped int64     `json:"packetsSkipped"`
	BytesSent      int64     `json:"bytesSent"`
	AvgPacketSize  int64     `json:"avgPacketSize"`
	SendRate       float64   `json:"sendRate"` // packets/s from the last inter-send gap
	LastSendTime   time.Time `json:"lastSendTime"`
}

// UpdateStats records one evaluation: a skip bumps only the skip counter,
// a send updates the byte, size and rate figures.
func (s *Stats) UpdateStats(size int, skipped bool, now time.Time) {
	if skipped {
		s.PacketsSkipped++
		return
	}
	s.PacketsSent++
	s.BytesSent += int64(size)
	s.AvgPacketSize = s.BytesSent / s.PacketsSent
	if !s.LastSendTime.IsZero() {
		if gap := now.Sub(s.LastSendTime).Seconds(); gap > 0 {
			s.SendRate = 1 / gap
		}
	}
	s.LastSendTime = now
}

// OptimizationRate is the share of evaluations that were skipped, in percent.
func (s Stats) OptimizationRate() float64 {
	total := s.PacketsSent + s.PacketsSkipped
	if total == 0 {
		return 0
	}
	return float64(s.PacketsSkipped) / float64(total) * 100
}

// Format renders a one-line human summary.
func (s Stats) Format() string {
	return fmt.Sprintf("sent %s, skipped %s (%.1f%% saved), %s total, avg %s, %.1f pkt/s",
		humanize.Comma(s.PacketsSent),
		humanize.Comma(s.PacketsSkipped),
		s.OptimizationRate(),
		humanize.IBytes(uint64(s.BytesSent)),
		humanize.IBytes(uint64(s.AvgPacketSize)),
		s.SendRate,
	)
}
