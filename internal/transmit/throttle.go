package transmit

import "time"

// DefaultMinInterval is the minimum spacing between regular packets.
const DefaultMinInterval = 200 * time.Millisecond

// ShouldSend reports whether a packet may go out at now given the last send
// time. High priority packets are never held back.
func ShouldSend(now, lastSend time.Time, minInterval time.Duration, highPriority bool) bool {
	if highPriority {
		return true
	}
	return now.Sub(lastSend) >= minInterval
}
