package transmit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldSend(t *testing.T) {
	last := time.Unix(1000, 0)
	assert.False(t, ShouldSend(last.Add(199*time.Millisecond), last, DefaultMinInterval, false))
	assert.True(t, ShouldSend(last.Add(200*time.Millisecond), last, DefaultMinInterval, false))
	assert.True(t, ShouldSend(last.Add(time.Second), last, DefaultMinInterval, false))
	assert.True(t, ShouldSend(last, last, DefaultMinInterval, true))
	assert.True(t, ShouldSend(last.Add(time.Millisecond), last, DefaultMinInterval, true))
	assert.True(t, ShouldSend(last, time.Time{}, DefaultMinInterval, false), "never sent before")
}
