package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleBlocksWithinWindow(t *testing.T) {
	now := time.Now()
	th := NewThrottle(2 * time.Second)
	th.now = func() time.Time { return now }

	assert.True(t, th.Allow("user1"))
	assert.False(t, th.Allow("user1"))

	// Another key is independent.
	assert.True(t, th.Allow("user2"))

	now = now.Add(2 * time.Second)
	assert.True(t, th.Allow("user1"))
}

func TestThrottleGlobalKey(t *testing.T) {
	th := NewThrottle(time.Minute)
	assert.True(t, th.Allow(""))
	assert.False(t, th.Allow(""))
}
