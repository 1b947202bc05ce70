package discord

import (
	"sync"
	"time"
)

// Throttle enforces a per-key cooldown between interactions. The empty key
// acts as a global throttle.
type Throttle struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
	now      func() time.Time
}

// NewThrottle creates a throttle with the given cooldown window.
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window:   window,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether the key is outside its cooldown window and, if so,
// starts a new window.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.lastSeen[key]; ok && now.Sub(last) < t.window {
		return false
	}
	t.lastSeen[key] = now

	// Drop stale entries so the map doesn't grow with every user ever seen.
	if len(t.lastSeen) > 10_000 {
		for k, v := range t.lastSeen {
			if now.Sub(v) >= t.window {
				delete(t.lastSeen, k)
			}
		}
	}
	return true
}
