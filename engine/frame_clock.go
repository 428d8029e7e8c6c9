package engine

import "time"

// FrameClock turns frame timestamps into deltas
// The first frame yields zero; stalls are clamped to max so animations do not jump
type FrameClock struct {
	last time.Time
	max  time.Duration
}

// NewFrameClock creates a clock clamping deltas to limit (0 disables clamping)
func NewFrameClock(limit time.Duration) *FrameClock {
	return &FrameClock{max: limit}
}

// Tick records now and returns the clamped delta since the previous tick
func (c *FrameClock) Tick(now time.Time) time.Duration {
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt < 0 {
		return 0
	}
	if c.max > 0 && dt > c.max {
		return c.max
	}
	return dt
}
