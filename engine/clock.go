package engine

import "time"

// AnimationClock tracks elapsed animation time with pause duration accounting
// Owned by a single panel; not safe for concurrent use
type AnimationClock struct {
	time TimeProvider

	startTime   time.Time     // Animation epoch (reset per bitmap)
	pausedTotal time.Duration // Cumulative pause since startTime
	pauseStart  time.Time     // When current pause started
	playing     bool

	// High-water mark so elapsed never runs backwards between resets
	lastElapsed time.Duration
}

// NewAnimationClock creates a playing clock starting now
func NewAnimationClock(tp TimeProvider) *AnimationClock {
	return &AnimationClock{
		time:      tp,
		startTime: tp.Now(),
		playing:   true,
	}
}

// Reset restarts the animation epoch at now and clears accumulated pause
// A paused clock stays paused with elapsed frozen at zero
func (c *AnimationClock) Reset() {
	now := c.time.Now()
	c.startTime = now
	c.pausedTotal = 0
	c.lastElapsed = 0
	if !c.playing {
		c.pauseStart = now
	}
}

// Pause freezes elapsed time, returns false if already paused
func (c *AnimationClock) Pause() bool {
	if !c.playing {
		return false
	}
	c.playing = false
	c.pauseStart = c.time.Now()
	return true
}

// Resume continues elapsed time, returns false if already playing
func (c *AnimationClock) Resume() bool {
	if c.playing {
		return false
	}
	if d := c.time.Now().Sub(c.pauseStart); d > 0 {
		c.pausedTotal += d
	}
	c.pauseStart = time.Time{}
	c.playing = true
	return true
}

// IsPlaying returns current play state
func (c *AnimationClock) IsPlaying() bool {
	return c.playing
}

// Elapsed returns now - start - paused, clamped to >= 0 and non-decreasing
func (c *AnimationClock) Elapsed() time.Duration {
	ref := c.time.Now()
	if !c.playing {
		ref = c.pauseStart
	}

	e := ref.Sub(c.startTime) - c.pausedTotal
	if e < c.lastElapsed {
		e = c.lastElapsed
	}
	c.lastElapsed = e
	return e
}

// PausedTotal returns cumulative pause since the last reset, including an ongoing pause
func (c *AnimationClock) PausedTotal() time.Duration {
	total := c.pausedTotal
	if !c.playing {
		total += c.time.Now().Sub(c.pauseStart)
	}
	return total
}
