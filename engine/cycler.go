package engine

import "time"

type cyclerState uint8

const (
	cyclerIdle cyclerState = iota
	cyclerArmed
	cyclerPaused
)

// Cycler is the content-advance timer of the queue
// It is the sole writer of the current index. Pause captures the remaining
// slide time so Resume continues exactly where the slide left off
type Cycler struct {
	slide  time.Duration
	length int
	index  int

	state     cyclerState
	deadline  time.Time
	remaining time.Duration
}

// NewCycler creates an idle cycler advancing every slide
func NewCycler(slide time.Duration) *Cycler {
	return &Cycler{slide: slide}
}

// Index returns the current queue position
func (c *Cycler) Index() int { return c.index }

// Len returns the queue length the cycler wraps at
func (c *Cycler) Len() int { return c.length }

// Slide returns the per-item display duration
func (c *Cycler) Slide() time.Duration { return c.slide }

// SetSlide changes the per-item duration, applied at the next Arm
func (c *Cycler) SetSlide(d time.Duration) {
	if d > 0 {
		c.slide = d
	}
}

// SetLength updates the queue length, clamping the index
// An empty queue disarms the cycler; a paused cycler stays paused and
// resumes with a full slide once the queue is refilled
func (c *Cycler) SetLength(n int) {
	c.length = max(n, 0)
	if c.length == 0 {
		c.index = 0
		if c.state == cyclerPaused {
			c.remaining = c.slide
		} else {
			c.state = cyclerIdle
			c.remaining = 0
		}
		return
	}
	if c.index >= c.length {
		c.index = 0
	}
}

// Arm starts a full slide from now; a paused cycler stores it as remaining
func (c *Cycler) Arm(now time.Time) {
	if c.length == 0 {
		return
	}
	if c.state == cyclerPaused {
		c.remaining = c.slide
		return
	}
	c.deadline = now.Add(c.slide)
	c.state = cyclerArmed
}

// Advance moves to the next item, wrapping, and re-arms
func (c *Cycler) Advance(now time.Time) int {
	if c.length == 0 {
		return 0
	}
	c.index = (c.index + 1) % c.length
	c.Arm(now)
	return c.index
}

// Pause cancels the pending advance and captures its remaining time
func (c *Cycler) Pause(now time.Time) {
	if c.state != cyclerArmed {
		if c.state == cyclerIdle {
			c.remaining = c.slide
			c.state = cyclerPaused
		}
		return
	}
	c.remaining = max(c.deadline.Sub(now), 0)
	c.state = cyclerPaused
}

// Resume re-arms with the captured remaining time
func (c *Cycler) Resume(now time.Time) {
	if c.state != cyclerPaused {
		return
	}
	if c.length == 0 {
		c.state = cyclerIdle
		c.remaining = 0
		return
	}
	c.deadline = now.Add(c.remaining)
	c.remaining = 0
	c.state = cyclerArmed
}

// Deadline returns the pending advance time, false when none is armed
func (c *Cycler) Deadline() (time.Time, bool) {
	if c.state != cyclerArmed {
		return time.Time{}, false
	}
	return c.deadline, true
}

// Due reports whether the armed deadline has passed
func (c *Cycler) Due(now time.Time) bool {
	return c.state == cyclerArmed && !now.Before(c.deadline)
}

// Remaining returns time left on the current slide
func (c *Cycler) Remaining(now time.Time) time.Duration {
	switch c.state {
	case cyclerArmed:
		return max(c.deadline.Sub(now), 0)
	case cyclerPaused:
		return c.remaining
	}
	return 0
}
