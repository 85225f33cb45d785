package engine

import (
	"math"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
)

// DotState is the visual state of one dot at a sampled instant
type DotState struct {
	ShowFront bool    // front face visible
	ScaleY    float64 // vertical squash standing in for rotation, 1 at rest, 0 edge-on
	Progress  float64 // flip progress in [0, 1]
}

// Frame is one sampled panel state handed to renderers
// Dots is owned by the panel and valid until the next Sample
type Frame struct {
	Rows       int
	Cols       int
	Dots       []DotState
	IsFlipping bool
	Playing    bool
	Elapsed    time.Duration
}

// Clone returns a frame with its own copy of Dots
func (f Frame) Clone() Frame {
	out := f
	out.Dots = make([]DotState, len(f.Dots))
	copy(out.Dots, f.Dots)
	return out
}

// At returns the dot at (r, c)
func (f Frame) At(r, c int) DotState {
	return f.Dots[r*f.Cols+c]
}

// Scheduler maps grid position and elapsed time to per-dot visual state
// Pure over its inputs; metrics are shared read-only
type Scheduler struct {
	metrics *GridMetrics
	timing  TimingConfig
	dir     Direction
}

// NewScheduler binds metrics, timing and direction
func NewScheduler(metrics *GridMetrics, timing TimingConfig, dir Direction) *Scheduler {
	return &Scheduler{metrics: metrics, timing: timing, dir: dir}
}

// baseDelay is the sweep delay of (r, c) in nanoseconds before jitter
func (s *Scheduler) baseDelay(r, c int) float64 {
	m := s.metrics
	var units float64
	switch s.dir {
	case RightLeft:
		units = float64(m.Cols-1-c) + m.rowDelay(r)
	case TopBottom:
		units = float64(r) + m.colDelay(c)
	case BottomTop:
		units = float64(m.Rows-1-r) + m.colDelay(c)
	default:
		units = float64(c) + m.rowDelay(r)
	}
	return units * float64(s.timing.ColumnDelay)
}

// dotDelay adds the signed per-dot jitter to the base delay
func (s *Scheduler) dotDelay(r, c int) float64 {
	return s.baseDelay(r, c) + s.metrics.Modifier(r, c).StartOffset*float64(s.timing.ColumnDelay)
}

// effectiveDuration scales flipDuration by 1 + (2*randomFactor-1)*variance
func (s *Scheduler) effectiveDuration(r, c int) float64 {
	rf := s.metrics.Modifier(r, c).RandomFactor
	return float64(s.timing.FlipDuration) * (1 + (rf*2-1)*(s.timing.Variance/100))
}

// Delay returns the flip start of (r, c)
func (s *Scheduler) Delay(r, c int) time.Duration {
	return time.Duration(s.dotDelay(r, c))
}

// EffectiveDuration returns the flip length of (r, c)
func (s *Scheduler) EffectiveDuration(r, c int) time.Duration {
	return time.Duration(s.effectiveDuration(r, c))
}

// Progress returns clamp((t - dotDelay) / effectiveDuration, 0, 1)
// A zero effective duration flips instantly at dotDelay
func (s *Scheduler) Progress(r, c int, t time.Duration) float64 {
	delay := s.dotDelay(r, c)
	dur := s.effectiveDuration(r, c)
	elapsed := float64(t) - delay
	if dur <= 0 {
		if elapsed >= 0 {
			return 1
		}
		return 0
	}
	p := elapsed / dur
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// DotFor derives the visual state from progress
// Before the midpoint the previous face shows, from it the target face
// Equal prev/target still squashes: unchanged dots flutter without a colour change
func DotFor(progress float64, prev, target uint8) DotState {
	d := DotState{Progress: progress, ScaleY: 1}
	if progress > 0 && progress < 1 {
		d.ScaleY = math.Abs(math.Cos(progress * math.Pi))
	}
	if progress < 0.5 {
		d.ShowFront = prev == 1
	} else {
		d.ShowFront = target == 1
	}
	return d
}

// Dot evaluates (r, c) at t
func (s *Scheduler) Dot(r, c int, t time.Duration, prev, target uint8) DotState {
	return DotFor(s.Progress(r, c, t), prev, target)
}

// Sample evaluates every dot into dst (len rows*cols) and reports whether any is mid-flip
func (s *Scheduler) Sample(t time.Duration, prev, target bitmap.Bitmap, dst []DotState) bool {
	rows, cols := s.metrics.Rows, s.metrics.Cols
	flipping := false
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := s.Dot(r, c, t, prev.At(r, c), target.At(r, c))
			if d.Progress > 0 && d.Progress < 1 {
				flipping = true
			}
			dst[r*cols+c] = d
		}
	}
	return flipping
}

// SettleTime is the latest instant any dot finishes its flip
func (s *Scheduler) SettleTime() time.Duration {
	var latest float64
	for r := 0; r < s.metrics.Rows; r++ {
		for c := 0; c < s.metrics.Cols; c++ {
			end := s.dotDelay(r, c) + max(s.effectiveDuration(r, c), 0)
			if end > latest {
				latest = end
			}
		}
	}
	return time.Duration(math.Ceil(latest))
}
