package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
)

// CuePlayer is the audio side of a transition
// Trigger is called at transition start (and on resume with the remaining
// time) only while playing; Stop silences immediately on pause
type CuePlayer interface {
	Trigger(target bitmap.Bitmap, duration time.Duration) bool
	Stop()
}

// Panel is one simulated flip-dot panel: it owns the bitmaps, the grid
// metrics, the animation clock and the play/pause state of the animation
// Not safe for concurrent use; driven by a single session loop
type Panel struct {
	rng     *rand.Rand
	metrics *GridMetrics
	timing  TimingConfig
	dir     Direction
	sched   *Scheduler

	total  time.Duration // analytic bound, sizes the audio cue
	settle time.Duration // exact latest dot finish

	clock *AnimationClock
	cue   CuePlayer

	target    bitmap.Bitmap
	previous  bitmap.Bitmap
	hasTarget bool
	committed bool // previous already snapped forward to target

	dots []DotState
}

// NewPanel creates an unconfigured playing panel; Configure must be called before use
func NewPanel(tp TimeProvider, rng *rand.Rand, cue CuePlayer) *Panel {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Panel{
		rng:   rng,
		clock: NewAnimationClock(tp),
		cue:   cue,
	}
}

// SetCue replaces the audio cue player (nil disables audio)
func (p *Panel) SetCue(cue CuePlayer) {
	p.cue = cue
}

// Configure applies grid size, timing and direction
// Metrics are regenerated only when the grid size changes; on a size change
// the previous bitmap is blanked and the current target dropped
// Invalid input returns ErrOutOfRange and leaves the panel untouched
func (p *Panel) Configure(rows, cols int, timing TimingConfig, dir Direction) error {
	if err := ValidateGrid(rows, cols); err != nil {
		return err
	}
	if err := timing.Validate(); err != nil {
		return err
	}
	if dir < 0 || dir >= directionCount {
		return fmt.Errorf("%w: direction %d", ErrOutOfRange, dir)
	}

	if !p.metrics.Matches(rows, cols) {
		m, err := NewGridMetrics(rows, cols, p.rng)
		if err != nil {
			return err
		}
		p.metrics = m
		p.dots = make([]DotState, rows*cols)
		p.previous = bitmap.New(rows, cols)
		p.target = bitmap.Bitmap{}
		p.hasTarget = false
		p.committed = false
	}

	p.timing = timing
	p.dir = dir
	p.rebuild()
	return nil
}

// SetMetrics installs pre-built metrics (deterministic replay, tests)
func (p *Panel) SetMetrics(m *GridMetrics, timing TimingConfig, dir Direction) error {
	if m == nil {
		return fmt.Errorf("%w: nil metrics", ErrOutOfRange)
	}
	if err := ValidateGrid(m.Rows, m.Cols); err != nil {
		return err
	}
	if err := timing.Validate(); err != nil {
		return err
	}
	if !p.metrics.Matches(m.Rows, m.Cols) {
		p.dots = make([]DotState, m.Rows*m.Cols)
		p.previous = bitmap.New(m.Rows, m.Cols)
		p.target = bitmap.Bitmap{}
		p.hasTarget = false
		p.committed = false
	}
	p.metrics = m
	p.timing = timing
	p.dir = dir
	p.rebuild()
	return nil
}

func (p *Panel) rebuild() {
	p.sched = NewScheduler(p.metrics, p.timing, p.dir)
	p.total = TotalDuration(p.metrics.Rows, p.metrics.Cols, p.timing, p.dir)
	p.settle = p.sched.SettleTime()
}

// OnBitmapChanged starts a transition to b
// The clock resets and, while playing, the cue is triggered with the full
// transition duration. Re-sending the settled bitmap is a no-op and returns false
func (p *Panel) OnBitmapChanged(b bitmap.Bitmap) (bool, error) {
	if p.metrics == nil {
		return false, fmt.Errorf("%w: panel not configured", ErrBitmapSize)
	}
	if !b.Matches(p.metrics.Rows, p.metrics.Cols) {
		return false, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrBitmapSize, b.Rows(), b.Cols(), p.metrics.Rows, p.metrics.Cols)
	}

	if p.hasTarget && b.Equal(p.target) && p.previous.Equal(p.target) {
		return false, nil
	}

	p.clock.Reset()
	if p.clock.IsPlaying() && p.cue != nil {
		p.cue.Trigger(b, p.total)
	}

	p.target = b
	p.hasTarget = true
	p.committed = false
	return true, nil
}

// Play resumes the animation clock; an unfinished transition re-triggers
// the cue for its remaining time. Returns false if already playing
func (p *Panel) Play() bool {
	if !p.clock.Resume() {
		return false
	}
	if p.hasTarget && p.cue != nil {
		if rem := p.Remaining(); rem > 0 {
			p.cue.Trigger(p.target, rem)
		}
	}
	return true
}

// Pause freezes the animation and silences the cue. Returns false if already paused
func (p *Panel) Pause() bool {
	if !p.clock.Pause() {
		return false
	}
	if p.cue != nil {
		p.cue.Stop()
	}
	return true
}

// IsPlaying returns the play state
func (p *Panel) IsPlaying() bool { return p.clock.IsPlaying() }

// Elapsed returns animation time since the last bitmap change
func (p *Panel) Elapsed() time.Duration { return p.clock.Elapsed() }

// TotalDuration returns the analytic transition bound for the current settings
func (p *Panel) TotalDuration() time.Duration { return p.total }

// SettleTime returns the exact instant the last dot finishes
func (p *Panel) SettleTime() time.Duration { return p.settle }

// Remaining returns TotalDuration minus elapsed, floored at zero
func (p *Panel) Remaining() time.Duration {
	return max(p.total-p.clock.Elapsed(), 0)
}

// Metrics returns the current grid metrics
func (p *Panel) Metrics() *GridMetrics { return p.metrics }

// Timing returns the current timing configuration
func (p *Panel) Timing() TimingConfig { return p.timing }

// Direction returns the current sweep direction
func (p *Panel) Direction() Direction { return p.dir }

// Target returns the bitmap being animated to, false before the first change
func (p *Panel) Target() (bitmap.Bitmap, bool) { return p.target, p.hasTarget }

// Previous returns the bitmap animated from
func (p *Panel) Previous() bitmap.Bitmap { return p.previous }

// Sample evaluates every dot at the current elapsed time
// Once the transition is past both its analytic bound and its settle time the
// target becomes the previous bitmap
func (p *Panel) Sample() Frame {
	if p.metrics == nil {
		return Frame{}
	}

	elapsed := p.clock.Elapsed()
	f := Frame{
		Rows:    p.metrics.Rows,
		Cols:    p.metrics.Cols,
		Dots:    p.dots,
		Playing: p.clock.IsPlaying(),
		Elapsed: elapsed,
	}

	if !p.hasTarget {
		for i := range p.dots {
			p.dots[i] = DotState{ShowFront: p.previous.Index(i) == 1, ScaleY: 1, Progress: 1}
		}
		return f
	}

	if !p.committed && elapsed >= max(p.total, p.settle) {
		p.previous = p.target
		p.committed = true
	}

	f.IsFlipping = p.sched.Sample(elapsed, p.previous, p.target, p.dots)
	return f
}
