package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/flipdot/audio"
	"github.com/lixenwraith/flipdot/bitmap"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/engine"
	"github.com/lixenwraith/flipdot/render"
	"github.com/lixenwraith/flipdot/status"
	"github.com/lixenwraith/flipdot/store"
)

// ErrStopped is returned by commands posted after Run has exited
var ErrStopped = errors.New("session stopped")

// Cue is the audio side of a session; *audio.CueEngine satisfies it
type Cue interface {
	engine.CuePlayer
	SetSoundType(st audio.SoundType)
}

// cueStats is implemented by cues that count their triggers
type cueStats interface {
	Stats() (triggered, suppressed uint64)
}

// paletteSetter is implemented by renderers with configurable colours
type paletteSetter interface {
	SetPalette(p render.Palette)
}

// Options configures a Session
type Options struct {
	Settings store.Settings
	Queue    []store.ContentItem // shown once Run starts
	Source   bitmap.Source
	Cue      Cue                  // nil runs silent
	Renderer render.FrameRenderer // nil runs headless
	Registry *status.Registry     // nil allocates a private one
	Time     engine.TimeProvider  // nil uses the system clock
	Rng      *rand.Rand
	Interval time.Duration // render tick, 0 selects FrameUpdateInterval
}

// rasterResult carries an asynchronous rasterization back to the loop
type rasterResult struct {
	gen    uint64
	itemID string
	bm     bitmap.Bitmap
	err    error
}

// Session drives one panel from a content queue
// All panel, cycler and cue mutations run on the Run goroutine; other
// goroutines post commands and read the published frame
type Session struct {
	tp       engine.TimeProvider
	source   bitmap.Source
	cue      Cue
	renderer render.FrameRenderer
	interval time.Duration

	panel    *engine.Panel
	cycler   *engine.Cycler
	settings store.Settings
	queue    []store.ContentItem
	shownID  string // id of the item last sent for rasterization
	playing  bool
	ticking  bool // render ticker enabled

	ctx     context.Context
	gen     uint64
	cancel  context.CancelFunc // pending rasterization
	results chan rasterResult
	cmds    chan func()
	stopped chan struct{}
	running atomic.Bool

	frameMu   sync.RWMutex
	frame     engine.Frame
	published store.Settings

	registry     *status.Registry
	frames       *atomic.Int64
	transitions  *atomic.Int64
	rasterFails  *atomic.Int64
	cuesFired    *atomic.Int64
	cuesDropped  *atomic.Int64
	queueIndex   *atomic.Int64
	playingState *atomic.Bool
	progress     *status.AtomicFloat
	lastError    *status.AtomicString
}

// New creates a playing session configured from opts.Settings
func New(opts Options) (*Session, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("session: nil bitmap source")
	}
	if opts.Time == nil {
		opts.Time = engine.NewMonotonicTimeProvider()
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	if opts.Interval <= 0 {
		opts.Interval = constant.FrameUpdateInterval
	}

	s := &Session{
		tp:       opts.Time,
		source:   opts.Source,
		cue:      opts.Cue,
		renderer: opts.Renderer,
		interval: opts.Interval,
		cycler:   engine.NewCycler(opts.Settings.Slide()),
		playing:  true,
		ticking:  true,
		ctx:      context.Background(),
		results:  make(chan rasterResult, 1),
		cmds:     make(chan func(), constant.CommandQueueSize),
		stopped:  make(chan struct{}),
		registry: opts.Registry,
	}

	var cp engine.CuePlayer
	if opts.Cue != nil {
		cp = opts.Cue
	}
	s.panel = engine.NewPanel(opts.Time, opts.Rng, cp)

	r := opts.Registry
	s.frames = r.Ints.Get("session.frames")
	s.transitions = r.Ints.Get("session.transitions")
	s.rasterFails = r.Ints.Get("session.raster_failures")
	s.cuesFired = r.Ints.Get("cue.triggered")
	s.cuesDropped = r.Ints.Get("cue.suppressed")
	s.queueIndex = r.Ints.Get("session.index")
	s.playingState = r.Bools.Get("session.playing")
	s.progress = r.Floats.Get("session.progress")
	s.lastError = r.Strings.Get("session.last_error")

	if err := s.applySettings(opts.Settings); err != nil {
		return nil, err
	}
	s.queue = append([]store.ContentItem(nil), opts.Queue...)
	s.cycler.SetLength(len(s.queue))
	s.playingState.Store(true)
	s.publish(s.panel.Sample())
	return s, nil
}

// Registry returns the metrics registry the session writes to
func (s *Session) Registry() *status.Registry { return s.registry }

// Run executes the session loop until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("session: already running")
	}
	defer close(s.stopped)

	s.ctx = ctx
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	advance := time.NewTimer(time.Hour)
	defer advance.Stop()

	// First item of a queue installed before Run
	s.showCurrent()

	for {
		var tick <-chan time.Time
		if s.ticking {
			tick = ticker.C
		}
		var due <-chan time.Time
		if deadline, ok := s.cycler.Deadline(); ok {
			advance.Reset(max(deadline.Sub(s.tp.Now()), 0))
			due = advance.C
		}

		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case fn := <-s.cmds:
			fn()
		case res := <-s.results:
			s.applyRaster(res)
		case <-tick:
			s.renderFrame()
		case <-due:
			s.advance()
		}
	}
}

// shutdown cancels pending work and silences audio
func (s *Session) shutdown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.cue != nil {
		s.cue.Stop()
	}
}

// do posts fn to the loop and waits for it to run
func (s *Session) do(fn func()) error {
	done := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrStopped
	}
}

// Play resumes animation, audio and content cycling
func (s *Session) Play() error {
	return s.do(func() { s.setPlaying(true) })
}

// Pause freezes animation, audio and content cycling
func (s *Session) Pause() error {
	return s.do(func() { s.setPlaying(false) })
}

// Toggle flips the play state and returns the new one
func (s *Session) Toggle() (bool, error) {
	var playing bool
	err := s.do(func() {
		s.setPlaying(!s.playing)
		playing = s.playing
	})
	return playing, err
}

// IsPlaying reports the play state as last published
func (s *Session) IsPlaying() bool {
	return s.playingState.Load()
}

// ApplySettings reconfigures the panel; on error the previous settings stay in effect
func (s *Session) ApplySettings(st store.Settings) error {
	var err error
	if derr := s.do(func() { err = s.applySettings(st) }); derr != nil {
		return derr
	}
	return err
}

// SetQueue replaces the content queue
func (s *Session) SetQueue(q []store.ContentItem) error {
	q = append([]store.ContentItem(nil), q...)
	return s.do(func() { s.setQueue(q) })
}

// Frame returns a copy of the most recently rendered frame
func (s *Session) Frame() engine.Frame {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.frame.Clone()
}

// Settings returns the settings in effect
func (s *Session) Settings() store.Settings {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	return s.published
}

// setPlaying is the single play/pause transition
// Pause stops the render ticker, captures the remaining slide time, freezes
// the clock and silences the cue; Play reverses each step
func (s *Session) setPlaying(playing bool) {
	if playing == s.playing {
		return
	}
	now := s.tp.Now()
	s.playing = playing
	s.playingState.Store(playing)

	if playing {
		s.panel.Play()
		s.cycler.Resume(now)
		if _, armed := s.cycler.Deadline(); !armed && len(s.queue) > 0 {
			s.cycler.Arm(now)
		}
		s.ticking = true
	} else {
		s.ticking = false
		s.cycler.Pause(now)
		s.panel.Pause()
	}

	// Publish the state change immediately; a paused loop renders nothing else
	s.renderFrame()
}

// applySettings pushes st into the panel, cycler, cue and renderer
func (s *Session) applySettings(st store.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	resized := st.Resolution != s.settings.Resolution

	if err := s.panel.Configure(st.Resolution.Rows, st.Resolution.Cols, st.EngineTiming(), st.Direction()); err != nil {
		return err
	}
	s.cycler.SetSlide(st.Slide())
	if s.cue != nil {
		s.cue.SetSoundType(st.Sound())
	}
	if ps, ok := s.renderer.(paletteSetter); ok {
		ps.SetPalette(st.Palette())
	}
	s.settings = st
	s.frameMu.Lock()
	s.published = st
	s.frameMu.Unlock()

	if resized && s.shownID != "" {
		s.shownID = ""
		s.showCurrent()
	}
	return nil
}

// setQueue installs q, keeping the current index and re-rasterizing only
// when the item under it changed
func (s *Session) setQueue(q []store.ContentItem) {
	s.queue = q
	s.cycler.SetLength(len(q))
	if len(q) == 0 {
		s.shownID = ""
		return
	}
	if q[s.cycler.Index()].ID != s.shownID {
		s.showCurrent()
	}
	if _, armed := s.cycler.Deadline(); !armed && s.playing {
		s.cycler.Arm(s.tp.Now())
	}
}

// advance moves to the next queue item
func (s *Session) advance() {
	if !s.playing || len(s.queue) == 0 {
		return
	}
	s.cycler.Advance(s.tp.Now())
	s.showCurrent()
}

// showCurrent rasterizes the item at the cycler index and arms the cycler
func (s *Session) showCurrent() {
	if len(s.queue) == 0 {
		return
	}
	idx := s.cycler.Index()
	s.queueIndex.Store(int64(idx))
	item := s.queue[idx]
	s.shownID = item.ID
	s.rasterize(item)

	if _, armed := s.cycler.Deadline(); !armed && s.playing {
		s.cycler.Arm(s.tp.Now())
	}
}

// rasterize starts an asynchronous bitmap build, superseding any pending one
func (s *Session) rasterize(item store.ContentItem) {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	rows, cols := s.settings.Resolution.Rows, s.settings.Resolution.Cols

	ctx, cancel := context.WithTimeout(s.ctx, constant.RasterTimeout)
	s.cancel = cancel
	parent := s.ctx

	core.Go(func() {
		defer cancel()
		bm, err := s.source.Rasterize(ctx, item.Source(), rows, cols)
		select {
		case s.results <- rasterResult{gen: gen, itemID: item.ID, bm: bm, err: err}:
		case <-parent.Done():
		}
	})
}

// applyRaster hands a finished bitmap to the panel; stale generations are dropped
func (s *Session) applyRaster(res rasterResult) {
	if res.gen != s.gen {
		return
	}
	s.cancel = nil

	if res.err != nil {
		s.rasterFails.Add(1)
		s.lastError.Store(res.err.Error())
		log.Printf("[session] %v", res.err)
		return
	}

	changed, err := s.panel.OnBitmapChanged(res.bm)
	if err != nil {
		s.lastError.Store(err.Error())
		log.Printf("[session] item %s: %v", res.itemID, err)
		return
	}
	if changed {
		s.transitions.Add(1)
	}
	if !s.playing {
		s.renderFrame()
	}
}

// renderFrame samples the panel, paints and publishes the frame
func (s *Session) renderFrame() {
	f := s.panel.Sample()
	if s.renderer != nil {
		if err := s.renderer.Render(f); err != nil {
			log.Printf("[session] render: %v", err)
		}
	}
	s.frames.Add(1)
	s.progress.Set(s.transitionProgress(f))
	if cs, ok := s.cue.(cueStats); ok {
		fired, dropped := cs.Stats()
		s.cuesFired.Store(int64(fired))
		s.cuesDropped.Store(int64(dropped))
	}
	s.publish(f)
}

// transitionProgress reports how far the current transition is, in [0, 1]
func (s *Session) transitionProgress(f engine.Frame) float64 {
	span := max(s.panel.TotalDuration(), s.panel.SettleTime())
	if span <= 0 || !f.IsFlipping {
		return 1
	}
	return min(float64(f.Elapsed)/float64(span), 1)
}

// publish stores a copy of f for readers outside the loop
func (s *Session) publish(f engine.Frame) {
	c := f.Clone()
	s.frameMu.Lock()
	s.frame = c
	s.frameMu.Unlock()
}
