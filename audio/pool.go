package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/flipdot/constant"
)

// VoicePool is the capability the cue engine schedules into
// Any audio graph implementing it can voice a cue
type VoicePool interface {
	ScheduleVoice(v Voice) error
	FadeAll(d time.Duration)
	StopAll()
}

// Pool mixes scheduled voices on the audio clock
// Pool is itself a beep.Streamer: outputs pull from it and it always fills
// the requested buffer, streaming silence when idle
type Pool struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	out    *effects.Volume
	voices []*gainRamp
	max    int

	scheduled atomic.Uint64
	dropped   atomic.Uint64
}

// NewPool creates a pool at rate holding at most maxVoices concurrent voices
func NewPool(rate, maxVoices int) *Pool {
	if maxVoices <= 0 {
		maxVoices = constant.PoolMaxVoices
	}
	mixer := &beep.Mixer{}
	return &Pool{
		rate:  beep.SampleRate(rate),
		mixer: mixer,
		out:   newVolume(mixer, 1),
		max:   maxVoices,
	}
}

// SampleRate returns the pool's output rate
func (p *Pool) SampleRate() beep.SampleRate {
	return p.rate
}

// SetVolume sets master output volume (0.0-1.0)
func (p *Pool) SetVolume(vol float64) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	p.mu.Lock()
	setVolume(p.out, vol)
	p.mu.Unlock()
}

// ScheduleVoice adds v to the mix
// Start and Length are converted to samples, so timing follows the output clock
func (p *Pool) ScheduleVoice(v Voice) error {
	if len(v.Clip) == 0 {
		return fmt.Errorf("schedule voice: empty clip")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.prune()
	if len(p.voices) >= p.max {
		p.dropped.Add(1)
		return ErrPoolFull
	}

	g := p.build(v)
	p.voices = append(p.voices, g)
	p.mixer.Add(g)
	p.scheduled.Add(1)
	return nil
}

// build chains clip -> loop -> resample -> pan -> lead-in silence -> gain/release
func (p *Pool) build(v Voice) *gainRamp {
	clip := &loopBuffer{buf: v.Clip}

	var s beep.Streamer = clip
	if v.Loop {
		s = beep.Loop(-1, clip)
	}
	if v.Rate > 0 && v.Rate != 1 {
		s = beep.ResampleRatio(constant.ResampleQuality, v.Rate, s)
	}
	s = &effects.Pan{Streamer: s, Pan: v.Pan}
	if lead := p.rate.N(v.Start); lead > 0 {
		s = beep.Seq(beep.Silence(lead), s)
	}

	g := &gainRamp{
		s:       s,
		gain:    v.Gain,
		floor:   constant.CueFadeFloor,
		fadeAt:  -1,
		fadeLen: max(p.rate.N(constant.CueFadeDuration), 1),
	}
	if v.Length > 0 {
		g.fadeAt = p.rate.N(v.Length)
	}
	return g
}

// FadeAll starts the release of every voice now, over d
func (p *Pool) FadeAll(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.rate.N(d)
	for _, g := range p.voices {
		if n <= 0 {
			g.done = true
			continue
		}
		g.release(n)
	}
}

// StopAll silences every voice immediately
func (p *Pool) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, g := range p.voices {
		g.done = true
	}
	p.voices = p.voices[:0]
	p.mixer.Clear()
}

// Active returns the number of voices still sounding or waiting to start
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prune()
	return len(p.voices)
}

// Stats returns scheduled and dropped voice counts
func (p *Pool) Stats() (scheduled, dropped uint64) {
	return p.scheduled.Load(), p.dropped.Load()
}

// prune drops finished voices, caller holds mu
func (p *Pool) prune() {
	live := p.voices[:0]
	for _, g := range p.voices {
		if !g.done {
			live = append(live, g)
		}
	}
	clear(p.voices[len(live):])
	p.voices = live
}

// Stream implements beep.Streamer
func (p *Pool) Stream(samples [][2]float64) (n int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, _ = p.out.Stream(samples)
	clear(samples[n:])
	p.prune()
	return len(samples), true
}

// Err implements beep.Streamer
func (p *Pool) Err() error {
	return nil
}
