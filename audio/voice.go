package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Voice is one scheduled playback of a click waveform
type Voice struct {
	Clip   []float64     // mono unity-gain waveform
	Loop   bool          // repeat the clip until faded
	Rate   float64       // playback rate, 1 is original pitch
	Pan    float64       // -1 left .. 1 right
	Gain   float64       // linear gain
	Start  time.Duration // delay from scheduling
	Length time.Duration // release starts this long after scheduling, <= 0 plays until faded or drained
}

// loopBuffer streams a mono buffer to both channels and supports seeking
// so beep.Loop can rewind it
type loopBuffer struct {
	buf floatBuffer
	pos int
}

func (l *loopBuffer) Stream(samples [][2]float64) (n int, ok bool) {
	if l.pos >= len(l.buf) {
		return 0, false
	}
	for i := range samples {
		if l.pos >= len(l.buf) {
			break
		}
		v := l.buf[l.pos]
		samples[i][0] = v
		samples[i][1] = v
		l.pos++
		n++
	}
	return n, true
}

func (l *loopBuffer) Err() error { return nil }

func (l *loopBuffer) Len() int { return len(l.buf) }

func (l *loopBuffer) Position() int { return l.pos }

func (l *loopBuffer) Seek(p int) error {
	if p < 0 || p > len(l.buf) {
		return fmt.Errorf("seek %d outside [0, %d]", p, len(l.buf))
	}
	l.pos = p
	return nil
}

// gainRamp applies a constant gain and, from fadeAt, an exponential release
// to floor over fadeLen samples, after which the voice ends
// Positions count from scheduling, so the release is on the audio clock
type gainRamp struct {
	s       beep.Streamer
	gain    float64
	floor   float64
	pos     int
	fadeAt  int // -1 until a release is scheduled
	fadeLen int
	done    bool
}

func (g *gainRamp) Stream(samples [][2]float64) (n int, ok bool) {
	if g.done {
		return 0, false
	}

	n, ok = g.s.Stream(samples)
	for i := 0; i < n; i++ {
		v := g.gain
		if g.fadeAt >= 0 && g.pos >= g.fadeAt {
			k := g.pos - g.fadeAt
			if k >= g.fadeLen || g.gain <= g.floor {
				g.done = true
				return i, true
			}
			v = g.gain * math.Pow(g.floor/g.gain, float64(k)/float64(g.fadeLen))
		}
		samples[i][0] *= v
		samples[i][1] *= v
		g.pos++
	}
	if !ok {
		g.done = true
	}
	return n, ok
}

func (g *gainRamp) Err() error { return g.s.Err() }

// release schedules the fade to start at the current position unless an
// earlier one is already pending
func (g *gainRamp) release(fadeLen int) {
	if g.fadeAt >= 0 && g.fadeAt <= g.pos {
		return
	}
	g.fadeAt = g.pos
	g.fadeLen = max(fadeLen, 1)
}

// newVolume wraps s in a base-2 volume effect
// math.Log2(0) is -Inf, so zero volume is made silent
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	setVolume(v, vol)
	return v
}

func setVolume(v *effects.Volume, vol float64) {
	if vol <= 0 {
		v.Volume = 0
		v.Silent = true
		return
	}
	v.Volume = math.Log2(vol)
	v.Silent = false
}
