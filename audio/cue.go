package audio

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
	"github.com/lixenwraith/flipdot/constant"
)

// CueEngine voices the mechanical sound of a panel transition
// Each cue is a bank of looped, pitch and pan randomized clicks released at
// the transition duration. A nil pool suppresses every cue
type CueEngine struct {
	mu sync.Mutex

	pool      VoicePool
	cache     *clickCache
	rng       *rand.Rand
	soundType SoundType
	voices    int
	volume    float64

	last    bitmap.Bitmap
	hasLast bool

	triggered  atomic.Uint64
	suppressed atomic.Uint64
}

// NewCueEngine creates a cue engine scheduling into pool
func NewCueEngine(pool VoicePool, cfg *AudioConfig, rng *rand.Rand) *CueEngine {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	voices := cfg.Voices
	if voices <= 0 {
		voices = constant.CueVoices
	}

	c := &CueEngine{
		pool:   pool,
		cache:  newClickCache(cfg.SampleRate, rand.New(rand.NewSource(rng.Int63()))),
		rng:    rng,
		voices: voices,
		volume: 1,
	}
	if !cfg.Enabled {
		c.pool = nil
	}
	c.cache.preload()
	return c
}

// SetSoundType selects the click profile for subsequent cues
func (c *CueEngine) SetSoundType(st SoundType) {
	c.mu.Lock()
	c.soundType = st
	c.mu.Unlock()
}

// SoundType returns the current click profile
func (c *CueEngine) SoundType() SoundType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.soundType
}

// SetVolume scales the per-voice gain (0.0-1.0), independent of master volume
func (c *CueEngine) SetVolume(vol float64) {
	c.mu.Lock()
	c.volume = min(max(vol, 0), 1)
	c.mu.Unlock()
}

// Forget drops the last sounded bitmap so the next cue compares against nothing
func (c *CueEngine) Forget() {
	c.mu.Lock()
	c.last = bitmap.Bitmap{}
	c.hasLast = false
	c.mu.Unlock()
}

// Trigger starts the cue for a transition to target lasting duration
// Any in-flight cue is released first. Returns false when the cue is
// suppressed: no cell differs from the last sounded bitmap, no pool, or a
// non-positive duration. The last sounded bitmap is updated on every call
func (c *CueEngine) Trigger(target bitmap.Bitmap, duration time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.FadeAll(constant.CueFadeDuration)
	}

	changed := c.changed(target)
	c.last = target
	c.hasLast = true

	if !changed || c.pool == nil || duration <= 0 {
		c.suppressed.Add(1)
		return false
	}

	clip, err := c.cache.get(c.soundType)
	if err != nil {
		log.Printf("[audio] click synthesis failed: %v", err)
		c.suppressed.Add(1)
		return false
	}

	gain := constant.CueBaseGain / math.Sqrt(float64(c.voices)) * Profile(c.soundType).Volume * c.volume
	for i := 0; i < c.voices; i++ {
		v := Voice{
			Clip:   clip,
			Loop:   true,
			Rate:   constant.CueRateMin + c.rng.Float64()*constant.CueRateSpread,
			Pan:    (c.rng.Float64()*2 - 1) * constant.CuePanSpread,
			Gain:   gain,
			Start:  time.Duration(c.rng.Float64() * float64(constant.CueStartJitter)),
			Length: duration,
		}
		if err := c.pool.ScheduleVoice(v); err != nil {
			log.Printf("[audio] voice %d not scheduled: %v", i, err)
			break
		}
	}

	c.triggered.Add(1)
	return true
}

// changed reports whether target differs from the last sounded bitmap
// With no comparable previous bitmap any set cell counts as a change
func (c *CueEngine) changed(target bitmap.Bitmap) bool {
	if !c.hasLast || !c.last.Matches(target.Rows(), target.Cols()) {
		return target.Any()
	}
	return target.Differs(c.last)
}

// Stop silences every voice immediately
func (c *CueEngine) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.StopAll()
	}
}

// Stats returns triggered and suppressed cue counts
func (c *CueEngine) Stats() (triggered, suppressed uint64) {
	return c.triggered.Load(), c.suppressed.Load()
}
