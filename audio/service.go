package audio

import (
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
)

// AudioService wraps pool, cue engine and output as a Service
// Handles graceful degradation when no audio backend is available: the cue
// engine stays usable and suppresses every cue
type AudioService struct {
	config *AudioConfig
	pool   *Pool
	cue    *CueEngine
	output Output
	rng    *rand.Rand
	err    error

	disabled atomic.Bool
}

// NewService creates a new audio service
func NewService(rng *rand.Rand) *AudioService {
	return &AudioService{rng: rng}
}

// Name implements Service
func (s *AudioService) Name() string {
	return "audio"
}

// Dependencies implements Service
func (s *AudioService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: *AudioConfig, environment config when absent
// args[1]: bool - mute (true disables output)
func (s *AudioService) Init(args ...any) error {
	config := LoadAudioConfig()
	if len(args) > 0 {
		if cfg, ok := args[0].(*AudioConfig); ok && cfg != nil {
			config = cfg
		}
	}
	if len(args) > 1 {
		if muted, ok := args[1].(bool); ok && muted {
			config.Enabled = false
		}
	}
	s.config = config

	s.pool = NewPool(config.SampleRate, 0)
	s.pool.SetVolume(config.MasterVolume)
	s.cue = NewCueEngine(nil, config, s.rng)
	return nil
}

// Start implements Service
// Opens the output; sets disabled on failure (no error returned, see Err)
func (s *AudioService) Start() error {
	if s.config == nil || !s.config.Enabled {
		s.disabled.Store(true)
		s.err = fmt.Errorf("%w: disabled by configuration", ErrAudioUnavailable)
		return nil
	}

	out, err := OpenOutput(s.config, s.pool)
	if err != nil {
		s.disabled.Store(true)
		s.err = err
		log.Printf("[audio] running silent: %v", err)
		return nil
	}

	s.output = out
	s.cue.mu.Lock()
	s.cue.pool = s.pool
	s.cue.mu.Unlock()
	log.Printf("[audio] output %s at %d Hz", out.Name(), s.config.SampleRate)
	return nil
}

// Stop implements Service
func (s *AudioService) Stop() error {
	if s.cue != nil {
		s.cue.Stop()
	}
	if s.output != nil {
		s.output.Stop()
		s.output = nil
	}
	return nil
}

// Err returns why output is unavailable, nil while running
func (s *AudioService) Err() error {
	return s.err
}

// Backend returns the active output name, empty when silent
func (s *AudioService) Backend() string {
	if s.output == nil {
		return ""
	}
	return s.output.Name()
}

// IsDisabled returns true if audio is unavailable
func (s *AudioService) IsDisabled() bool {
	return s.disabled.Load()
}

// Cue returns the cue engine, never nil after Init
func (s *AudioService) Cue() *CueEngine {
	return s.cue
}

// Pool returns the voice pool (may be idle if disabled)
func (s *AudioService) Pool() *Pool {
	return s.pool
}

// SetVolume updates master volume (0.0-1.0)
func (s *AudioService) SetVolume(vol float64) {
	if s.pool != nil {
		s.pool.SetVolume(vol)
	}
}
