package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/flipdot/constant"
)

// Output drives a beep.Streamer into a device
type Output interface {
	Name() string
	Start(src beep.Streamer) error
	Stop()
}

// OpenOutput starts the backend selected by cfg pulling from src
// Returns ErrAudioUnavailable when nothing could be opened
func OpenOutput(cfg *AudioConfig, src beep.Streamer) (Output, error) {
	var candidates []Output
	switch cfg.Backend {
	case BackendNone:
		return nil, fmt.Errorf("%w: backend disabled", ErrAudioUnavailable)
	case BackendSpeaker:
		candidates = []Output{NewSpeakerOutput(cfg.SampleRate)}
	case BackendPipe:
		candidates = []Output{NewPipeOutput(cfg.SampleRate, cfg.Player)}
	default:
		candidates = []Output{NewSpeakerOutput(cfg.SampleRate), NewPipeOutput(cfg.SampleRate, cfg.Player)}
	}

	var lastErr error
	for _, out := range candidates {
		if err := out.Start(src); err != nil {
			log.Printf("[audio] %s output failed: %v", out.Name(), err)
			lastErr = err
			continue
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrAudioUnavailable, lastErr)
}

// speakerOnce guards the process-wide speaker device
var speakerOnce struct {
	sync.Mutex
	open bool
}

// SpeakerOutput plays through beep/speaker
type SpeakerOutput struct {
	rate beep.SampleRate
}

// NewSpeakerOutput creates a speaker output at rate
func NewSpeakerOutput(rate int) *SpeakerOutput {
	return &SpeakerOutput{rate: beep.SampleRate(rate)}
}

// Name implements Output
func (s *SpeakerOutput) Name() string { return BackendSpeaker }

// Start initializes the device and begins playback of src
func (s *SpeakerOutput) Start(src beep.Streamer) error {
	speakerOnce.Lock()
	defer speakerOnce.Unlock()

	if speakerOnce.open {
		return fmt.Errorf("speaker already open")
	}
	if err := speaker.Init(s.rate, s.rate.N(constant.AudioSpeakerBuffer)); err != nil {
		return err
	}
	speakerOnce.open = true
	speaker.Play(src)
	return nil
}

// Stop clears playback and releases the device
func (s *SpeakerOutput) Stop() {
	speakerOnce.Lock()
	defer speakerOnce.Unlock()

	if !speakerOnce.open {
		return
	}
	speaker.Clear()
	speaker.Close()
	speakerOnce.open = false
}
