package audio

import (
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/flipdot/constant"
)

// Output backend selectors
const (
	BackendAuto    = "auto"    // speaker, then CLI pipe
	BackendSpeaker = "speaker" // beep/speaker device output
	BackendPipe    = "pipe"    // CLI player fed over stdin
	BackendNone    = "none"    // no output, cues suppressed
)

// AudioConfig holds audio output settings
type AudioConfig struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0
	Backend      string
	Voices       int // voices per cue
	SampleRate   int
	Player       string // pipe player command line, detected when empty
}

// DefaultAudioConfig returns enabled output at full volume on the auto backend
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:      true,
		MasterVolume: 1.0,
		Backend:      BackendAuto,
		Voices:       constant.CueVoices,
		SampleRate:   constant.AudioSampleRate,
	}
}

// LoadAudioConfig loads audio configuration from environment variables
func LoadAudioConfig() *AudioConfig {
	cfg := DefaultAudioConfig()

	if enabled := os.Getenv("FLIPDOT_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100, converted to 0.0-1.0
	if volume := os.Getenv("FLIPDOT_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = min(max(float64(val)/100.0, 0), 1)
		}
	}

	if backend := os.Getenv("FLIPDOT_AUDIO_BACKEND"); backend != "" {
		switch b := strings.ToLower(backend); b {
		case BackendAuto, BackendSpeaker, BackendPipe, BackendNone:
			cfg.Backend = b
		}
	}

	if voices := os.Getenv("FLIPDOT_AUDIO_VOICES"); voices != "" {
		if val, err := strconv.Atoi(voices); err == nil && val > 0 && val <= constant.PoolMaxVoices {
			cfg.Voices = val
		}
	}

	// Shell-quoted command line, e.g. `aplay -q -t raw -f S16_LE -r 44100 -c 2`
	if player := os.Getenv("FLIPDOT_AUDIO_PLAYER"); player != "" {
		cfg.Player = player
	}

	if sampleRate := os.Getenv("FLIPDOT_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}
