package audio

import (
	"errors"
	"fmt"
)

// SoundType selects the click profile of the flip cue
type SoundType int

const (
	SoundDefault  SoundType = iota // Light snap with mid resonance
	SoundDeep                      // Heavy thud
	SoundMetallic                  // Bright ringing disc
	SoundSoft                      // Damped felt-backed dot
	SoundSharp                     // Hard fast snap
	soundTypeCount
)

var soundTypeNames = [soundTypeCount]string{
	SoundDefault:  "default",
	SoundDeep:     "deep",
	SoundMetallic: "metallic",
	SoundSoft:     "soft",
	SoundSharp:    "sharp",
}

// ParseSoundType maps a settings string to a SoundType
func ParseSoundType(s string) (SoundType, error) {
	for st, name := range soundTypeNames {
		if name == s {
			return SoundType(st), nil
		}
	}
	return SoundDefault, fmt.Errorf("%w: %q", ErrUnknownSoundType, s)
}

func (st SoundType) String() string {
	if st < 0 || st >= soundTypeCount {
		return fmt.Sprintf("SoundType(%d)", int(st))
	}
	return soundTypeNames[st]
}

// BackendType identifies the audio backend
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
	BackendCustom
)

// BackendConfig describes a CLI audio backend
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Sentinel errors
var (
	ErrAudioUnavailable = errors.New("audio output unavailable")
	ErrNoAudioBackend   = errors.New("no compatible audio backend found")
	ErrPipeClosed       = errors.New("audio pipe closed")
	ErrUnknownSoundType = errors.New("unknown sound type")
	ErrPoolFull         = errors.New("voice pool full")
)
