package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
)

// Audio Output Timing
const (
	// AudioBufferDuration determines latency and pipe writer tick rate
	AudioBufferDuration = 50 * time.Millisecond

	// AudioSpeakerBuffer is the device buffer handed to the speaker
	AudioSpeakerBuffer = 100 * time.Millisecond
)

// Flip cue
const (
	// CueVoices is the number of overlapping click loops per transition
	CueVoices = 20

	// CueBaseGain is divided by sqrt(voices) to keep the bank from clipping
	CueBaseGain = 0.08

	// CueRateMin and CueRateSpread bound the per-voice playback rate (pitch)
	CueRateMin    = 0.9
	CueRateSpread = 0.4

	// CuePanSpread is the maximum absolute stereo pan of a voice
	CuePanSpread = 0.5

	// CueStartJitter is the maximum random start offset of a voice
	CueStartJitter = 20 * time.Millisecond

	// CueFadeDuration is the exponential release applied at cutoff
	CueFadeDuration = 50 * time.Millisecond

	// CueFadeFloor is the gain the release ramps down to
	CueFadeFloor = 0.001

	// ClickDuration is the length of one synthesized click waveform
	ClickDuration = 100 * time.Millisecond
)

// Click synthesis
const (
	// ClickResonanceMix scales the two resonance partials against the snap
	ClickResonanceMix = 0.2

	// ClickRattleMix and ClickRattleDecay shape the low-level mechanical rattle
	ClickRattleMix   = 0.1
	ClickRattleDecay = 150.0

	// ClickSecondPartialDecay stretches the resonance decay of the upper partial
	ClickSecondPartialDecay = 1.2
)

// Voice pool
const (
	// PoolMaxVoices bounds concurrently mixed voices, extra schedules are dropped
	PoolMaxVoices = 64

	// ResampleQuality is the beep resampler quality for pitch variation
	ResampleQuality = 4
)
