package audio

// ToneProfile parameterizes one click waveform
// Freq1/Freq2 are the resonance partials in Hz, ClickDecay and ResonanceDecay
// are exponential decay rates per second, Volume scales the cue gain
type ToneProfile struct {
	Freq1          float64
	Freq2          float64
	ClickDecay     float64
	ResonanceDecay float64
	Volume         float64
}

var profiles = [soundTypeCount]ToneProfile{
	SoundDefault:  {Freq1: 800, Freq2: 1600, ClickDecay: 500, ResonanceDecay: 100, Volume: 1.0},
	SoundDeep:     {Freq1: 220, Freq2: 440, ClickDecay: 250, ResonanceDecay: 45, Volume: 1.3},
	SoundMetallic: {Freq1: 2400, Freq2: 3650, ClickDecay: 700, ResonanceDecay: 35, Volume: 0.7},
	SoundSoft:     {Freq1: 600, Freq2: 1150, ClickDecay: 300, ResonanceDecay: 160, Volume: 0.6},
	SoundSharp:    {Freq1: 1500, Freq2: 3100, ClickDecay: 1100, ResonanceDecay: 180, Volume: 0.9},
}

// Profile returns the tone profile of st, default for unknown types
func Profile(st SoundType) ToneProfile {
	if st < 0 || st >= soundTypeCount {
		return profiles[SoundDefault]
	}
	return profiles[st]
}
