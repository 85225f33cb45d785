package audio

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	"github.com/lixenwraith/flipdot/constant"
)

// floatBuffer is mono float64 samples at unity gain
type floatBuffer []float64

// durationToSamples converts seconds to a sample count at rate
func durationToSamples(d float64, rate int) int {
	return int(d * float64(rate))
}

// partial renders n samples of a sine tone through the beep generator
func partial(rate int, freq float64, n int) (floatBuffer, error) {
	tone, err := generators.SineTone(beep.SampleRate(rate), freq)
	if err != nil {
		return nil, fmt.Errorf("partial %.0fHz: %w", freq, err)
	}

	frames := make([][2]float64, n)
	got, _ := tone.Stream(frames)

	buf := make(floatBuffer, n)
	for i := 0; i < got; i++ {
		buf[i] = frames[i][0]
	}
	return buf, nil
}

// synthesizeClick builds one mechanical click for profile p
// noise snap + two decaying resonance partials + a low rattle
func synthesizeClick(p ToneProfile, rate int, rng *rand.Rand) (floatBuffer, error) {
	n := durationToSamples(constant.ClickDuration.Seconds(), rate)
	if n <= 0 {
		return nil, fmt.Errorf("click: sample rate %d too low", rate)
	}

	res1, err := partial(rate, p.Freq1, n)
	if err != nil {
		return nil, err
	}
	res2, err := partial(rate, p.Freq2, n)
	if err != nil {
		return nil, err
	}

	buf := make(floatBuffer, n)
	for i := range buf {
		t := float64(i) / float64(rate)

		snap := (rng.Float64()*2 - 1) * math.Exp(-t*p.ClickDecay)
		resonance := res1[i]*math.Exp(-t*p.ResonanceDecay) +
			res2[i]*math.Exp(-t*p.ResonanceDecay*constant.ClickSecondPartialDecay)
		rattle := (rng.Float64()*2 - 1) * math.Exp(-t*constant.ClickRattleDecay) * constant.ClickRattleMix

		buf[i] = snap + resonance*constant.ClickResonanceMix + rattle
	}
	return buf, nil
}
