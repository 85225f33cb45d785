package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lixenwraith/flipdot/audio"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/engine"
	"github.com/lixenwraith/flipdot/render"
)

// Resolution is the panel grid size in dots
type Resolution struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Colors are the two dot faces as #RRGGBB
type Colors struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Timing is the flip timing in milliseconds, variance in percent
type Timing struct {
	FlipDuration         int64   `json:"flipDuration"`
	ColumnDelay          int64   `json:"columnDelay"`
	FlipDurationVariance float64 `json:"flipDurationVariance"`
	SlideDuration        int64   `json:"slideDuration"`
}

// Settings is the persisted display configuration
type Settings struct {
	Resolution         Resolution `json:"resolution"`
	Colors             Colors     `json:"colors"`
	Timing             Timing     `json:"timing"`
	AnimationDirection string     `json:"animationDirection"`
	SoundType          string     `json:"soundType"`
	DotShape           string     `json:"dotShape"`
}

// DefaultSettings returns the stock 25x80 yellow-on-black configuration
func DefaultSettings() Settings {
	return Settings{
		Resolution: Resolution{Rows: constant.DefaultRows, Cols: constant.DefaultCols},
		Colors:     Colors{Front: constant.DefaultColorFront, Back: constant.DefaultColorBack},
		Timing: Timing{
			FlipDuration:         constant.DefaultFlipDuration.Milliseconds(),
			ColumnDelay:          constant.DefaultColumnDelay.Milliseconds(),
			FlipDurationVariance: constant.DefaultFlipVariance,
			SlideDuration:        constant.DefaultSlideDuration.Milliseconds(),
		},
		AnimationDirection: constant.DefaultDirection,
		SoundType:          constant.DefaultSoundType,
		DotShape:           constant.DefaultDotShape,
	}
}

// Validate checks every field; numeric violations wrap engine.ErrOutOfRange
func (s Settings) Validate() error {
	if err := engine.ValidateGrid(s.Resolution.Rows, s.Resolution.Cols); err != nil {
		return err
	}
	if err := s.Timing.validateFlip(); err != nil {
		return err
	}
	if err := s.Timing.validateSlide(); err != nil {
		return err
	}
	if _, err := engine.ParseDirection(s.AnimationDirection); err != nil {
		return err
	}
	if _, err := audio.ParseSoundType(s.SoundType); err != nil {
		return err
	}
	if _, err := render.NewPalette(s.Colors.Front, s.Colors.Back, s.DotShape); err != nil {
		return err
	}
	return nil
}

// validateFlip range-checks the millisecond fields before converting them,
// so values that would wrap int64 nanoseconds are rejected
func (t Timing) validateFlip() error {
	if t.FlipDuration <= 0 || t.FlipDuration > constant.MaxFlipDuration.Milliseconds() {
		return fmt.Errorf("%w: flipDuration %d", engine.ErrOutOfRange, t.FlipDuration)
	}
	if t.ColumnDelay < 0 || t.ColumnDelay > constant.MaxColumnDelay.Milliseconds() {
		return fmt.Errorf("%w: columnDelay %d", engine.ErrOutOfRange, t.ColumnDelay)
	}
	return Settings{Timing: t}.EngineTiming().Validate()
}

func (t Timing) validateSlide() error {
	if t.SlideDuration <= 0 || t.SlideDuration > constant.MaxSlideDuration.Milliseconds() {
		return fmt.Errorf("%w: slideDuration %d", engine.ErrOutOfRange, t.SlideDuration)
	}
	return nil
}

// EngineTiming converts the millisecond fields for the scheduler
func (s Settings) EngineTiming() engine.TimingConfig {
	return engine.TimingConfig{
		FlipDuration: time.Duration(s.Timing.FlipDuration) * time.Millisecond,
		ColumnDelay:  time.Duration(s.Timing.ColumnDelay) * time.Millisecond,
		Variance:     s.Timing.FlipDurationVariance,
	}
}

// Slide returns the per-item display duration
func (s Settings) Slide() time.Duration {
	return time.Duration(s.Timing.SlideDuration) * time.Millisecond
}

// Direction parses the sweep direction, falling back to left-right
func (s Settings) Direction() engine.Direction {
	d, err := engine.ParseDirection(s.AnimationDirection)
	if err != nil {
		return engine.LeftRight
	}
	return d
}

// Sound parses the sound type, falling back to default
func (s Settings) Sound() audio.SoundType {
	st, _ := audio.ParseSoundType(s.SoundType)
	return st
}

// Palette resolves colours and shape, falling back to the default palette
func (s Settings) Palette() render.Palette {
	p, err := render.NewPalette(s.Colors.Front, s.Colors.Back, s.DotShape)
	if err != nil {
		return render.DefaultPalette()
	}
	return p
}

// Merge applies a partial JSON document over s
// Nested objects merge field by field; the result is validated and s is
// returned unchanged on any error
func (s Settings) Merge(patch []byte) (Settings, error) {
	out := s
	if err := json.Unmarshal(patch, &out); err != nil {
		return s, fmt.Errorf("%w: %v", ErrBadSettings, err)
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return out, nil
}

// sanitize replaces invalid loaded values with defaults field group by field group
func (s Settings) sanitize() Settings {
	def := DefaultSettings()
	if engine.ValidateGrid(s.Resolution.Rows, s.Resolution.Cols) != nil {
		s.Resolution = def.Resolution
	}
	if s.Timing.validateFlip() != nil {
		slide := s.Timing.SlideDuration
		s.Timing = def.Timing
		s.Timing.SlideDuration = slide
	}
	if s.Timing.validateSlide() != nil {
		s.Timing.SlideDuration = def.Timing.SlideDuration
	}
	if _, err := engine.ParseDirection(s.AnimationDirection); err != nil {
		s.AnimationDirection = def.AnimationDirection
	}
	if _, err := audio.ParseSoundType(s.SoundType); err != nil {
		s.SoundType = def.SoundType
	}
	if _, err := core.ParseHex(s.Colors.Front); err != nil {
		s.Colors.Front = def.Colors.Front
	}
	if _, err := core.ParseHex(s.Colors.Back); err != nil {
		s.Colors.Back = def.Colors.Back
	}
	if _, err := render.ParseDotShape(s.DotShape); err != nil {
		s.DotShape = def.DotShape
	}
	return s
}
