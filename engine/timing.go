package engine

import (
	"fmt"
	"time"

	"github.com/lixenwraith/flipdot/constant"
)

// TimingConfig is the flip timing of one panel
type TimingConfig struct {
	FlipDuration time.Duration // nominal single-dot flip
	ColumnDelay  time.Duration // stagger unit
	Variance     float64       // percent, 0..100
}

// DefaultTiming returns the stock 300ms flip, 100ms stagger, 20% variance
func DefaultTiming() TimingConfig {
	return TimingConfig{
		FlipDuration: constant.DefaultFlipDuration,
		ColumnDelay:  constant.DefaultColumnDelay,
		Variance:     constant.DefaultFlipVariance,
	}
}

// Validate rejects flip durations outside (0, MaxFlipDuration], stagger outside
// [0, MaxColumnDelay] and variance outside 0..100
func (c TimingConfig) Validate() error {
	if c.FlipDuration <= 0 || c.FlipDuration > constant.MaxFlipDuration {
		return fmt.Errorf("%w: flipDuration %v", ErrOutOfRange, c.FlipDuration)
	}
	if c.ColumnDelay < 0 || c.ColumnDelay > constant.MaxColumnDelay {
		return fmt.Errorf("%w: columnDelay %v", ErrOutOfRange, c.ColumnDelay)
	}
	if c.Variance < 0 || c.Variance > 100 {
		return fmt.Errorf("%w: flipDurationVariance %v", ErrOutOfRange, c.Variance)
	}
	return nil
}

// SweepSpan is the analytic stagger span across the grid
// Horizontal: ((cols-1) + (rows-1)*2) * columnDelay; vertical swaps rows and cols
// The *2 approximates the mean RowDelay step drawn from [1,3)
func SweepSpan(rows, cols int, columnDelay time.Duration, dir Direction) time.Duration {
	if rows <= 0 || cols <= 0 || columnDelay <= 0 {
		return 0
	}
	along, across := cols, rows
	if dir.Vertical() {
		along, across = rows, cols
	}
	return time.Duration((along-1)+(across-1)*constant.SweepRowFactor) * columnDelay
}

// TotalDuration bounds a whole transition: SweepSpan + flipDuration
func TotalDuration(rows, cols int, cfg TimingConfig, dir Direction) time.Duration {
	return SweepSpan(rows, cols, cfg.ColumnDelay, dir) + max(cfg.FlipDuration, 0)
}
