package engine

import (
	"fmt"
	"math/rand"

	"github.com/lixenwraith/flipdot/constant"
)

// DotModifier is the fixed mechanical imperfection of one dot
// StartOffset is in stagger units [-0.2, 0.2), RandomFactor is in [0, 1)
type DotModifier struct {
	StartOffset  float64
	RandomFactor float64
}

// neutralModifier is used for cells without generated modifiers
var neutralModifier = DotModifier{StartOffset: 0, RandomFactor: 0.5}

// GridMetrics holds the per-panel random state keyed by grid dimensions
// Regenerated only when rows or cols change, never per bitmap
type GridMetrics struct {
	Rows      int
	Cols      int
	Modifiers []DotModifier // row-major, len Rows*Cols
	RowDelay  []float64     // stagger units, horizontal sweeps
	ColDelay  []float64     // stagger units, vertical sweeps
}

// NewGridMetrics draws modifiers and stagger sequences for a rows x cols panel
func NewGridMetrics(rows, cols int, rng *rand.Rand) (*GridMetrics, error) {
	if err := ValidateGrid(rows, cols); err != nil {
		return nil, err
	}

	m := &GridMetrics{
		Rows:      rows,
		Cols:      cols,
		Modifiers: make([]DotModifier, rows*cols),
		RowDelay:  staggerDelays(rows, rng),
		ColDelay:  staggerDelays(cols, rng),
	}
	for i := range m.Modifiers {
		m.Modifiers[i] = DotModifier{
			StartOffset:  rng.Float64()*constant.JitterRange - constant.JitterRange/2,
			RandomFactor: rng.Float64(),
		}
	}
	return m, nil
}

// staggerDelays builds delay[0]=0, delay[i]=delay[i-1]+U[1,3)
func staggerDelays(n int, rng *rand.Rand) []float64 {
	delays := make([]float64, n)
	for i := 1; i < n; i++ {
		delays[i] = delays[i-1] + constant.RowDelayMinStep + rng.Float64()*constant.RowDelaySpread
	}
	return delays
}

// Matches reports whether the metrics were generated for rows x cols
func (m *GridMetrics) Matches(rows, cols int) bool {
	return m != nil && m.Rows == rows && m.Cols == cols
}

// Modifier returns the modifier of (r, c), neutral if missing
func (m *GridMetrics) Modifier(r, c int) DotModifier {
	i := r*m.Cols + c
	if i < 0 || i >= len(m.Modifiers) {
		return neutralModifier
	}
	return m.Modifiers[i]
}

// rowDelay falls back to 2 units per row when the sequence is short
func (m *GridMetrics) rowDelay(r int) float64 {
	if r >= 0 && r < len(m.RowDelay) {
		return m.RowDelay[r]
	}
	return float64(r * constant.SweepRowFactor)
}

func (m *GridMetrics) colDelay(c int) float64 {
	if c >= 0 && c < len(m.ColDelay) {
		return m.ColDelay[c]
	}
	return float64(c * constant.SweepRowFactor)
}

// ValidateGrid rejects non-positive and oversized resolutions
func ValidateGrid(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows > constant.MaxGridRows || cols > constant.MaxGridCols {
		return fmt.Errorf("%w: grid %dx%d", ErrOutOfRange, rows, cols)
	}
	return nil
}
