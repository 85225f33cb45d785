package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/flipdot/constant"
)

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{LeftRight, RightLeft, TopBottom, BottomTop} {
		got, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q) failed: %v", d.String(), err)
		}
		if got != d {
			t.Errorf("ParseDirection(%q) = %v, want %v", d.String(), got, d)
		}
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite is not an involution for %v", d)
		}
		if d.Opposite().Vertical() != d.Vertical() {
			t.Errorf("Opposite of %v changed axis", d)
		}
	}

	if _, err := ParseDirection("diagonal"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}
}

func TestSweepSpan(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		delay      time.Duration
		dir        Direction
		want       time.Duration
	}{
		{"single dot", 1, 1, 100 * time.Millisecond, LeftRight, 0},
		{"one row horizontal", 1, 10, 10 * time.Millisecond, LeftRight, 90 * time.Millisecond},
		{"horizontal", 25, 80, 100 * time.Millisecond, LeftRight, (79 + 48) * 100 * time.Millisecond},
		{"horizontal reversed", 25, 80, 100 * time.Millisecond, RightLeft, (79 + 48) * 100 * time.Millisecond},
		{"vertical swaps axes", 25, 80, 100 * time.Millisecond, TopBottom, (24 + 158) * 100 * time.Millisecond},
		{"zero stagger", 25, 80, 0, BottomTop, 0},
		{"invalid grid", 0, 80, 100 * time.Millisecond, LeftRight, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SweepSpan(tt.rows, tt.cols, tt.delay, tt.dir); got != tt.want {
				t.Errorf("SweepSpan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalDurationDegeneratesToFlip(t *testing.T) {
	cfg := TimingConfig{FlipDuration: 300 * time.Millisecond, ColumnDelay: 100 * time.Millisecond}
	if got := TotalDuration(1, 1, cfg, TopBottom); got != cfg.FlipDuration {
		t.Errorf("TotalDuration(1x1) = %v, want %v", got, cfg.FlipDuration)
	}
}

func TestTotalDurationSymmetricInDirection(t *testing.T) {
	cfg := TimingConfig{FlipDuration: 250 * time.Millisecond, ColumnDelay: 17 * time.Millisecond}
	for rows := 1; rows <= 12; rows++ {
		for cols := 1; cols <= 12; cols++ {
			for _, d := range []Direction{LeftRight, TopBottom} {
				a := TotalDuration(rows, cols, cfg, d)
				b := TotalDuration(rows, cols, cfg, d.Opposite())
				if a != b {
					t.Fatalf("%dx%d %v: %v != opposite %v", rows, cols, d, a, b)
				}
				if a < cfg.FlipDuration {
					t.Fatalf("%dx%d %v: total %v below flip duration", rows, cols, d, a)
				}
			}
		}
	}
}

func TestTimingValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TimingConfig
		wantErr bool
	}{
		{"defaults", DefaultTiming(), false},
		{"zero stagger", TimingConfig{FlipDuration: time.Millisecond}, false},
		{"full variance", TimingConfig{FlipDuration: time.Millisecond, Variance: 100}, false},
		{"zero flip", TimingConfig{ColumnDelay: time.Millisecond}, true},
		{"negative flip", TimingConfig{FlipDuration: -time.Millisecond}, true},
		{"negative stagger", TimingConfig{FlipDuration: time.Millisecond, ColumnDelay: -1}, true},
		{"variance above range", TimingConfig{FlipDuration: time.Millisecond, Variance: 101}, true},
		{"negative variance", TimingConfig{FlipDuration: time.Millisecond, Variance: -1}, true},
		{"flip at limit", TimingConfig{FlipDuration: constant.MaxFlipDuration}, false},
		{"flip past limit", TimingConfig{FlipDuration: constant.MaxFlipDuration + 1}, true},
		{"stagger past limit", TimingConfig{FlipDuration: time.Millisecond, ColumnDelay: constant.MaxColumnDelay + 1}, true},
		{"stagger near int64 max", TimingConfig{FlipDuration: time.Millisecond, ColumnDelay: 9e12 * time.Millisecond}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Expected ErrOutOfRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidateGrid(t *testing.T) {
	if err := ValidateGrid(25, 80); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	for _, g := range [][2]int{{0, 1}, {1, 0}, {-3, 4}, {1 << 20, 1}} {
		if err := ValidateGrid(g[0], g[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ValidateGrid(%d,%d): expected ErrOutOfRange, got %v", g[0], g[1], err)
		}
	}
}

// TestTotalDurationAtLimits verifies the largest accepted config stays positive on the largest grid
func TestTotalDurationAtLimits(t *testing.T) {
	cfg := TimingConfig{
		FlipDuration: constant.MaxFlipDuration,
		ColumnDelay:  constant.MaxColumnDelay,
		Variance:     100,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected limits to validate, got %v", err)
	}
	for _, dir := range []Direction{LeftRight, TopBottom} {
		total := TotalDuration(constant.MaxGridRows, constant.MaxGridCols, cfg, dir)
		if total <= cfg.FlipDuration {
			t.Errorf("%v: expected total above flip duration, got %v", dir, total)
		}
	}
}
