package render

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
)

// ErrUnknownShape is returned by ParseDotShape
var ErrUnknownShape = errors.New("unknown dot shape")

// DotShape selects how a dot face is drawn
type DotShape int

const (
	ShapeCircle DotShape = iota
	ShapeSquare
)

// ParseDotShape maps a settings string to a DotShape
func ParseDotShape(s string) (DotShape, error) {
	switch s {
	case "circle":
		return ShapeCircle, nil
	case "square":
		return ShapeSquare, nil
	}
	return ShapeCircle, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

func (s DotShape) String() string {
	if s == ShapeSquare {
		return "square"
	}
	return "circle"
}

// Palette is the resolved colour scheme of a panel
type Palette struct {
	Front   core.RGB
	Back    core.RGB
	Housing core.RGB
	Shape   DotShape
}

// DefaultPalette returns yellow-on-black circles in a dark housing
func DefaultPalette() Palette {
	p, _ := NewPalette(constant.DefaultColorFront, constant.DefaultColorBack, constant.DefaultDotShape)
	return p
}

// NewPalette parses hex colours and the shape name
func NewPalette(front, back, shape string) (Palette, error) {
	f, err := core.ParseHex(front)
	if err != nil {
		return Palette{}, fmt.Errorf("front color: %w", err)
	}
	b, err := core.ParseHex(back)
	if err != nil {
		return Palette{}, fmt.Errorf("back color: %w", err)
	}
	s, err := ParseDotShape(shape)
	if err != nil {
		return Palette{}, err
	}
	h, _ := core.ParseHex(constant.DefaultHousingColor)
	return Palette{Front: f, Back: b, Housing: h, Shape: s}, nil
}

// Face returns the colour of the visible face
func (p Palette) Face(front bool) core.RGB {
	if front {
		return p.Front
	}
	return p.Back
}

// shadow darkens a rotating dot: full brightness flat, FlipShadowStrength edge-on
func shadow(scaleY float64) float64 {
	return 1 - constant.FlipShadowStrength*(1-scaleY)
}
