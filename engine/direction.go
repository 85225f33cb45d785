package engine

import "fmt"

// Direction selects the sweep axis and order
type Direction int

const (
	LeftRight Direction = iota
	RightLeft
	TopBottom
	BottomTop
	directionCount
)

var directionNames = [directionCount]string{
	LeftRight: "left-right",
	RightLeft: "right-left",
	TopBottom: "top-bottom",
	BottomTop: "bottom-top",
}

// ParseDirection maps a settings string to a Direction
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return Direction(d), nil
		}
	}
	return LeftRight, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func (d Direction) String() string {
	if d < 0 || d >= directionCount {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Vertical reports whether the sweep runs along rows (per-column stagger)
func (d Direction) Vertical() bool {
	return d == TopBottom || d == BottomTop
}

// Opposite returns the reverse sweep on the same axis
func (d Direction) Opposite() Direction {
	switch d {
	case LeftRight:
		return RightLeft
	case RightLeft:
		return LeftRight
	case TopBottom:
		return BottomTop
	case BottomTop:
		return TopBottom
	}
	return d
}
