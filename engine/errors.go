package engine

import "errors"

var (
	// ErrOutOfRange rejects grid sizes and timing values the scheduler cannot honour
	ErrOutOfRange = errors.New("configuration out of range")

	// ErrBitmapSize is returned when a bitmap does not match the configured grid
	ErrBitmapSize = errors.New("bitmap does not match grid size")

	// ErrUnknownDirection is returned by ParseDirection
	ErrUnknownDirection = errors.New("unknown animation direction")
)
