// Package bitmap holds the binary display matrices the panel animates between
// and the rasterizers that produce them from queue content
package bitmap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDimension is returned when cell data does not match rows*cols
var ErrDimension = errors.New("bitmap: dimension mismatch")

// Bitmap is an immutable row-major binary matrix
// The zero value is an empty 0x0 bitmap
type Bitmap struct {
	rows  int
	cols  int
	cells []uint8
}

// New returns an all-zero bitmap of the given size
func New(rows, cols int) Bitmap {
	if rows <= 0 || cols <= 0 {
		return Bitmap{}
	}
	return Bitmap{rows: rows, cols: cols, cells: make([]uint8, rows*cols)}
}

// FromCells copies cells into a new bitmap, any non-zero value becomes 1
func FromCells(rows, cols int, cells []uint8) (Bitmap, error) {
	if rows <= 0 || cols <= 0 || len(cells) != rows*cols {
		return Bitmap{}, fmt.Errorf("%w: %dx%d with %d cells", ErrDimension, rows, cols, len(cells))
	}
	b := New(rows, cols)
	for i, v := range cells {
		if v != 0 {
			b.cells[i] = 1
		}
	}
	return b, nil
}

// MustParse builds a bitmap from rows of '#'/'1' (on) and anything else (off)
// Panics on ragged input; intended for tests and fixtures
func MustParse(lines ...string) Bitmap {
	if len(lines) == 0 {
		return Bitmap{}
	}
	cols := len(lines[0])
	b := New(len(lines), cols)
	for r, line := range lines {
		if len(line) != cols {
			panic(fmt.Sprintf("bitmap: ragged row %d: %q", r, line))
		}
		for c := 0; c < cols; c++ {
			if line[c] == '#' || line[c] == '1' {
				b.cells[r*cols+c] = 1
			}
		}
	}
	return b
}

// Rows returns the row count
func (b Bitmap) Rows() int { return b.rows }

// Cols returns the column count
func (b Bitmap) Cols() int { return b.cols }

// Len returns rows*cols
func (b Bitmap) Len() int { return len(b.cells) }

// IsEmpty reports whether the bitmap has no cells
func (b Bitmap) IsEmpty() bool { return len(b.cells) == 0 }

// Matches reports whether the bitmap has the given dimensions
func (b Bitmap) Matches(rows, cols int) bool {
	return b.rows == rows && b.cols == cols && len(b.cells) == rows*cols
}

// At returns the value at (r, c), out-of-range reads as 0
func (b Bitmap) At(r, c int) uint8 {
	if r < 0 || c < 0 || r >= b.rows || c >= b.cols {
		return 0
	}
	return b.cells[r*b.cols+c]
}

// Index returns the value at flat index i, out-of-range reads as 0
func (b Bitmap) Index(i int) uint8 {
	if i < 0 || i >= len(b.cells) {
		return 0
	}
	return b.cells[i]
}

// Cells returns a copy of the row-major cell data
func (b Bitmap) Cells() []uint8 {
	out := make([]uint8, len(b.cells))
	copy(out, b.cells)
	return out
}

// Any reports whether at least one cell is set
func (b Bitmap) Any() bool {
	for _, v := range b.cells {
		if v != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of set cells
func (b Bitmap) Count() int {
	n := 0
	for _, v := range b.cells {
		n += int(v)
	}
	return n
}

// Equal reports identical dimensions and cells
func (b Bitmap) Equal(o Bitmap) bool {
	if b.rows != o.rows || b.cols != o.cols || len(b.cells) != len(o.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Differs reports whether any cell of b differs from o
// Cells missing from the shorter bitmap read as 0
func (b Bitmap) Differs(o Bitmap) bool {
	n := max(len(b.cells), len(o.cells))
	for i := 0; i < n; i++ {
		if b.Index(i) != o.Index(i) {
			return true
		}
	}
	return false
}

// String renders the bitmap as '#'/'.' rows
func (b Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(len(b.cells) + b.rows)
	for r := 0; r < b.rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < b.cols; c++ {
			if b.cells[r*b.cols+c] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
