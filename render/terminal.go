package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/engine"
)

// cellWidth is terminal columns per dot; cells are roughly twice as tall as wide
const cellWidth = 2

// TerminalRenderer draws frames into a tcell screen, one glyph per dot
type TerminalRenderer struct {
	screen  tcell.Screen
	palette Palette
	originX int
	originY int
	status  string
}

// NewTerminalRenderer creates a renderer drawing at (originX, originY)
func NewTerminalRenderer(screen tcell.Screen, palette Palette, originX, originY int) *TerminalRenderer {
	return &TerminalRenderer{
		screen:  screen,
		palette: palette,
		originX: originX,
		originY: originY,
	}
}

// SetPalette replaces colours and shape for subsequent frames
func (r *TerminalRenderer) SetPalette(p Palette) {
	r.palette = p
}

// SetStatus sets the text drawn on the row below the panel
func (r *TerminalRenderer) SetStatus(s string) {
	r.status = s
}

// tcellColor converts an RGB to a tcell truecolor value
func tcellColor(c core.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// glyph picks the rune for a dot's rotation phase
func glyph(shape DotShape, scaleY float64) rune {
	switch {
	case scaleY < constant.EdgeBandThreshold:
		if shape == ShapeSquare {
			return constant.GlyphDotSlim
		}
		return constant.GlyphDotEdge
	case scaleY < constant.HalfPhaseThreshold:
		if shape == ShapeSquare {
			return constant.GlyphSquareSm
		}
		return constant.GlyphDotHalf
	}
	if shape == ShapeSquare {
		return constant.GlyphSquare
	}
	return constant.GlyphDotFull
}

// DotStyle returns the glyph and style of one dot
func (r *TerminalRenderer) DotStyle(d engine.DotState) (rune, tcell.Style) {
	face := r.palette.Face(d.ShowFront).Scale(shadow(d.ScaleY))
	style := tcell.StyleDefault.
		Foreground(tcellColor(face)).
		Background(tcellColor(r.palette.Housing))
	return glyph(r.palette.Shape, d.ScaleY), style
}

// Render implements FrameRenderer
// Dots outside the screen are clipped
func (r *TerminalRenderer) Render(f engine.Frame) error {
	if len(f.Dots) != f.Rows*f.Cols {
		return fmt.Errorf("frame %dx%d carries %d dots", f.Rows, f.Cols, len(f.Dots))
	}

	w, h := r.screen.Size()
	r.screen.Clear()
	housing := tcell.StyleDefault.Background(tcellColor(r.palette.Housing))

	for row := 0; row < f.Rows; row++ {
		y := r.originY + row
		if y >= h {
			break
		}
		for col := 0; col < f.Cols; col++ {
			x := r.originX + col*cellWidth
			if x >= w {
				break
			}
			ch, style := r.DotStyle(f.At(row, col))
			r.screen.SetContent(x, y, ch, nil, style)
			if x+1 < w {
				r.screen.SetContent(x+1, y, ' ', nil, housing)
			}
		}
	}

	r.drawStatus(f, w, h)
	r.screen.Show()
	return nil
}

// drawStatus writes play state, elapsed time and the status text below the panel
func (r *TerminalRenderer) drawStatus(f engine.Frame, w, h int) {
	y := r.originY + f.Rows
	if y >= h {
		return
	}

	state := "⏸ paused"
	if f.Playing {
		state = "▶ playing"
	}
	line := fmt.Sprintf("%s  %5.1fs", state, f.Elapsed.Seconds())
	if f.IsFlipping {
		line += "  flipping"
	}
	if r.status != "" {
		line += "  " + r.status
	}

	style := tcell.StyleDefault.Foreground(tcellColor(core.RGBWhite))
	x := r.originX
	for _, ch := range line {
		if x >= w {
			break
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
