package bitmap

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// defaultTextScale is the supersampling factor per grid cell
	defaultTextScale = 10

	// textWidthFill is the fraction of canvas width the text may occupy
	textWidthFill = 0.95

	// sampleThreshold is the canvas intensity above which a cell is set
	sampleThreshold = 128
)

// TextRasterizer draws a single line of text centred and auto-sized on a
// supersampled canvas, then samples the centre of every grid cell
type TextRasterizer struct {
	Face  font.Face
	Scale int
}

// NewTextRasterizer uses the 7x13 bitmap font at 10x supersampling
func NewTextRasterizer() *TextRasterizer {
	return &TextRasterizer{Face: basicfont.Face7x13, Scale: defaultTextScale}
}

// Rasterize renders text into a rows x cols bitmap
// Empty or whitespace-only text yields an all-zero bitmap
func (t *TextRasterizer) Rasterize(text string, rows, cols int) (Bitmap, error) {
	out := New(rows, cols)
	text = strings.TrimSpace(text)
	if text == "" {
		return out, nil
	}

	scale := t.Scale
	if scale <= 0 {
		scale = defaultTextScale
	}

	glyphs := t.renderLine(text)
	gb := glyphs.Bounds()
	if gb.Dx() == 0 || gb.Dy() == 0 {
		return out, nil
	}

	canvas := image.NewGray(image.Rect(0, 0, cols*scale, rows*scale))

	// Fit: shrink until the line is within 95% of width and the full height
	fit := min(
		textWidthFill*float64(canvas.Rect.Dx())/float64(gb.Dx()),
		float64(canvas.Rect.Dy())/float64(gb.Dy()),
	)
	dw := max(1, int(float64(gb.Dx())*fit))
	dh := max(1, int(float64(gb.Dy())*fit))
	x0 := (canvas.Rect.Dx() - dw) / 2
	y0 := (canvas.Rect.Dy() - dh) / 2
	draw.NearestNeighbor.Scale(canvas, image.Rect(x0, y0, x0+dw, y0+dh), glyphs, gb, draw.Over, nil)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if canvas.GrayAt(c*scale+scale/2, r*scale+scale/2).Y > sampleThreshold {
				out.cells[r*cols+c] = 1
			}
		}
	}
	return out, nil
}

// renderLine draws text at native font size, white on black, tightly sized
func (t *TextRasterizer) renderLine(text string) *image.Gray {
	face := t.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	m := face.Metrics()

	d := &font.Drawer{Face: face}
	width := d.MeasureString(text).Ceil()
	height := (m.Ascent + m.Descent).Ceil()

	img := image.NewGray(image.Rect(0, 0, width, height))
	d.Dst = img
	d.Src = image.NewUniform(color.Gray{Y: 0xFF})
	d.Dot = fixed.Point26_6{X: 0, Y: m.Ascent}
	d.DrawString(text)
	return img
}
