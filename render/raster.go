package render

import (
	"fmt"
	"image"
	"math"

	"github.com/tanema/gween/ease"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/engine"
)

// Painter rasterizes frames into an RGBA image, CellPx square pixels per dot
// The shading mimics a painted disc in a recessed housing hole
type Painter struct {
	CellPx  int
	Palette Palette

	// Falloff curves, t in [0,1] across the radius
	HoleFalloff ease.TweenFunc
	DotFalloff  ease.TweenFunc

	img *image.NRGBA
}

// NewPainter creates a painter with the stock falloff curves
func NewPainter(cellPx int, palette Palette) *Painter {
	if cellPx <= 0 {
		cellPx = constant.DefaultSnapshotCellPx
	}
	return &Painter{
		CellPx:      cellPx,
		Palette:     palette,
		HoleFalloff: ease.InOutSine,
		DotFalloff:  ease.OutQuad,
	}
}

// Image returns the last painted image, nil before the first Render
func (p *Painter) Image() *image.NRGBA {
	return p.img
}

// Render implements FrameRenderer, reusing the image while the size is stable
func (p *Painter) Render(f engine.Frame) error {
	if len(f.Dots) != f.Rows*f.Cols {
		return fmt.Errorf("frame %dx%d carries %d dots", f.Rows, f.Cols, len(f.Dots))
	}
	w, h := f.Cols*p.CellPx, f.Rows*p.CellPx
	if p.img == nil || p.img.Rect.Dx() != w || p.img.Rect.Dy() != h {
		p.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			p.paintDot(r, c, f.At(r, c))
		}
	}
	return nil
}

// Paint renders f into a fresh image
func (p *Painter) Paint(f engine.Frame) (*image.NRGBA, error) {
	p.img = nil
	if err := p.Render(f); err != nil {
		return nil, err
	}
	return p.img, nil
}

// paintDot fills one cell: housing, hole, squashed face, highlights, shadow
func (p *Painter) paintDot(row, col int, d engine.DotState) {
	cell := p.CellPx
	pal := p.Palette
	face := pal.Face(d.ShowFront)
	scale := max(d.ScaleY, 0)
	dark := shadow(scale)
	speckU, speckV := speck(row, col)

	size := constant.DotSizeCircle
	if pal.Shape == ShapeSquare {
		size = constant.DotSizeSquare
	}
	half := size / 2
	holeHalf := half * constant.HoleScale
	band := max(1/float64(cell), 0.08) / 2

	for py := 0; py < cell; py++ {
		v := (float64(py)+0.5)/float64(cell) - 0.5
		for px := 0; px < cell; px++ {
			u := (float64(px)+0.5)/float64(cell) - 0.5
			pix := pal.Housing

			// Recessed hole, darker towards the centre
			if hd := p.extent(u, v, holeHalf); hd <= 1 {
				pix = pal.Housing.Scale(float64(p.HoleFalloff(float32(hd), 0.35, 0.45, 1)))
			}

			switch {
			case scale < constant.EdgeBandThreshold:
				// Edge-on: a thin band across the dot width
				if math.Abs(v) <= band && math.Abs(u) <= half {
					pix = face.Scale(0.6 * dark)
				} else if scale > 0 {
					pix = p.shadeFace(pix, face, u, v, half, scale, dark, speckU, speckV)
				}
			default:
				pix = p.shadeFace(pix, face, u, v, half, scale, dark, speckU, speckV)
			}

			i := p.img.PixOffset(col*cell+px, row*cell+py)
			p.img.Pix[i+0] = pix.R
			p.img.Pix[i+1] = pix.G
			p.img.Pix[i+2] = pix.B
			p.img.Pix[i+3] = 255
		}
	}
}

// shadeFace returns the face colour at (u, v) or under if the point is outside the squashed dot
func (p *Painter) shadeFace(under, face core.RGB, u, v, half, scale, dark, su, sv float64) core.RGB {
	vs := v / scale
	dist := p.extent(u, vs, half)
	if dist > 1 {
		return under
	}

	// Body gradient: slightly bright centre falling off to the rim
	f := float64(p.DotFalloff(float32(dist), 1.1, -0.35, 1))
	var c core.RGB
	if f > 1 {
		c = face.Blend(core.RGBWhite, f-1)
	} else {
		c = face.Scale(f)
	}

	// Bevel: lit upper-left rim, shaded lower-right rim
	if dist > 0.8 {
		if u+vs < 0 {
			c = c.Adjust(25)
		} else {
			c = c.Adjust(-25)
		}
	}

	// Specular spot up-left of centre
	sx, sy := u+half*0.3, vs+half*0.3
	if math.Hypot(sx, sy) < half*0.18 {
		c = c.Blend(core.RGBWhite, 0.35*scale)
	}

	// Paint texture speck
	if math.Hypot(u-su*half, vs-sv*half) < half*0.07 {
		c = c.Scale(0.85)
	}

	return c.Scale(dark)
}

// extent returns the normalized distance of (u, v) in the shape of the palette
// <= 1 inside, circle uses the euclidean norm, square a rounded-corner norm
func (p *Painter) extent(u, v, half float64) float64 {
	if half <= 0 {
		return math.Inf(1)
	}
	if p.Palette.Shape != ShapeSquare {
		return math.Hypot(u, v) / half
	}

	r := constant.CornerRadius * half * 2
	inner := half - r
	du, dv := math.Abs(u)-inner, math.Abs(v)-inner
	if du <= 0 || dv <= 0 {
		return max(math.Abs(u), math.Abs(v)) / half
	}
	return (inner + math.Hypot(du, dv)) / half
}

// speck returns a stable per-dot offset in [-0.5, 0.5)
func speck(row, col int) (float64, float64) {
	h := uint32(row)*73856093 ^ uint32(col)*19349663
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float64(h&0xff)/256 - 0.5, float64((h>>8)&0xff)/256 - 0.5
}
