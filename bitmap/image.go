package bitmap

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

const (
	// lumaThreshold and alphaThreshold decide whether a scaled pixel lights a dot
	lumaThreshold  = 128
	alphaThreshold = 128
)

// ImageRasterizer loads an uploaded image and thresholds it onto the grid
type ImageRasterizer struct {
	// Root is the directory uploaded images are resolved against
	Root string
}

// NewImageRasterizer resolves image references under root
func NewImageRasterizer(root string) *ImageRasterizer {
	return &ImageRasterizer{Root: root}
}

// Resolve maps a stored reference ("/uploads/name.png" or "name.png") to a file path
// Only the base name is kept so references cannot escape Root
func (ir *ImageRasterizer) Resolve(ref string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(ref, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	return filepath.Join(ir.Root, name), nil
}

// Rasterize decodes the referenced image and converts it to a rows x cols bitmap
func (ir *ImageRasterizer) Rasterize(ctx context.Context, ref string, rows, cols int) (Bitmap, error) {
	path, err := ir.Resolve(ref)
	if err != nil {
		return Bitmap{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Bitmap{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Bitmap{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return Bitmap{}, err
	}

	return FromImage(img, rows, cols), nil
}

// FromImage scales img to cols x rows and sets every dot whose pixel is
// bright (Rec.601 luma) and mostly opaque
func FromImage(img image.Image, rows, cols int) Bitmap {
	out := New(rows, cols)
	if out.IsEmpty() {
		return out
	}

	dst := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			px := dst.NRGBAAt(c, r)
			if px.A > alphaThreshold && luma(px) > lumaThreshold {
				out.cells[r*cols+c] = 1
			}
		}
	}
	return out
}

func luma(px color.NRGBA) float64 {
	return 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
}
