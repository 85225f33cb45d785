package render

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"github.com/lixenwraith/flipdot/engine"
)

// EncodeWebP writes img as a lossless WebP
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

// Snapshot paints f and encodes it as WebP into w
func (p *Painter) Snapshot(w io.Writer, f engine.Frame) error {
	if err := p.Render(f); err != nil {
		return err
	}
	return EncodeWebP(w, p.img)
}

// SaveSnapshot paints f into dir/name, creating dir as needed
func (p *Painter) SaveSnapshot(dir, name string, f engine.Frame) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := p.Snapshot(out, f); err != nil {
		return "", err
	}
	return path, nil
}
