package bitmap

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies the content type of a queue item
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Content is the rasterizer input: text to draw or an image reference
type Content struct {
	Kind Kind
	Data string
}

// Source produces a bitmap of the requested size from content
// Implementations may block and must honour ctx cancellation
type Source interface {
	Rasterize(ctx context.Context, content Content, rows, cols int) (Bitmap, error)
}

// ErrUnsupportedKind is wrapped when no rasterizer handles a content kind
var ErrUnsupportedKind = errors.New("unsupported content kind")

// RasterizationError reports a failed bitmap production
type RasterizationError struct {
	Kind Kind
	Data string
	Err  error
}

func (e *RasterizationError) Error() string {
	data := e.Data
	if len(data) > 32 {
		data = data[:32] + "..."
	}
	return fmt.Sprintf("rasterize %s %q: %v", e.Kind, data, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// Rasterizer dispatches content to the text or image rasterizer
type Rasterizer struct {
	Text  *TextRasterizer
	Image *ImageRasterizer
}

// NewRasterizer creates a dispatcher with default text settings and images resolved under uploadDir
func NewRasterizer(uploadDir string) *Rasterizer {
	return &Rasterizer{
		Text:  NewTextRasterizer(),
		Image: NewImageRasterizer(uploadDir),
	}
}

// Rasterize implements Source
func (r *Rasterizer) Rasterize(ctx context.Context, content Content, rows, cols int) (Bitmap, error) {
	if rows <= 0 || cols <= 0 {
		return Bitmap{}, &RasterizationError{Kind: content.Kind, Data: content.Data,
			Err: fmt.Errorf("%w: %dx%d", ErrDimension, rows, cols)}
	}
	if err := ctx.Err(); err != nil {
		return Bitmap{}, &RasterizationError{Kind: content.Kind, Data: content.Data, Err: err}
	}

	var (
		b   Bitmap
		err error
	)
	switch content.Kind {
	case KindText:
		b, err = r.Text.Rasterize(content.Data, rows, cols)
	case KindImage:
		b, err = r.Image.Rasterize(ctx, content.Data, rows, cols)
	default:
		err = ErrUnsupportedKind
	}
	if err != nil {
		return Bitmap{}, &RasterizationError{Kind: content.Kind, Data: content.Data, Err: err}
	}
	return b, nil
}
