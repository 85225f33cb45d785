package store

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/flipdot/bitmap"
)

// ContentItem is one entry of the display queue
type ContentItem struct {
	ID           string      `json:"id"`
	Type         bitmap.Kind `json:"type"`
	Content      string      `json:"content"`
	OriginalName string      `json:"originalName,omitempty"`
	Priority     int         `json:"priority"`
	AddedAt      int64       `json:"addedAt"` // unix milliseconds
}

// Source returns the rasterizer input for the item
func (c ContentItem) Source() bitmap.Content {
	return bitmap.Content{Kind: c.Type, Data: c.Content}
}

// Validate rejects unknown kinds and empty content
func (c ContentItem) Validate() error {
	switch c.Type {
	case bitmap.KindText, bitmap.KindImage:
	default:
		return fmt.Errorf("%w: type %q", ErrBadContent, c.Type)
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: empty content", ErrBadContent)
	}
	return nil
}

// cloneQueue copies a queue so callers never alias store state
func cloneQueue(q []ContentItem) []ContentItem {
	out := make([]ContentItem, len(q))
	copy(out, q)
	return out
}
