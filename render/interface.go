package render

import "github.com/lixenwraith/flipdot/engine"

// FrameRenderer paints one sampled panel frame
// Implementations read the frame synchronously and must not retain Dots
type FrameRenderer interface {
	Render(f engine.Frame) error
}
