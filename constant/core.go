package constant

import "time"

// Loop & Session Timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// CommandQueueSize bounds pending session commands (play/pause/settings/queue)
	CommandQueueSize = 64

	// RasterTimeout caps a single rasterization before it is reported as failed
	RasterTimeout = 5 * time.Second
)

// Grid Limits
const (
	// MaxGridRows and MaxGridCols reject absurd resolutions at the settings boundary
	MaxGridRows = 512
	MaxGridCols = 1024
)

// Host Metrics
const (
	// HostSampleInterval is the period of the CPU/memory sampler feeding /api/status
	HostSampleInterval = 2 * time.Second
)
