package constant

import "time"

// Default display settings, applied when no data file exists or a field is missing
const (
	DefaultRows = 25
	DefaultCols = 80

	DefaultColorFront = "#FFFF00"
	DefaultColorBack  = "#000000"

	DefaultFlipDuration   = 300 * time.Millisecond
	DefaultColumnDelay    = 100 * time.Millisecond
	DefaultFlipVariance   = 20.0 // percent
	DefaultSlideDuration  = 5000 * time.Millisecond
	DefaultDirection      = "left-right"
	DefaultSoundType      = "default"
	DefaultDotShape       = "circle"
	DefaultHousingColor   = "#2A2A2A"
	DefaultUploadDir      = "uploads"
	DefaultDataFile       = "data.json"
	DefaultListenAddr     = ":3001"
	DefaultSnapshotCellPx = 12
)

// Timing limits
// Upper bounds keep every derived duration inside int64 nanoseconds for the largest grid
const (
	MaxFlipDuration  = time.Minute
	MaxColumnDelay   = 10 * time.Second
	MaxSlideDuration = 24 * time.Hour
)

// HTTP surface limits
const (
	MinSnapshotCellPx = 2
	MaxSnapshotCellPx = 64

	// MaxUploadBytes caps a multipart image upload
	MaxUploadBytes = 10 << 20

	// MaxTextBytes caps a text queue item
	MaxTextBytes = 4096
)

// Mechanical variance model
const (
	// JitterRange is the full width of the per-dot start offset, centred on zero
	JitterRange = 0.4

	// RowDelayMinStep and RowDelaySpread define the per-row (or per-column) stagger increment in [min, min+spread)
	RowDelayMinStep = 1.0
	RowDelaySpread  = 2.0

	// SweepRowFactor is the average RowDelay increment used by the analytic duration bound
	SweepRowFactor = 2
)
