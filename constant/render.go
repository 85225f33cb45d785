package constant

// Terminal glyphs for the dot rotation phases
const (
	GlyphDotFull  = '●'
	GlyphDotHalf  = '•'
	GlyphDotEdge  = '━'
	GlyphDotSlim  = '─'
	GlyphSquare   = '■'
	GlyphSquareSm = '▪'
)

// Rotation thresholds on scaleY used by both renderers
const (
	// EdgeBandThreshold is the scaleY below which the dot is drawn edge-on
	EdgeBandThreshold = 0.3

	// HalfPhaseThreshold is the scaleY below which the terminal draws the reduced glyph
	HalfPhaseThreshold = 0.7

	// FlipShadowStrength is the maximum darkening applied to a rotating dot
	FlipShadowStrength = 0.4
)

// Raster painter proportions relative to a cell
const (
	DotSizeCircle = 0.85
	DotSizeSquare = 0.9
	HoleScale     = 1.05
	CornerRadius  = 0.15
)
