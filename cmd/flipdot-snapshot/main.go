// Command flipdot-snapshot renders a text transition offline to a numbered
// WebP frame sequence, driving the panel from a simulated clock
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/engine"
	"github.com/lixenwraith/flipdot/render"
	"github.com/lixenwraith/flipdot/store"
)

var (
	outFlag   = flag.String("out", "frames", "Output directory")
	fromFlag  = flag.String("from", "", "Text shown before the transition (empty starts blank)")
	toFlag    = flag.String("to", "FLIPDOT", "Text transitioned to")
	dataFlag  = flag.String("data", "", "Settings file (empty uses defaults)")
	fpsFlag   = flag.Int("fps", 30, "Frames per second of the sequence")
	cellFlag  = flag.Int("cell", constant.DefaultSnapshotCellPx, "Pixels per dot")
	seedFlag  = flag.Int64("seed", 1, "Seed for the mechanical variance")
	limitFlag = flag.Int("max", 2000, "Maximum frames written")
)

// options is the resolved snapshot job
type options struct {
	Settings store.Settings
	From, To string
	OutDir   string
	FPS      int
	CellPx   int
	Seed     int64
	Max      int
}

func main() {
	flag.Parse()

	settings := store.DefaultSettings()
	if *dataFlag != "" {
		fs, err := store.OpenFileStore(*dataFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "flipdot-snapshot: %v\n", err)
			os.Exit(1)
		}
		settings = fs.Settings()
	}

	n, err := renderSequence(options{
		Settings: settings,
		From:     *fromFlag,
		To:       *toFlag,
		OutDir:   *outFlag,
		FPS:      *fpsFlag,
		CellPx:   *cellFlag,
		Seed:     *seedFlag,
		Max:      *limitFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "flipdot-snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d frames to %s\n", n, *outFlag)
}

// renderSequence animates From -> To and writes frame%05d.webp until the panel settles
// Returns the number of frames written
func renderSequence(o options) (int, error) {
	if o.FPS <= 0 || o.Max <= 0 {
		return 0, errors.New("fps and max must be positive")
	}
	rows, cols := o.Settings.Resolution.Rows, o.Settings.Resolution.Cols

	raster := bitmap.NewTextRasterizer()
	text := func(s string) (bitmap.Bitmap, error) {
		if s == "" {
			return bitmap.New(rows, cols), nil
		}
		return raster.Rasterize(s, rows, cols)
	}
	from, err := text(o.From)
	if err != nil {
		return 0, err
	}
	to, err := text(o.To)
	if err != nil {
		return 0, err
	}

	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	panel := engine.NewPanel(clock, rand.New(rand.NewSource(o.Seed)), nil)
	if err := panel.Configure(rows, cols, o.Settings.EngineTiming(), o.Settings.Direction()); err != nil {
		return 0, err
	}

	// Settle instantly on the starting bitmap, then transition
	if _, err := panel.OnBitmapChanged(from); err != nil {
		return 0, err
	}
	clock.Advance(max(panel.TotalDuration(), panel.SettleTime()))
	panel.Sample()
	if _, err := panel.OnBitmapChanged(to); err != nil {
		return 0, err
	}

	painter := render.NewPainter(o.CellPx, o.Settings.Palette())
	step := time.Second / time.Duration(o.FPS)
	end := max(panel.TotalDuration(), panel.SettleTime())

	n := 0
	for ; n < o.Max; n++ {
		f := panel.Sample()
		if _, err := painter.SaveSnapshot(o.OutDir, fmt.Sprintf("frame%05d.webp", n), f); err != nil {
			return n, err
		}
		if panel.Elapsed() >= end {
			n++
			break
		}
		clock.Advance(step)
	}
	return n, nil
}
