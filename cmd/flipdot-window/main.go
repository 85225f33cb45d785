package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lixenwraith/flipdot/app"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/render"
	"github.com/lixenwraith/flipdot/session"
)

var (
	cellFlag   = flag.Int("cell", 10, "Pixels per dot")
	dataFlag   = flag.String("data", constant.DefaultDataFile, "Settings and queue file (empty keeps state in memory)")
	addrFlag   = flag.String("addr", "", "HTTP listen address (empty disables the API)")
	uploadFlag = flag.String("uploads", constant.DefaultUploadDir, "Directory for uploaded images")
	muteFlag   = flag.Bool("mute", false, "Disable audio output")
	textFlag   = flag.String("text", "FLIPDOT", "Queue this text when the stored queue is empty")
	verbose    = flag.Bool("v", false, "Log to stderr")
)

// window presents session frames in an ebiten window
type window struct {
	sess    *session.Session
	painter *render.Painter
	img     *ebiten.Image
	w, h    int
}

func newWindow(sess *session.Session, cellPx int) *window {
	st := sess.Settings()
	return &window{
		sess:    sess,
		painter: render.NewPainter(cellPx, st.Palette()),
		w:       st.Resolution.Cols * cellPx,
		h:       st.Resolution.Rows * cellPx,
	}
}

// Update handles keys: space toggles playback, q or escape quits
func (g *window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if _, err := g.sess.Toggle(); err != nil {
			return err
		}
	}
	return nil
}

// Draw paints the latest published frame
func (g *window) Draw(screen *ebiten.Image) {
	f := g.sess.Frame()
	if f.Rows == 0 {
		return
	}
	g.painter.Palette = g.sess.Settings().Palette()
	if err := g.painter.Render(f); err != nil {
		log.Printf("[window] paint: %v", err)
		return
	}

	img := g.painter.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if g.img == nil || g.w != w || g.h != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.w, g.h = w, h
	}
	// Painted pixels are opaque, so straight and premultiplied alpha agree
	g.img.WritePixels(img.Pix)
	screen.DrawImage(g.img, nil)
}

// Layout keeps the logical screen at the panel's pixel size
func (g *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return max(g.w, 1), max(g.h, 1)
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flipdot-window: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := app.Config{
		DataPath:   *dataFlag,
		ListenAddr: *addrFlag,
		UploadDir:  *uploadFlag,
		Mute:       *muteFlag,
		Texts:      []string{*textFlag},
	}
	a, err := app.New(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	core.Go(func() { done <- a.Session.Run(ctx) })

	g := newWindow(a.Session, max(*cellFlag, constant.MinSnapshotCellPx))
	ebiten.SetWindowTitle("flipdot  " + a.Summary())
	ebiten.SetWindowSize(g.w, g.h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(g)
	cancel()
	<-done
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
