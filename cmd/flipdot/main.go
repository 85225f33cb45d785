package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/flipdot/app"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/render"
)

var (
	debugFlag    = flag.Bool("debug", false, "Write logs to logs/flipdot.log")
	dataFlag     = flag.String("data", constant.DefaultDataFile, "Settings and queue file (empty keeps state in memory)")
	addrFlag     = flag.String("addr", constant.DefaultListenAddr, "HTTP listen address (empty disables the API)")
	uploadFlag   = flag.String("uploads", constant.DefaultUploadDir, "Directory for uploaded images")
	muteFlag     = flag.Bool("mute", false, "Disable audio output")
	headlessFlag = flag.Bool("headless", false, "Run without the terminal display")
	textFlag     = flag.String("text", "", "Queue this text when the stored queue is empty")
)

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flipdot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		screen   tcell.Screen
		renderer *render.TerminalRenderer
	)
	if !*headlessFlag {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		screen = s
		core.SetCrashReset(screen.Fini)
		defer screen.Fini()
		screen.HideCursor()
		renderer = render.NewTerminalRenderer(screen, render.DefaultPalette(), 1, 1)
	}

	cfg := app.Config{
		DataPath:   *dataFlag,
		ListenAddr: *addrFlag,
		UploadDir:  *uploadFlag,
		Mute:       *muteFlag,
	}
	if *textFlag != "" {
		cfg.Texts = []string{*textFlag}
	}
	if renderer != nil {
		cfg.Renderer = renderer
	}

	a, err := app.New(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	if renderer != nil {
		renderer.SetStatus(a.Summary() + "  [space] play/pause  [q] quit")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	core.Go(func() { done <- a.Session.Run(ctx) })

	if screen != nil {
		core.Go(func() { pollInput(screen, a, cancel) })
	}

	<-ctx.Done()
	<-done
	return nil
}

// pollInput maps keys to session commands until the screen closes or q is pressed
func pollInput(screen tcell.Screen, a *app.App, cancel context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				cancel()
				return
			}
			if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
				if _, err := a.Session.Toggle(); err != nil {
					log.Printf("[input] toggle: %v", err)
				}
			}
		}
	}
}
