// Package app assembles the display services shared by the binaries:
// status registry, content store, audio output, HTTP API and the session
package app

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/lixenwraith/flipdot/api"
	"github.com/lixenwraith/flipdot/audio"
	"github.com/lixenwraith/flipdot/bitmap"
	"github.com/lixenwraith/flipdot/render"
	"github.com/lixenwraith/flipdot/service"
	"github.com/lixenwraith/flipdot/session"
	"github.com/lixenwraith/flipdot/status"
	"github.com/lixenwraith/flipdot/store"
)

// Config selects where state lives and what the binary exposes
type Config struct {
	DataPath   string // empty keeps state in memory
	ListenAddr string // empty disables HTTP
	UploadDir  string
	Audio      *audio.AudioConfig // nil reads the environment
	Mute       bool
	Renderer   render.FrameRenderer // nil runs headless
	Texts      []string             // queued when the stored queue is empty
	HostSample time.Duration        // host load sampling period, 0 keeps the default, <0 disables
}

// App is a fully wired display
type App struct {
	Hub      *service.Hub
	Registry *status.Registry
	Store    store.Store
	Audio    *audio.AudioService
	API      *api.APIService
	Session  *session.Session
}

// New initializes every service and builds the session; nothing runs until Start
func New(cfg Config, rng *rand.Rand) (*App, error) {
	if cfg.Audio == nil {
		cfg.Audio = audio.LoadAudioConfig()
	}

	statusSvc := status.NewService()
	storeSvc := store.NewService()
	audioSvc := audio.NewService(rng)
	apiSvc := api.NewService()

	hub := service.NewHub()
	for _, svc := range []service.Service{statusSvc, storeSvc, audioSvc, apiSvc} {
		if err := hub.Register(svc); err != nil {
			return nil, err
		}
	}

	args := map[string][]any{
		"store": {cfg.DataPath},
		"audio": {cfg.Audio, cfg.Mute},
		"api":   {cfg.ListenAddr, cfg.UploadDir},
	}
	if cfg.HostSample != 0 {
		args["status"] = []any{cfg.HostSample}
	}
	if err := hub.InitAll(args); err != nil {
		return nil, err
	}

	st := storeSvc.Store()
	if len(st.Queue()) == 0 {
		for _, text := range cfg.Texts {
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, err := st.Add(store.ContentItem{Type: bitmap.KindText, Content: text}); err != nil {
				return nil, fmt.Errorf("seed queue: %w", err)
			}
		}
	}

	reg := statusSvc.Registry()
	sess, err := session.New(session.Options{
		Settings: st.Settings(),
		Queue:    st.Queue(),
		Source:   bitmap.NewRasterizer(apiSvc.UploadDir()),
		Cue:      audioSvc.Cue(),
		Renderer: cfg.Renderer,
		Registry: reg,
		Rng:      rng,
	})
	if err != nil {
		hub.StopAll()
		return nil, fmt.Errorf("session: %w", err)
	}
	apiSvc.Mount(api.NewServer(st, sess, reg, apiSvc.UploadDir()))

	return &App{
		Hub:      hub,
		Registry: reg,
		Store:    st,
		Audio:    audioSvc,
		API:      apiSvc,
		Session:  sess,
	}, nil
}

// Start opens audio output and the HTTP listener
// Audio failure is not fatal; the cause is logged and published
func (a *App) Start() error {
	if err := a.Hub.StartAll(); err != nil {
		return err
	}
	a.Registry.Strings.Get("audio.backend").Store(a.backend())
	if err := a.Audio.Err(); err != nil {
		a.Registry.Strings.Get("audio.error").Store(err.Error())
		log.Printf("[app] running silent: %v", err)
	}
	if addr := a.API.Addr(); addr != "" {
		a.Registry.Strings.Get("api.addr").Store(addr)
	}
	return nil
}

// Stop halts services in reverse start order
func (a *App) Stop() {
	a.Hub.StopAll()
}

// Summary is a one-line description of the outputs for status bars
func (a *App) Summary() string {
	parts := []string{"audio: " + a.backend()}
	if addr := a.API.Addr(); addr != "" {
		parts = append(parts, "http: "+addr)
	}
	return strings.Join(parts, "  ")
}

func (a *App) backend() string {
	if b := a.Audio.Backend(); b != "" {
		return b
	}
	return audio.BackendNone
}
