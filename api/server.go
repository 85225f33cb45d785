// Package api serves the display's control surface over HTTP: settings,
// the content queue, uploads, playback control and frame inspection
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/flipdot/audio"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
	"github.com/lixenwraith/flipdot/engine"
	"github.com/lixenwraith/flipdot/render"
	"github.com/lixenwraith/flipdot/status"
	"github.com/lixenwraith/flipdot/store"
)

// Controller is the running display; *session.Session satisfies it
type Controller interface {
	Play() error
	Pause() error
	Toggle() (bool, error)
	IsPlaying() bool
	ApplySettings(s store.Settings) error
	SetQueue(q []store.ContentItem) error
	Frame() engine.Frame
}

// Server routes API requests to the store and the controller
// Every store mutation is pushed to the controller before responding
type Server struct {
	store     store.Store
	ctl       Controller
	registry  *status.Registry
	uploadDir string
	mux       *http.ServeMux

	requests *atomic.Int64
}

// NewServer builds the route table
func NewServer(st store.Store, ctl Controller, reg *status.Registry, uploadDir string) *Server {
	if reg == nil {
		reg = status.NewRegistry()
	}
	if uploadDir == "" {
		uploadDir = constant.DefaultUploadDir
	}
	s := &Server{
		store:     st,
		ctl:       ctl,
		registry:  reg,
		uploadDir: uploadDir,
		mux:       http.NewServeMux(),
		requests:  reg.Ints.Get("api.requests"),
	}

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("POST /api/settings", s.handleUpdateSettings)

	s.mux.HandleFunc("GET /api/content", s.handleListContent)
	s.mux.HandleFunc("POST /api/content/text", s.handleAddText)
	s.mux.HandleFunc("POST /api/upload", s.handleUpload)
	s.mux.HandleFunc("DELETE /api/content/{id}", s.handleDeleteContent)
	s.mux.HandleFunc("DELETE /api/content", s.handleClearContent)
	s.mux.HandleFunc("PUT /api/content/reorder", s.handleReorder)

	s.mux.HandleFunc("POST /api/playback/{action}", s.handlePlayback)
	s.mux.HandleFunc("GET /api/frame", s.handleFrame)
	s.mux.HandleFunc("GET /api/snapshot.webp", s.handleSnapshot)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// writeJSON encodes v with status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode response: %v", err)
	}
}

// writeError maps err to a status code and writes {"error": msg}
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrBadSettings),
		errors.Is(err, store.ErrBadContent),
		errors.Is(err, engine.ErrOutOfRange),
		errors.Is(err, engine.ErrUnknownDirection),
		errors.Is(err, core.ErrBadColor),
		errors.Is(err, render.ErrUnknownShape),
		errors.Is(err, audio.ErrUnknownSoundType):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		log.Printf("[api] %v", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// syncQueue pushes the stored queue to the controller
func (s *Server) syncQueue() error {
	return s.ctl.SetQueue(s.store.Queue())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Snapshot())
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var err error
	switch r.PathValue("action") {
	case "play":
		err = s.ctl.Play()
	case "pause":
		err = s.ctl.Pause()
	case "toggle":
		_, err = s.ctl.Toggle()
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"playing": s.ctl.IsPlaying()})
}

// parseCellPx reads the optional ?cell= pixel size of a snapshot
func parseCellPx(r *http.Request) (int, error) {
	v := r.URL.Query().Get("cell")
	if v == "" {
		return constant.DefaultSnapshotCellPx, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < constant.MinSnapshotCellPx || n > constant.MaxSnapshotCellPx {
		return 0, badRequest("cell must be %d..%d", constant.MinSnapshotCellPx, constant.MaxSnapshotCellPx)
	}
	return n, nil
}
