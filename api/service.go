package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
)

// shutdownTimeout bounds graceful HTTP shutdown
const shutdownTimeout = 2 * time.Second

// APIService runs the HTTP listener as a Service
// Mount must be called between Init and Start
type APIService struct {
	addr      string
	uploadDir string

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// NewService creates an unconfigured API service
func NewService() *APIService {
	return &APIService{}
}

// Name implements Service
func (s *APIService) Name() string {
	return "api"
}

// Dependencies implements Service
func (s *APIService) Dependencies() []string {
	return []string{"status", "store"}
}

// Init implements Service
// args[0]: string listen address (empty disables the listener)
// args[1]: string upload directory
func (s *APIService) Init(args ...any) error {
	s.addr = constant.DefaultListenAddr
	s.uploadDir = constant.DefaultUploadDir
	if len(args) > 0 {
		addr, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("api: expected address string, got %T", args[0])
		}
		s.addr = addr
	}
	if len(args) > 1 {
		dir, ok := args[1].(string)
		if !ok {
			return fmt.Errorf("api: expected upload dir string, got %T", args[1])
		}
		s.uploadDir = dir
	}
	return nil
}

// UploadDir returns the configured upload directory
func (s *APIService) UploadDir() string {
	return s.uploadDir
}

// Mount installs the handler served on Start
func (s *APIService) Mount(h http.Handler) {
	s.handler = h
}

// Addr returns the bound address, empty before Start
func (s *APIService) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start implements Service; binding errors are returned synchronously
func (s *APIService) Start() error {
	if s.addr == "" {
		return nil
	}
	if s.handler == nil {
		return fmt.Errorf("api: no handler mounted")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("api: listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := s.server
	core.Go(func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[api] serve: %v", err)
		}
	})
	log.Printf("[api] listening on %s", ln.Addr())
	return nil
}

// Stop implements Service
func (s *APIService) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}
