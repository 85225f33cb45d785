package status

import (
	"sync"
	"time"

	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/core"
)

// StatusService owns the Registry and the host load sampler
type StatusService struct {
	registry *Registry
	interval time.Duration
	reader   hostReader

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewService creates a status service with an empty registry
func NewService() *StatusService {
	return &StatusService{
		registry: NewRegistry(),
		interval: constant.HostSampleInterval,
		reader:   systemReader(),
	}
}

// Name implements Service
func (s *StatusService) Name() string {
	return "status"
}

// Dependencies implements Service
func (s *StatusService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: time.Duration - host sample interval, zero or negative disables sampling
func (s *StatusService) Init(args ...any) error {
	if len(args) > 0 {
		if d, ok := args[0].(time.Duration); ok {
			s.interval = d
		}
	}
	return nil
}

// Start implements Service
func (s *StatusService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || s.interval <= 0 {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	h := newHostSampler(s.registry, s.reader)
	stop, done, interval := s.stop, s.done, s.interval
	core.Go(func() {
		defer close(done)
		h.run(interval, stop)
	})
	return nil
}

// Stop implements Service
func (s *StatusService) Stop() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// Registry returns the underlying metrics registry
func (s *StatusService) Registry() *Registry {
	return s.registry
}
