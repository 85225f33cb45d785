package service

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

var (
	ErrDuplicateService = errors.New("service registered twice")
	ErrUnknownService   = errors.New("unknown service dependency")
	ErrDependencyCycle  = errors.New("service dependency cycle")
)

// Hub owns the application's services and drives their lifecycle
// Services come up in dependency order and go down in reverse
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	order    []string // resolved on first InitAll, nil after Register
	live     []string // initialized and not yet stopped, in bring-up order
}

// NewHub returns a hub with no services
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds svc under its name
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, ok := h.services[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateService, name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// InitAll runs Init on every service with its entry from args
// A failing Init tears down the services already initialized
func (h *Hub) InitAll(args map[string][]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.resolve()
		if err != nil {
			return err
		}
		h.order = order
	}

	h.live = h.live[:0]
	for _, name := range h.order {
		if err := h.services[name].Init(args[name]...); err != nil {
			h.teardown()
			return fmt.Errorf("init %s: %w", name, err)
		}
		h.live = append(h.live, name)
	}
	return nil
}

// StartAll runs Start in dependency order
// A failing Start tears down every initialized service
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range h.live {
		if err := h.services[name].Start(); err != nil {
			h.teardown()
			return fmt.Errorf("start %s: %w", name, err)
		}
	}
	return nil
}

// StopAll stops every live service, newest first
// Safe to call after a failed or skipped StartAll
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardown()
}

// teardown stops live services in reverse; caller holds mu
func (h *Hub) teardown() {
	for _, name := range slices.Backward(h.live) {
		if err := h.services[name].Stop(); err != nil {
			log.Printf("[service] %s stop: %v", name, err)
		}
	}
	h.live = nil
}

// resolve orders services so each follows its dependencies
// Depth-first over sorted names keeps the result stable across runs
func (h *Hub) resolve() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(h.services))
	order := make([]string, 0, len(h.services))

	var visit func(name string) error
	visit = func(name string) error {
		switch mark[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w at %s", ErrDependencyCycle, name)
		}
		mark[name] = visiting

		deps := slices.Clone(h.services[name].Dependencies())
		slices.Sort(deps)
		for _, dep := range deps {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("%w: %s needs %s", ErrUnknownService, name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		mark[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range h.sortedNames() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (h *Hub) sortedNames() []string {
	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Names lists services in bring-up order once resolved, by name before that
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order != nil {
		return slices.Clone(h.order)
	}
	return h.sortedNames()
}
