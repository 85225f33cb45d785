package store

import "fmt"

// StoreService wraps a Store as a Service
type StoreService struct {
	store Store
}

// NewService creates an uninitialized store service
func NewService() *StoreService {
	return &StoreService{}
}

// Name implements Service
func (s *StoreService) Name() string {
	return "store"
}

// Dependencies implements Service
func (s *StoreService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: string data file path; empty selects an in-memory store
func (s *StoreService) Init(args ...any) error {
	var path string
	if len(args) > 0 {
		p, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("store: expected path string, got %T", args[0])
		}
		path = p
	}

	if path == "" {
		s.store = NewMemoryStore()
		return nil
	}
	fsr, err := OpenFileStore(path)
	if err != nil {
		return err
	}
	s.store = fsr
	return nil
}

// Start implements Service
func (s *StoreService) Start() error {
	return nil
}

// Stop implements Service
func (s *StoreService) Stop() error {
	return nil
}

// Store returns the underlying store, nil before Init
func (s *StoreService) Store() Store {
	return s.store
}
