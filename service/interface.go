package service

// Service is a long-lived subsystem owned by the Hub: the store, audio
// output, HTTP listener and metrics registry
//
// The hub calls Init on every service in dependency order, then Start on
// each, and Stop in reverse order on shutdown or failed start
type Service interface {
	// Name is the unique hub key
	Name() string

	// Dependencies lists services that must be initialized first
	Dependencies() []string

	// Init applies service-specific args (a data path, an audio config, a listen address)
	Init(args ...any) error

	// Start launches background work
	Start() error

	// Stop releases resources; repeated calls are no-ops
	Stop() error
}
