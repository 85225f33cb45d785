package store

import "errors"

var (
	// ErrBadSettings is returned for a settings document that does not decode
	ErrBadSettings = errors.New("malformed settings")

	// ErrBadContent is returned for queue items with an unknown type or no content
	ErrBadContent = errors.New("invalid content item")

	// ErrNotFound is returned when a queue id does not exist
	ErrNotFound = errors.New("content item not found")
)
