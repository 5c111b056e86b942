package services

import (
	"context"

	"github.com/glitchtale/engine/pkg/save"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence. The autosave
// blob is a save document keyed by session id.
type Storage interface {
	HealthChecker
	Closer

	// SaveSession stores the session's save document under its id.
	SaveSession(ctx context.Context, id string, doc *save.Document) error

	// LoadSession retrieves a session by id.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id string) (*save.Document, error)

	// DeleteSession removes a session by id.
	DeleteSession(ctx context.Context, id string) error
}
