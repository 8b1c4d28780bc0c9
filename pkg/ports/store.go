package ports

import (
	"context"

	"github.com/aretw0/pushdown/pkg/domain"
)

// SessionStore defines the interface for persisting stepwise runs.
// This enables "Stop & Resume" runs across requests and processes.
type SessionStore interface {
	// Save persists the session under session.ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
