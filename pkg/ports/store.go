package ports

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
)

// SessionStore defines the interface for persisting conversation state.
// A durable implementation lets a suspended approval survive process restarts.
type SessionStore interface {
	// Save persists the session under the given thread ID.
	Save(ctx context.Context, threadID string, sess *domain.Session) error

	// Load retrieves the session for a given thread ID.
	// Returns domain.ErrSessionNotFound if the thread does not exist.
	Load(ctx context.Context, threadID string) (*domain.Session, error)

	// Delete removes the session for a given thread ID.
	Delete(ctx context.Context, threadID string) error

	// List returns the IDs of every stored thread.
	List(ctx context.Context) ([]string, error)
}
