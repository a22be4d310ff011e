package ports

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
)

// DialogEngine is the interface used by adapters (HTTP, websocket, MCP, CLI) that address
// conversations by thread ID.
type DialogEngine interface {
	// Send delivers one inbound event to a thread, creating it on first contact,
	// and returns the updated session with the events to show the user.
	Send(ctx context.Context, threadID string, in domain.Inbound) (*domain.Session, []domain.Event, error)

	// Resume re-surfaces whatever the thread is waiting on (an approval prompt) without
	// advancing it. It returns no events for an idle thread.
	Resume(ctx context.Context, threadID string) (*domain.Session, []domain.Event, error)

	// Signal triggers a global event on the thread, such as "escalate".
	Signal(ctx context.Context, threadID string, signal string) (*domain.Session, error)

	// Session returns the stored snapshot of a thread.
	Session(ctx context.Context, threadID string) (*domain.Session, error)

	// Sessions lists every known thread ID.
	Sessions(ctx context.Context) ([]string, error)

	// Delete tears a thread down.
	Delete(ctx context.Context, threadID string) error
}
