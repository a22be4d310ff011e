package runner

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the events of one turn to the user.
	Output(ctx context.Context, events []domain.Event) error

	// Input reads the next user event. It returns io.EOF when the user is done.
	Input(ctx context.Context) (domain.Inbound, error)

	// SystemOutput presents a meta-message (thread id, signal outcome) distinct from the
	// assistant's own replies.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
