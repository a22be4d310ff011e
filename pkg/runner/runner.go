package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/google/uuid"
)

// EscalateCommand returns the conversation to the Supervisor from the terminal.
const EscalateCommand = "/escalate"

// Runner drives one thread of a DialogEngine from an IOHandler: it reads a message,
// sends it as one turn and prints the resulting events until the input ends.
type Runner struct {
	engine  ports.DialogEngine
	handler IOHandler
	logger  *slog.Logger

	threadID   string
	locale     domain.Locale
	credential string
}

// NewRunner creates a Runner reading from Stdin and writing to Stdout by default.
func NewRunner(engine ports.DialogEngine, opts ...Option) *Runner {
	r := &Runner{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.threadID == "" {
		r.threadID = uuid.NewString()
	}
	return r
}

// ThreadID returns the thread the runner talks to.
func (r *Runner) ThreadID() string {
	return r.threadID
}

// Run executes the chat loop until the input ends, the user types exit or ctx is cancelled.
// A failed turn is reported to the user and the loop goes on.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.resume(ctx); err != nil {
		return err
	}

	for {
		in, err := r.handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		text := strings.TrimSpace(in.Message)
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case EscalateCommand:
			r.escalate(ctx)
			continue
		}

		if err := r.turn(ctx, r.withDefaults(in)); err != nil {
			return err
		}
	}
}

// resume re-surfaces a pending approval when attaching to an existing thread.
func (r *Runner) resume(ctx context.Context) error {
	_, events, err := r.engine.Resume(ctx, r.threadID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return r.handler.SystemOutput(ctx, "New conversation "+r.threadID)
	case err != nil:
		return fmt.Errorf("failed to resume thread %s: %w", r.threadID, err)
	}
	if err := r.handler.SystemOutput(ctx, "Resuming conversation "+r.threadID); err != nil {
		return err
	}
	return r.handler.Output(ctx, events)
}

func (r *Runner) turn(ctx context.Context, in domain.Inbound) error {
	_, events, err := r.engine.Send(ctx, r.threadID, in)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("turn failed", "thread_id", r.threadID, "err", err)
		events = []domain.Event{{Type: domain.EventError, Content: err.Error()}}
	}
	if err := r.handler.Output(ctx, events); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

func (r *Runner) escalate(ctx context.Context) {
	if _, err := r.engine.Signal(ctx, r.threadID, "escalate"); err != nil {
		r.logger.Debug("escalate failed", "thread_id", r.threadID, "err", err)
		_ = r.handler.SystemOutput(ctx, "Nothing to escalate: "+err.Error())
		return
	}
	_ = r.handler.SystemOutput(ctx, "Back with the main assistant.")
}

func (r *Runner) withDefaults(in domain.Inbound) domain.Inbound {
	if in.Language == "" {
		in.Language = r.locale.Language
	}
	if in.Currency == "" {
		in.Currency = r.locale.Currency
	}
	// A token sent mid-conversation replaces the configured one for later lines.
	if in.Credential == "" {
		in.Credential = r.credential
	} else {
		r.credential = in.Credential
	}
	return in
}
