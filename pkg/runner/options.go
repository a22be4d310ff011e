package runner

import (
	"log/slog"

	"github.com/aretw0/concierge/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.handler = handler
	}
}

// WithThreadID attaches the runner to an existing thread. A generated ID is used otherwise.
func WithThreadID(id string) Option {
	return func(r *Runner) {
		r.threadID = id
	}
}

// WithLocale sets the language and currency sent with messages that carry none.
func WithLocale(l domain.Locale) Option {
	return func(r *Runner) {
		r.locale = l
	}
}

// WithCredential sets the travel API token sent with every message that carries none.
func WithCredential(token string) Option {
	return func(r *Runner) {
		r.credential = token
	}
}
