package concierge

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/concierge/internal/runtime"
	"github.com/aretw0/concierge/pkg/adapters/memory"
	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/registry"
	"github.com/aretw0/concierge/pkg/session"
	"github.com/google/uuid"
)

// Engine is the high-level entry point of the booking assistant.
// It addresses conversations by thread ID, serialises turns per thread and persists every
// outcome through the configured SessionStore.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	registry *registry.Registry
	roster   *agent.Roster

	store       ports.SessionStore
	locker      ports.DistributedLocker
	prompts     ports.PromptLoader
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	rosterOpts  []agent.Option
	locale      domain.Locale
}

var _ ports.DialogEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets where sessions are persisted (default: in memory).
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker adds a distributed lock around every turn, for multi-instance deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithRegistry supplies the tool catalogue. It is frozen by New.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithPrompts overrides agent instructions with the documents of a PromptLoader.
func WithPrompts(loader ports.PromptLoader) Option {
	return func(e *Engine) {
		e.prompts = loader
	}
}

// WithInstructions overrides one agent's instruction template.
func WithInstructions(id domain.AgentID, text string) Option {
	return func(e *Engine) {
		e.rosterOpts = append(e.rosterOpts, agent.WithInstructions(id, text))
	}
}

// WithMaxSteps bounds the planning steps of a single turn.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxSteps(n))
	}
}

// WithToolConcurrency bounds how many safe calls of one plan run at once.
func WithToolConcurrency(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithToolConcurrency(n))
	}
}

// WithDefaultLocale sets the locale of threads whose first message carries none.
func WithDefaultLocale(l domain.Locale) Option {
	return func(e *Engine) {
		e.locale = domain.DefaultLocale.Merge(l)
	}
}

// New initializes an Engine around a planning capability.
func New(ctx context.Context, planner ports.Planner, opts ...Option) (*Engine, error) {
	if planner == nil {
		return nil, fmt.Errorf("a planner is required")
	}

	eng := &Engine{locale: domain.DefaultLocale}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}
	eng.registry.Freeze()

	rosterOpts := eng.rosterOpts
	if eng.prompts != nil {
		loaded, err := agent.LoadInstructions(ctx, eng.prompts)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
		rosterOpts = append(rosterOpts, loaded...)
	}
	roster, err := agent.NewRoster(eng.registry, planner, rosterOpts...)
	if err != nil {
		return nil, err
	}
	eng.roster = roster

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	eng.runtime = runtime.NewEngine(roster, eng.registry, append(runtimeOpts, eng.runtimeOpts...)...)

	return eng, nil
}

// Start returns the thread, creating it with the given locale when it does not exist.
// An empty threadID gets a generated one.
func (e *Engine) Start(ctx context.Context, threadID string, locale domain.Locale) (*domain.Session, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	return e.sessions.LoadOrStart(ctx, threadID, e.starter(ctx, threadID, locale))
}

func (e *Engine) starter(ctx context.Context, threadID string, locale domain.Locale) func() *domain.Session {
	return func() *domain.Session {
		return e.runtime.Start(ctx, threadID, e.locale.Merge(locale))
	}
}

// Send processes one inbound event on a thread. The returned session is the persisted one.
// On failure the thread keeps its last consistent state and the error is returned.
// Tools run with the credential of this event only; the engine keeps none between events.
func (e *Engine) Send(ctx context.Context, threadID string, in domain.Inbound) (*domain.Session, []domain.Event, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}
	var (
		result *domain.Session
		events []domain.Event
	)
	err := e.sessions.Update(ctx, threadID, e.starter(ctx, threadID, in.Locale()),
		func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
			next, evts, err := e.runtime.Navigate(ctx, sess, in)
			result, events = next, evts
			return next, err
		})
	if err != nil {
		e.logger.Warn("turn failed", "thread_id", threadID, "err", err)
		return result, nil, err
	}
	return result, events, nil
}

// Resume re-surfaces a suspended approval prompt for a reconnecting client.
func (e *Engine) Resume(ctx context.Context, threadID string) (*domain.Session, []domain.Event, error) {
	sess, err := e.sessions.Load(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	return sess, e.runtime.Render(sess), nil
}

// Signal triggers a global event on the thread.
func (e *Engine) Signal(ctx context.Context, threadID string, name string) (*domain.Session, error) {
	var result *domain.Session
	err := e.sessions.Update(ctx, threadID, e.starter(ctx, threadID, domain.Locale{}),
		func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
			next, err := e.runtime.Signal(ctx, sess, name)
			result = next
			return next, err
		})
	return result, err
}

// Session returns the stored snapshot of a thread.
func (e *Engine) Session(ctx context.Context, threadID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, threadID)
}

// Sessions lists every known thread.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Delete removes a thread.
func (e *Engine) Delete(ctx context.Context, threadID string) error {
	return e.sessions.Delete(ctx, threadID)
}

// Registry returns the frozen tool catalogue.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Roster returns the agents.
func (e *Engine) Roster() *agent.Roster {
	return e.roster
}

// SignalEscalate is the global signal that returns a thread to the Supervisor.
const SignalEscalate = runtime.SignalEscalate
