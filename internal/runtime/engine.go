package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/approval"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/registry"
	"github.com/google/uuid"
)

// DefaultMaxSteps bounds the planning steps of a single turn.
const DefaultMaxSteps = 25

// DefaultToolConcurrency bounds the safe calls running at once.
const DefaultToolConcurrency = 4

// Engine is the core dialog router.
type Engine struct {
	roster          *agent.Roster
	registry        *registry.Registry
	gate            *approval.Gate
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	maxSteps        int
	toolConcurrency int
	newID           func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithToolConcurrency overrides DefaultToolConcurrency.
func WithToolConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.toolConcurrency = n
		}
	}
}

// WithGate replaces the approval gate (e.g. with deterministic handles in tests).
func WithGate(g *approval.Gate) EngineOption {
	return func(e *Engine) {
		e.gate = g
	}
}

// WithIDGenerator sets how thread and call IDs are minted when missing.
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		e.newID = fn
	}
}

// NewEngine creates a new engine over a roster and the registry its agents were built from.
func NewEngine(roster *agent.Roster, reg *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		roster:          roster,
		registry:        reg,
		gate:            approval.NewGate(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSteps:        DefaultMaxSteps,
		toolConcurrency: DefaultToolConcurrency,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates a fresh session with the Supervisor in control.
// An empty threadID gets a generated one.
func (e *Engine) Start(ctx context.Context, threadID string, locale domain.Locale) *domain.Session {
	if threadID == "" {
		threadID = e.newID()
	}
	sess := domain.NewSession(threadID, locale)
	e.logger.Info("session started", "thread_id", threadID, "language", sess.Locale.Language)
	e.emitAgentEnter(ctx, sess.ThreadID, "", sess.ActiveAgent)
	return sess
}

// Render returns the events a reconnecting user must see for the session's current state
// without advancing it. Only a suspended approval produces output.
func (e *Engine) Render(sess *domain.Session) []domain.Event {
	pending := sess.CurrentPendingAction()
	if pending == nil {
		return nil
	}
	return []domain.Event{approvalEvent(sess, pending.Call)}
}

func approvalEvent(sess *domain.Session, call domain.ToolCall) domain.Event {
	return domain.Event{
		Type:    domain.EventApprovalNeeded,
		Content: approval.Prompt(sess.Locale.Language, call),
	}
}

func (e *Engine) emitAgentEnter(ctx context.Context, threadID string, from, to domain.AgentID) {
	if e.hooks.OnAgentEnter == nil {
		return
	}
	e.hooks.OnAgentEnter(ctx, &domain.AgentEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.HookAgentEnter, ThreadID: threadID},
		Agent:     to,
		From:      from,
	})
}

func (e *Engine) emitToolCall(ctx context.Context, threadID string, agentID domain.AgentID, call domain.ToolCall, safety domain.Safety) {
	if e.hooks.OnToolCall == nil {
		return
	}
	e.hooks.OnToolCall(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.HookToolCall, ThreadID: threadID},
		Agent:     agentID,
		ToolName:  call.Name,
		CallID:    call.ID,
		Safety:    safety,
		Input:     call.Args,
	})
}

func (e *Engine) emitToolReturn(ctx context.Context, threadID string, agentID domain.AgentID, call domain.ToolCall, safety domain.Safety, res domain.ToolResult, d time.Duration) {
	if e.hooks.OnToolReturn == nil {
		return
	}
	e.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.HookToolReturn, ThreadID: threadID},
		Agent:     agentID,
		ToolName:  call.Name,
		CallID:    call.ID,
		Safety:    safety,
		Output:    res.Content,
		IsError:   res.IsError,
		Duration:  d,
	})
}

func (e *Engine) emitApproval(ctx context.Context, hook func(context.Context, *domain.ApprovalEvent), typ domain.HookType, sess *domain.Session, p *domain.PendingAction, out *approval.Outcome) {
	if hook == nil {
		return
	}
	evt := &domain.ApprovalEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, ThreadID: sess.ThreadID},
		Agent:     p.Agent,
		Handle:    p.Handle,
		ToolName:  p.Call.Name,
	}
	if out != nil {
		evt.Approved = out.Approved
		evt.Reason = out.Reason
	}
	hook(ctx, evt)
}
