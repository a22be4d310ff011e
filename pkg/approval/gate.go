package approval

import (
	"fmt"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/google/uuid"
)

// Outcome is the user's decision on a pending action.
type Outcome struct {
	Approved bool
	// Reason is the user's verbatim text when the action is denied.
	Reason string
}

// Confirmed approves the pending action.
func Confirmed() Outcome { return Outcome{Approved: true} }

// Denied rejects the pending action with the user's reasoning.
func Denied(reason string) Outcome { return Outcome{Reason: reason} }

// Gate opens and resolves pending actions on a session.
type Gate struct {
	now       func() time.Time
	newHandle func() string
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithHandleGenerator overrides how approval handles are minted.
func WithHandleGenerator(fn func() string) Option {
	return func(g *Gate) { g.newHandle = fn }
}

// NewGate creates a gate minting uuid handles.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		now:       func() time.Time { return time.Now().UTC() },
		newHandle: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open suspends call on the session and returns the handle that must resolve it.
// It fails with domain.ErrApprovalPending if another action is already suspended.
func (g *Gate) Open(sess *domain.Session, call domain.ToolCall) (string, error) {
	if sess.Pending != nil || sess.Status == domain.StatusAwaitingApproval {
		return "", domain.ErrApprovalPending
	}

	handle := g.newHandle()
	sess.Pending = &domain.PendingAction{
		Handle:   handle,
		Call:     call,
		Agent:    sess.ActiveAgent,
		RaisedAt: len(sess.Messages),
		OpenedAt: g.now(),
	}
	sess.Status = domain.StatusAwaitingApproval
	return handle, nil
}

// Resolve clears the pending action identified by handle and returns it so the caller can
// execute it (when approved) or record the denial. A second resolution of the same action
// fails with domain.ErrNoPendingAction and has no effect.
func (g *Gate) Resolve(sess *domain.Session, handle string, outcome Outcome) (*domain.PendingAction, error) {
	pending := sess.CurrentPendingAction()
	if pending == nil {
		return nil, domain.ErrNoPendingAction
	}
	if pending.Handle != handle {
		return nil, fmt.Errorf("%w: got %q", domain.ErrHandleMismatch, handle)
	}

	sess.Pending = nil
	sess.Status = domain.StatusIdle
	return pending, nil
}

// Discard drops the pending action and every queued sensitive call without resolving them.
func (g *Gate) Discard(sess *domain.Session) *domain.PendingAction {
	pending := sess.Pending
	sess.Pending = nil
	sess.Queue = nil
	sess.Status = domain.StatusIdle
	return pending
}

// DenialResult is the synthetic tool result recorded when the user rejects an action.
func DenialResult(callID, reason string) domain.ToolResult {
	return domain.ToolResult{
		ID:       callID,
		IsDenied: true,
		Content: fmt.Sprintf(
			"API call denied by user. Reasoning: '%s'. Continue assisting, accounting for the user's input.",
			reason,
		),
	}
}
