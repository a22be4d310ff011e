package domain

import (
	"context"
	"time"
)

// EventType defines the category of an outbound event.
type EventType string

const (
	EventText           EventType = "text"
	EventApprovalNeeded EventType = "approval_needed"
	EventError          EventType = "error"
)

// Event is an outbound notification delivered to the user.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content"`
}

// HookType defines the category of a lifecycle notification.
type HookType string

const (
	HookAgentEnter       HookType = "agent_enter"
	HookToolCall         HookType = "tool_call"
	HookToolReturn       HookType = "tool_return"
	HookApprovalOpened   HookType = "approval_opened"
	HookApprovalResolved HookType = "approval_resolved"
)

// EventBase contains common fields for all lifecycle events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      HookType  `json:"type"`
	ThreadID  string    `json:"thread_id"`
}

// AgentEvent represents control moving to an agent.
type AgentEvent struct {
	EventBase
	Agent AgentID `json:"agent"`
	From  AgentID `json:"from,omitempty"`
}

// ToolEvent represents a tool execution.
type ToolEvent struct {
	EventBase
	Agent    AgentID       `json:"agent"`
	ToolName string        `json:"tool_name"`
	CallID   string        `json:"call_id"`
	Safety   Safety        `json:"safety"`
	Input    any           `json:"input,omitempty"`
	Output   any           `json:"output,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ApprovalEvent represents the gate opening or resolving.
type ApprovalEvent struct {
	EventBase
	Agent    AgentID `json:"agent"`
	Handle   string  `json:"handle"`
	ToolName string  `json:"tool_name"`
	Approved bool    `json:"approved,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAgentEnter       func(context.Context, *AgentEvent)
	OnToolCall         func(context.Context, *ToolEvent)
	OnToolReturn       func(context.Context, *ToolEvent)
	OnApprovalOpened   func(context.Context, *ApprovalEvent)
	OnApprovalResolved func(context.Context, *ApprovalEvent)
}

// Merge chains two sets of hooks, calling h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAgentEnter:       chain(h.OnAgentEnter, other.OnAgentEnter),
		OnToolCall:         chain(h.OnToolCall, other.OnToolCall),
		OnToolReturn:       chain(h.OnToolReturn, other.OnToolReturn),
		OnApprovalOpened:   chain(h.OnApprovalOpened, other.OnApprovalOpened),
		OnApprovalResolved: chain(h.OnApprovalResolved, other.OnApprovalResolved),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
