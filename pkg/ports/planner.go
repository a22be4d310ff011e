package ports

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
)

// PlanRequest is everything the planning capability may look at for one step.
type PlanRequest struct {
	Agent        domain.AgentID
	Instructions string
	Messages     []domain.Message

	// Tools is the complete set the agent may call, safe and sensitive.
	Tools []domain.ToolDescriptor

	// Handoffs are the signals the agent may emit instead of replying.
	Handoffs []domain.ToolDescriptor
}

// Planner is the opaque language-model capability: given a conversation and the callable
// tools, it produces a reply, tool calls, or a handoff.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (domain.PlanResult, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, req PlanRequest) (domain.PlanResult, error)

func (f PlannerFunc) Plan(ctx context.Context, req PlanRequest) (domain.PlanResult, error) {
	return f(ctx, req)
}

// ToolExecutor runs a single tool call. Failures are reported inside the result,
// never as a Go error.
type ToolExecutor interface {
	Execute(ctx context.Context, req domain.ToolRequest) domain.ToolResult
}
