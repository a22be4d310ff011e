package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/concierge/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
// Tool arguments are logged at Debug only.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAgentEnter: func(ctx context.Context, e *domain.AgentEvent) {
			logger.InfoContext(ctx, "agent_enter", "thread_id", e.ThreadID, "agent", e.Agent, "from", e.From)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.DebugContext(ctx, "tool_call",
				"thread_id", e.ThreadID,
				"agent", e.Agent,
				"tool", e.ToolName,
				"call_id", e.CallID,
				"args", e.Input)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "tool_return",
				"thread_id", e.ThreadID,
				"agent", e.Agent,
				"tool", e.ToolName,
				"call_id", e.CallID,
				"safety", e.Safety,
				"is_error", e.IsError,
				"duration", e.Duration)
		},
		OnApprovalOpened: func(ctx context.Context, e *domain.ApprovalEvent) {
			logger.InfoContext(ctx, "approval_opened", "thread_id", e.ThreadID, "agent", e.Agent, "tool", e.ToolName, "handle", e.Handle)
		},
		OnApprovalResolved: func(ctx context.Context, e *domain.ApprovalEvent) {
			logger.InfoContext(ctx, "approval_resolved",
				"thread_id", e.ThreadID,
				"agent", e.Agent,
				"tool", e.ToolName,
				"handle", e.Handle,
				"approved", e.Approved)
		},
	}
}
