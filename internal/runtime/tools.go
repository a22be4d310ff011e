package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// dispatch records the planned calls, runs the safe ones and suspends on the first sensitive
// one. It reports whether the turn is now awaiting approval.
func (e *Engine) dispatch(ctx context.Context, t *turn, ag *agent.Agent, plan domain.ToolCalls) (bool, error) {
	sess := t.sess
	calls := make([]domain.ToolCall, len(plan.Calls))
	copy(calls, plan.Calls)
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + e.newID()
		}
	}

	sess.Append(domain.Message{Role: domain.RoleAssistant, Content: plan.Text, ToolCalls: calls, Agent: ag.ID})
	if plan.Text != "" {
		t.emit(domain.EventText, plan.Text)
	}

	results := make([]*domain.ToolResult, len(calls))
	var safe []int
	var sensitive []domain.ToolCall

	for i, call := range calls {
		switch {
		case !e.registry.Allowed(ag.ID, call.Name):
			e.logger.Warn("planner requested a tool outside the active agent",
				"thread_id", sess.ThreadID, "agent", ag.ID, "tool", call.Name, "call_id", call.ID)
			results[i] = &domain.ToolResult{
				ID:      call.ID,
				IsError: true,
				Content: fmt.Sprintf("Error: %v: %s is not available to %s. Use only the provided tools.", domain.ErrToolNotAllowed, call.Name, ag.ID),
			}
		case e.registry.IsSensitive(call.Name):
			sensitive = append(sensitive, call)
		default:
			safe = append(safe, i)
		}
	}

	e.executeSafe(ctx, sess, ag.ID, calls, safe, results)

	for _, res := range results {
		if res != nil {
			sess.Append(domain.ToolMessage(ag.ID, *res))
		}
	}

	if len(sensitive) == 0 {
		return false, nil
	}
	sess.Queue = append(sess.Queue, sensitive[1:]...)
	if err := e.open(ctx, t, sensitive[0]); err != nil {
		return false, err
	}
	return true, nil
}

// executeSafe runs read-only calls concurrently. Results land in their request slot.
func (e *Engine) executeSafe(ctx context.Context, sess *domain.Session, agentID domain.AgentID, calls []domain.ToolCall, idx []int, results []*domain.ToolResult) {
	if len(idx) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(e.toolConcurrency)
	for _, i := range idx {
		g.Go(func() error {
			res := e.execute(ctx, sess, agentID, calls[i], domain.Safe)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()
}

// execute runs a single call with the session's request context.
func (e *Engine) execute(ctx context.Context, sess *domain.Session, agentID domain.AgentID, call domain.ToolCall, safety domain.Safety) domain.ToolResult {
	e.emitToolCall(ctx, sess.ThreadID, agentID, call, safety)
	e.logger.Debug("executing tool", "thread_id", sess.ThreadID, "agent", agentID, "tool", call.Name, "call_id", call.ID, "args", call.Args)

	start := time.Now()
	res := e.registry.Execute(ctx, domain.ToolRequest{Call: call, Request: sess.Context()})
	elapsed := time.Since(start)

	if res.IsError {
		e.logger.Warn("tool failed", "thread_id", sess.ThreadID, "tool", call.Name, "call_id", call.ID, "err", res.Content)
	}
	e.emitToolReturn(ctx, sess.ThreadID, agentID, call, safety, res, elapsed)
	return res
}
