package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/domain"
)

// handoff moves control to the signal's target. The signal is recorded in the history as a
// tool call answered by the new agent's entry message, so the planner sees the transfer.
func (e *Engine) handoff(ctx context.Context, t *turn, from *agent.Agent, h domain.Handoff) error {
	sess := t.sess
	if h.Signal == nil {
		return fmt.Errorf("%s returned a handoff without a signal", from.ID)
	}

	callID := h.CallID
	if callID == "" {
		callID = "call_" + e.newID()
	}
	name := domain.HandoffName(h.Signal)
	sess.Append(domain.Message{
		Role:      domain.RoleAssistant,
		Agent:     from.ID,
		ToolCalls: []domain.ToolCall{{ID: callID, Name: name, Args: signalArgs(h.Signal)}},
	})

	if !from.CanHandoff(name) {
		e.logger.Warn("planner requested a handoff outside the active agent", "thread_id", sess.ThreadID, "agent", from.ID, "handoff", name)
		sess.Append(domain.ToolMessage(from.ID, domain.ToolResult{
			ID:      callID,
			IsError: true,
			Content: fmt.Sprintf("Error: %s cannot use %s.", from.ID, name),
		}))
		return nil
	}

	to, err := e.roster.Get(h.Signal.Target())
	if err != nil {
		return err
	}

	if to.ID == domain.AgentSupervisor {
		e.discard(sess, from.ID)
		sess.Slots = make(map[string]string)
	} else {
		sess.Slots = h.Signal.Slots()
		if sess.Slots == nil {
			sess.Slots = make(map[string]string)
		}
	}

	sess.ActiveAgent = to.ID
	sess.Append(domain.ToolMessage(to.ID, domain.ToolResult{ID: callID, Content: to.EntryMessage()}))

	e.logger.Info("handoff", "thread_id", sess.ThreadID, "from", from.ID, "to", to.ID, "slots", len(sess.Slots))
	e.emitAgentEnter(ctx, sess.ThreadID, from.ID, to.ID)
	return nil
}

// discard drops the pending action and queued calls of the ceding agent, answering each of
// them in the history so the transcript stays well-formed.
func (e *Engine) discard(sess *domain.Session, agentID domain.AgentID) {
	queued := sess.Queue
	pending := e.gate.Discard(sess)
	if pending != nil {
		sess.Append(domain.ToolMessage(agentID, discardedResult(pending.Call.ID)))
	}
	for _, call := range queued {
		sess.Append(domain.ToolMessage(agentID, discardedResult(call.ID)))
	}
}

func signalArgs(sig domain.HandoffSignal) map[string]any {
	raw, err := json.Marshal(sig)
	if err != nil {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil
	}
	return args
}
