package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/concierge/pkg/approval"
	"github.com/aretw0/concierge/pkg/domain"
)

// turn accumulates the outcome of one Navigate call.
type turn struct {
	sess   *domain.Session
	events []domain.Event
	steps  int

	// checkpoint is the last state that must not be lost: it is set after every
	// sensitive tool execution.
	checkpoint *domain.Session
}

func (t *turn) emit(typ domain.EventType, content string) {
	t.events = append(t.events, domain.Event{Type: typ, Content: content})
}

// Navigate processes one inbound user event and returns the next session with the events to
// deliver. The input session is never mutated.
//
// From Idle the message is appended to the history and the active agent plans until it
// replies or a sensitive call suspends the turn. From AwaitingApproval the message resolves
// the pending action: a localized "yes" executes it, anything else denies it with the text
// as reasoning.
//
// On error the returned session is the last consistent checkpoint. It is nil when nothing
// irreversible happened during the turn, in which case the caller keeps the input session.
func (e *Engine) Navigate(ctx context.Context, current *domain.Session, in domain.Inbound) (*domain.Session, []domain.Event, error) {
	sess := current.Clone()
	sess.Locale = sess.Locale.Merge(in.Locale())
	if in.Credential != "" {
		sess.Credential = in.Credential
	}
	if !sess.ActiveAgent.Valid() {
		return nil, nil, fmt.Errorf("%w: session %s has active agent %q", domain.ErrUnknownAgent, sess.ThreadID, sess.ActiveAgent)
	}

	t := &turn{sess: sess}
	logger := e.logger.With("thread_id", sess.ThreadID)

	if pending := sess.CurrentPendingAction(); pending != nil {
		outcome := approval.Classify(in.Message, sess.Locale.Language)
		logger.Info("resolving approval", "tool", pending.Call.Name, "call_id", pending.Call.ID, "approved", outcome.Approved)
		if err := e.resolve(ctx, t, pending, outcome); err != nil {
			return t.checkpoint, nil, err
		}
		if sess.Status == domain.StatusAwaitingApproval {
			return sess, t.events, nil
		}
	} else {
		sess.Append(domain.UserMessage(in.Message))
	}

	if err := e.run(ctx, t); err != nil {
		logger.Warn("turn failed", "agent", sess.ActiveAgent, "steps", t.steps, "err", err)
		return t.checkpoint, nil, err
	}
	return sess, t.events, nil
}

// run is the planning loop. It returns when the active agent replies or the gate suspends.
func (e *Engine) run(ctx context.Context, t *turn) error {
	sess := t.sess
	for {
		if t.steps >= e.maxSteps {
			return fmt.Errorf("%w (%d)", domain.ErrStepLimit, e.maxSteps)
		}
		t.steps++

		ag, err := e.roster.Get(sess.ActiveAgent)
		if err != nil {
			return err
		}

		res, err := ag.Plan(ctx, sess)
		if err != nil {
			return err
		}

		switch r := res.(type) {
		case domain.Reply:
			sess.Append(domain.AssistantMessage(ag.ID, r.Text))
			if r.Text != "" {
				t.emit(domain.EventText, r.Text)
			}
			return nil

		case domain.Handoff:
			if err := e.handoff(ctx, t, ag, r); err != nil {
				return err
			}

		case domain.ToolCalls:
			if len(r.Calls) == 0 {
				sess.Append(domain.AssistantMessage(ag.ID, r.Text))
				if r.Text != "" {
					t.emit(domain.EventText, r.Text)
				}
				return nil
			}
			suspended, err := e.dispatch(ctx, t, ag, r)
			if err != nil {
				return err
			}
			if suspended {
				return nil
			}

		default:
			return fmt.Errorf("%s returned unsupported plan result %T", ag.ID, res)
		}
	}
}

// resolve applies the user's decision to the pending action and, if more sensitive calls
// from the same plan are queued, opens the gate for the next one.
func (e *Engine) resolve(ctx context.Context, t *turn, pending *domain.PendingAction, outcome approval.Outcome) error {
	sess := t.sess
	action, err := e.gate.Resolve(sess, pending.Handle, outcome)
	if err != nil {
		return err
	}
	e.emitApproval(ctx, e.hooks.OnApprovalResolved, domain.HookApprovalResolved, sess, action, &outcome)

	if !outcome.Approved {
		sess.Append(domain.ToolMessage(action.Agent, approval.DenialResult(action.Call.ID, outcome.Reason)))
		// The remaining calls were planned before the user objected; let the agent re-plan them.
		for _, call := range sess.Queue {
			sess.Append(domain.ToolMessage(action.Agent, skippedResult(call.ID)))
		}
		sess.Queue = nil
		return nil
	}

	res := e.execute(ctx, sess, action.Agent, action.Call, domain.Sensitive)
	sess.Append(domain.ToolMessage(action.Agent, res))
	t.checkpoint = sess.Clone()

	if len(sess.Queue) > 0 {
		next := sess.Queue[0]
		sess.Queue = sess.Queue[1:]
		if err := e.open(ctx, t, next); err != nil {
			return err
		}
		t.checkpoint = sess.Clone()
	}
	return nil
}

// open suspends the turn on a sensitive call.
func (e *Engine) open(ctx context.Context, t *turn, call domain.ToolCall) error {
	sess := t.sess
	if _, err := e.gate.Open(sess, call); err != nil {
		return err
	}
	e.logger.Info("approval required", "thread_id", sess.ThreadID, "agent", sess.ActiveAgent, "tool", call.Name, "call_id", call.ID)
	e.emitApproval(ctx, e.hooks.OnApprovalOpened, domain.HookApprovalOpened, sess, sess.Pending, nil)
	t.events = append(t.events, approvalEvent(sess, call))
	return nil
}

func skippedResult(callID string) domain.ToolResult {
	return domain.ToolResult{
		ID:       callID,
		IsDenied: true,
		Content:  "Not executed: the user denied a previous action of the same request. Ask again if it is still needed.",
	}
}

func discardedResult(callID string) domain.ToolResult {
	return domain.ToolResult{
		ID:       callID,
		IsDenied: true,
		Content:  "Not executed: control returned to the host assistant.",
	}
}
