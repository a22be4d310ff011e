package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/concierge/pkg/domain"
)

// SignalEscalate returns control to the Supervisor from outside the planner.
const SignalEscalate = "escalate"

// Signal triggers a global event on the session. The input session is never mutated.
//
// "escalate" behaves like a CompleteOrEscalate handoff: the Supervisor takes over and any
// pending or queued sensitive call is discarded without executing.
func (e *Engine) Signal(ctx context.Context, current *domain.Session, name string) (*domain.Session, error) {
	if name != SignalEscalate {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnhandledSignal, name)
	}

	sess := current.Clone()
	from := sess.ActiveAgent
	e.discard(sess, from)
	sess.Slots = make(map[string]string)
	sess.ActiveAgent = domain.AgentSupervisor

	e.logger.Info("signal received", "thread_id", sess.ThreadID, "signal", name, "from", from)
	if from != domain.AgentSupervisor {
		e.emitAgentEnter(ctx, sess.ThreadID, from, domain.AgentSupervisor)
	}
	return sess, nil
}
