package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
)

// ErrScriptExhausted is returned when the planner is asked for more steps than scripted.
var ErrScriptExhausted = errors.New("scripted planner has no more steps")

// ScriptedPlanner replays canned plan results in order and records every request.
type ScriptedPlanner struct {
	mu       sync.Mutex
	steps    []ports.PlannerFunc
	requests []ports.PlanRequest
}

// NewScriptedPlanner creates a planner that returns results in order.
func NewScriptedPlanner(results ...domain.PlanResult) *ScriptedPlanner {
	p := &ScriptedPlanner{}
	p.Push(results...)
	return p
}

// Push appends fixed results to the script.
func (p *ScriptedPlanner) Push(results ...domain.PlanResult) *ScriptedPlanner {
	for _, r := range results {
		p.PushFunc(func(context.Context, ports.PlanRequest) (domain.PlanResult, error) { return r, nil })
	}
	return p
}

// PushFunc appends a step computed from the request.
func (p *ScriptedPlanner) PushFunc(fn ports.PlannerFunc) *ScriptedPlanner {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, fn)
	return p
}

// PushError appends a failing step.
func (p *ScriptedPlanner) PushError(err error) *ScriptedPlanner {
	return p.PushFunc(func(context.Context, ports.PlanRequest) (domain.PlanResult, error) { return nil, err })
}

// Plan implements ports.Planner.
func (p *ScriptedPlanner) Plan(ctx context.Context, req ports.PlanRequest) (domain.PlanResult, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	if len(p.steps) == 0 {
		p.mu.Unlock()
		return nil, ErrScriptExhausted
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	p.mu.Unlock()

	return step(ctx, req)
}

// Requests returns every request seen so far.
func (p *ScriptedPlanner) Requests() []ports.PlanRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.PlanRequest(nil), p.requests...)
}

// LastRequest returns the most recent request, or the zero value.
func (p *ScriptedPlanner) LastRequest() ports.PlanRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return ports.PlanRequest{}
	}
	return p.requests[len(p.requests)-1]
}

// Remaining returns how many steps are left.
func (p *ScriptedPlanner) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

// Reply builds a Reply result.
func Reply(text string) domain.PlanResult { return domain.Reply{Text: text} }

// Call builds a single tool call.
func Call(id, name string, args map[string]any) domain.ToolCall {
	return domain.ToolCall{ID: id, Name: name, Args: args}
}

// Calls builds a ToolCalls result.
func Calls(calls ...domain.ToolCall) domain.PlanResult { return domain.ToolCalls{Calls: calls} }

// HandoffTo builds a Handoff result.
func HandoffTo(callID string, sig domain.HandoffSignal) domain.PlanResult {
	return domain.Handoff{CallID: callID, Signal: sig}
}
