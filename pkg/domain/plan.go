package domain

// PlanResult is what an agent decided to do with the current session.
// It is exactly one of Reply, ToolCalls or Handoff.
type PlanResult interface {
	isPlanResult()
}

// Reply is a direct natural-language answer to the user.
type Reply struct {
	Text string
}

// ToolCalls asks for one or more tools to run. Text is optional commentary the
// planner produced alongside the calls.
type ToolCalls struct {
	Calls []ToolCall
	Text  string
}

// Handoff asks the router to move control to another agent. CallID is the
// planner's identifier for the signal so its acknowledgement can be correlated.
type Handoff struct {
	CallID string
	Signal HandoffSignal
}

func (Reply) isPlanResult()     {}
func (ToolCalls) isPlanResult() {}
func (Handoff) isPlanResult()   {}
