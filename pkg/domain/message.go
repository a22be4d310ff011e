package domain

// Role is the author of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is a single entry of a session history.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// ToolCalls is set on assistant messages that requested tools or a handoff.
	ToolCalls []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`

	// ToolCallID links a tool message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`

	// Agent records who produced an assistant or tool message.
	Agent AgentID `json:"agent,omitempty" yaml:"agent,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(agent AgentID, text string) Message {
	return Message{Role: RoleAssistant, Content: text, Agent: agent}
}

// ToolMessage turns a result into the history entry the planner will see next.
func ToolMessage(agent AgentID, r ToolResult) Message {
	return Message{Role: RoleTool, Content: r.Content, ToolCallID: r.ID, Agent: agent}
}

func (m Message) clone() Message {
	if m.ToolCalls != nil {
		calls := make([]ToolCall, len(m.ToolCalls))
		for i, c := range m.ToolCalls {
			calls[i] = c.clone()
		}
		m.ToolCalls = calls
	}
	return m
}
