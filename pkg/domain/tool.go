package domain

import "github.com/invopop/jsonschema"

// Safety classifies a tool by whether it mutates external state.
type Safety string

const (
	Safe      Safety = "safe"
	Sensitive Safety = "sensitive"
)

// ToolCall represents a request from the planner to invoke a tool.
// Compatible with OpenAI/MCP tool call schemas.
type ToolCall struct {
	ID   string         `json:"id" yaml:"id" mapstructure:"id"`
	Name string         `json:"name" yaml:"name" mapstructure:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

func (c ToolCall) clone() ToolCall {
	if c.Args != nil {
		args := make(map[string]any, len(c.Args))
		for k, v := range c.Args {
			args[k] = v
		}
		c.Args = args
	}
	return c
}

// ToolResult represents the outcome of a tool invocation.
type ToolResult struct {
	ID       string `json:"id"` // Must match the ToolCall.ID
	Content  string `json:"content"`
	IsError  bool   `json:"is_error,omitempty"`
	IsDenied bool   `json:"is_denied,omitempty"`
}

// ToolDescriptor defines metadata about a tool available to an agent.
// Immutable once registered.
type ToolDescriptor struct {
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty" yaml:"-"`
	Safety      Safety             `json:"safety" yaml:"safety"`
	Agent       AgentID            `json:"agent" yaml:"agent"`
}

// ToolRequest is what a tool function receives.
type ToolRequest struct {
	Call    ToolCall
	Request RequestContext
}
