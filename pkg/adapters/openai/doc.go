// Package openai implements ports.Planner on top of an OpenAI-compatible chat
// completion endpoint with function calling.
//
// Tools and handoff signals are both exposed as functions. When the model calls a
// handoff function the planner reports a domain.Handoff; otherwise tool calls are
// passed through as domain.ToolCalls and a plain answer becomes a domain.Reply.
package openai
