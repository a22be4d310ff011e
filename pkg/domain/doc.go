/*
Package domain contains the core models of the Concierge dialog engine.

It defines the conversation vocabulary shared by every other package: messages, tool calls and
their results, the agents that take turns in a conversation, the handoff signals that move control
between them, and the Session that captures a thread's durable state. The package is kept free of
I/O and persistence concerns.

# Key Entities

  - Session: the durable snapshot of one conversation (active agent, history, pending approval).
  - Message: one entry of the append-only history.
  - ToolCall / ToolResult: a planned invocation and its outcome, correlated by call ID.
  - ToolDescriptor: static metadata about a registered tool, including its Safety class.
  - HandoffSignal: a typed instruction to move control to another agent.
  - PlanResult: what an agent decided to do next (Reply, ToolCalls or Handoff).
  - Event: an outbound notification for the transport (text or approval request).
*/
package domain
