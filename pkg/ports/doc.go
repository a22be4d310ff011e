/*
Package ports defines the driven and driving ports (interfaces) of the Concierge engine.

These interfaces decouple the dialog router from external implementations, allowing the engine to
work with various session stores, planning back-ends, prompt sources and lock providers.

# Key Interfaces

  - Planner: the language-model capability that turns a conversation into a PlanResult.
  - ToolExecutor: runs a tool call on behalf of the active agent.
  - SessionStore: persists and loads Session snapshots by thread ID.
  - DistributedLocker: coordinates access to a thread across replicas.
  - PromptLoader: supplies agent instructions from an external source.
  - DialogEngine: the surface that transports (HTTP, websocket, MCP, CLI) drive.
*/
package ports
