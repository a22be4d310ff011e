// Package agent bundles instructions, a tool subset and a handoff vocabulary into the three
// agents of a conversation: the Supervisor and its Hotel and ExcursionTransfer specialists.
//
// An Agent performs no business logic. Plan assembles the instructions for the session,
// hands the conversation to the planning capability, and returns whatever it decided.
package agent
