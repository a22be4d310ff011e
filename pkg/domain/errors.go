package domain

import "errors"

// ErrSessionNotFound is returned when a thread ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnhandledSignal is returned when a signal is received but no handler is defined for it.
var ErrUnhandledSignal = errors.New("unhandled signal")

var (
	// ErrApprovalPending is returned when a second sensitive action is opened while one is still
	// awaiting resolution in the same session.
	ErrApprovalPending = errors.New("an approval is already pending for this session")

	// ErrNoPendingAction is returned when resolving an approval on a session that has none.
	ErrNoPendingAction = errors.New("no pending action to resolve")

	// ErrHandleMismatch is returned when an approval handle does not match the pending action.
	ErrHandleMismatch = errors.New("approval handle does not match the pending action")
)

var (
	// ErrUnknownTool is returned when a tool name is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolNotAllowed is returned when an agent plans a tool it does not own.
	ErrToolNotAllowed = errors.New("tool not available to the active agent")

	// ErrRegistryFrozen is returned when registering a tool after startup.
	ErrRegistryFrozen = errors.New("tool registry is frozen")

	// ErrUnknownAgent is returned when an agent ID is not part of the roster.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownHandoff is returned when a handoff name cannot be decoded.
	ErrUnknownHandoff = errors.New("unknown handoff")

	// ErrStepLimit is returned when a single turn exceeds the configured planning steps.
	ErrStepLimit = errors.New("turn exceeded the maximum number of planning steps")
)

// ErrPromptNotFound is returned by prompt loaders that have no instructions for an agent.
var ErrPromptNotFound = errors.New("prompt not found")
