// Package runtime implements the dialog router: the state machine over
// {Supervisor, Hotel, ExcursionTransfer} x {Idle, AwaitingApproval}.
//
// The engine is stateless. Every call receives a Session snapshot and returns a new one, so
// the session store remains the single source of truth and a suspended approval can be
// resumed from any process.
package runtime
