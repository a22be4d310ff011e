// Package registry holds the tools agents can call, tagged safe or sensitive.
//
// Tools are registered once at startup and the registry is frozen before the first
// conversation is served. After Freeze every method is read-only, so a single Registry
// is shared across all sessions without further locking.
package registry
