// Package middleware wraps a ports.SessionStore with protections applied at the storage edge:
// AES-GCM encryption of whole sessions and masking of personal data in slots and past tool
// arguments.
package middleware
