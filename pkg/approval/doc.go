/*
Package approval implements the interrupt/resume gate guarding sensitive tool calls.

The gate keeps no state of its own: the suspended action lives on the Session, so a
thread reloaded from a durable store after a restart can re-surface and resolve the same
pending action. At most one action is pending per session.

Resolution input is classified fail-closed: only an explicit, localized "yes" confirms.
Anything else, including an unrelated message, is a denial carrying the user's text.
*/
package approval
