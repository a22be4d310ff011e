// Package cts connects the Hotel and ExcursionTransfer agents to the CTS travel API.
//
// The v1 API serves hotel availability and bookings; the v2 API serves excursions and
// transfers. Every request authenticates with the credential carried by the session's
// request context and prices in the session currency. Tool results are plain text meant
// for the planner, and API failures surface as tool errors rather than Go errors escaping
// the dialog router.
package cts
