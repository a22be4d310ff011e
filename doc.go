/*
Package concierge is a conversational booking assistant for a tour operator.

A Supervisor agent talks to the traveller and hands the conversation off to one of two
specialists: a Hotel agent and an ExcursionTransfer agent. Specialists call tools against
the booking API. Safe tools (searches, lookups) run immediately; sensitive tools (bookings,
updates, cancellations) suspend the conversation until the traveller confirms.

# Architecture

The dialog router (internal/runtime) is a two-dimensional state machine over the active
agent and the session status (Idle or AwaitingApproval). Every turn is a pure function
from the stored session and one inbound event to the next session and the events to show.
The Engine in this package wraps it with per-thread serialisation and persistence:

	planner := openai.New(apiKey)
	reg := registry.NewRegistry()
	_ = cts.Register(reg, cts.NewClient(apiV1, apiV2))

	eng, err := concierge.New(ctx, planner,
		concierge.WithRegistry(reg),
		concierge.WithStore(file.New(".concierge/sessions")),
	)
	if err != nil {
		log.Fatal(err)
	}

	sess, events, err := eng.Send(ctx, "thread-1", domain.Inbound{
		Message:  "I need a hotel in Santiago",
		Language: "en",
		Currency: "USD",
	})

# Approval

While a sensitive call is pending, the next message of the thread answers it. A localized
"yes" (y, yes, s, si, sí, sim) executes the call; anything else denies it and is passed to
the agent as the reason, so "actually, change the dates" steers the next plan.

# Adapters

Transports live in pkg/adapters (HTTP and websocket, MCP) and pkg/runner (terminal chat).
Sessions are stored in memory, as JSON files, or in Redis.
*/
package concierge
