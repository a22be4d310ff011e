package testutils

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/registry"
	"github.com/stretchr/testify/require"
)

// ToolRecorder counts tool executions by name.
type ToolRecorder struct {
	mu    sync.Mutex
	calls map[string][]domain.ToolRequest
}

// Count returns how many times a tool ran.
func (r *ToolRecorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls[name])
}

// Calls returns the requests a tool received.
func (r *ToolRecorder) Calls(name string) []domain.ToolRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ToolRequest(nil), r.calls[name]...)
}

func (r *ToolRecorder) record(req domain.ToolRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[req.Call.Name] = append(r.calls[req.Call.Name], req)
}

// ErrTransport is what the "flaky_search" tool fails with.
var ErrTransport = errors.New("dial tcp: connection refused")

// NewTestRegistry registers a small frozen catalogue that mirrors the real one:
//
//	Hotel:             search_hotels (safe), hotel_rooms (safe), flaky_search (safe, always fails),
//	                   create_hotel_booking (sensitive), cancel_hotel_booking (sensitive)
//	ExcursionTransfer: search_excursions (safe), create_excursion_booking (sensitive)
func NewTestRegistry(t *testing.T) (*registry.Registry, *ToolRecorder) {
	t.Helper()
	rec := &ToolRecorder{calls: make(map[string][]domain.ToolRequest)}
	reg := registry.NewRegistry()

	ok := func(out string) registry.ToolFunction {
		return func(ctx context.Context, req domain.ToolRequest) (any, error) {
			rec.record(req)
			return out, nil
		}
	}
	register := func(name string, safety domain.Safety, agent domain.AgentID, fn registry.ToolFunction) {
		require.NoError(t, reg.Register(domain.ToolDescriptor{Name: name, Safety: safety, Agent: agent}, fn))
	}

	register("search_hotels", domain.Safe, domain.AgentHotel, ok("Hotel Plaza (id 42)"))
	register("hotel_rooms", domain.Safe, domain.AgentHotel, ok("Double room (id 7)"))
	register("flaky_search", domain.Safe, domain.AgentHotel, func(ctx context.Context, req domain.ToolRequest) (any, error) {
		rec.record(req)
		return nil, ErrTransport
	})
	register("create_hotel_booking", domain.Sensitive, domain.AgentHotel, ok("Booking confirmed: file 1001"))
	register("cancel_hotel_booking", domain.Sensitive, domain.AgentHotel, ok("Booking cancelled"))
	register("search_excursions", domain.Safe, domain.AgentExcursionTransfer, ok("City tour (id 9)"))
	register("create_excursion_booking", domain.Sensitive, domain.AgentExcursionTransfer, ok("Excursion booked"))

	reg.Freeze()
	return reg, rec
}
