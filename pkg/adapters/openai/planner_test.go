package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/concierge/pkg/adapters/openai"
	"github.com/aretw0/concierge/pkg/agent"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletions serves a canned assistant message and records the last request body.
type fakeCompletions struct {
	mu      sync.Mutex
	last    map[string]any
	message map[string]any
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.last = body
	msg := f.message
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []any{map[string]any{
			"index":         0,
			"message":       msg,
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
}

func (f *fakeCompletions) request() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func newPlanner(t *testing.T, msg map[string]any) (*openai.Planner, *fakeCompletions) {
	t.Helper()
	fake := &fakeCompletions{message: msg}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return openai.New("test-key", openai.WithBaseURL(srv.URL+"/v1"), openai.WithModel("test-model")), fake
}

func TestPlanner_Reply(t *testing.T) {
	p, fake := newPlanner(t, map[string]any{"role": "assistant", "content": "Hola, ¿en qué te ayudo?"})

	res, err := p.Plan(context.Background(), ports.PlanRequest{
		Agent:        domain.AgentSupervisor,
		Instructions: "You are helpful.",
		Messages:     []domain.Message{domain.UserMessage("hola")},
		Handoffs:     []domain.ToolDescriptor{agent.HandoffDescriptor(domain.HandoffToHotel)},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Reply{Text: "Hola, ¿en qué te ayudo?"}, res)

	body := fake.request()
	assert.Equal(t, "test-model", body["model"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, domain.HandoffToHotel, fn["name"])
	assert.NotNil(t, fn["parameters"])
}

func TestPlanner_ToolCalls(t *testing.T) {
	p, _ := newPlanner(t, map[string]any{
		"role":    "assistant",
		"content": "",
		"tool_calls": []any{
			map[string]any{
				"id":   "call_1",
				"type": "function",
				"function": map[string]any{
					"name":      "search_hotels",
					"arguments": `{"location":"Santiago"}`,
				},
			},
		},
	})

	res, err := p.Plan(context.Background(), ports.PlanRequest{
		Agent:    domain.AgentHotel,
		Messages: []domain.Message{domain.UserMessage("hotels in Santiago")},
		Tools:    []domain.ToolDescriptor{{Name: "search_hotels", Description: "search", Safety: domain.Safe}},
	})
	require.NoError(t, err)

	calls, ok := res.(domain.ToolCalls)
	require.True(t, ok, "expected ToolCalls, got %T", res)
	require.Len(t, calls.Calls, 1)
	assert.Equal(t, "call_1", calls.Calls[0].ID)
	assert.Equal(t, "search_hotels", calls.Calls[0].Name)
	assert.Equal(t, "Santiago", calls.Calls[0].Args["location"])
}

func TestPlanner_Handoff(t *testing.T) {
	p, _ := newPlanner(t, map[string]any{
		"role": "assistant",
		"tool_calls": []any{
			map[string]any{
				"id":   "call_h",
				"type": "function",
				"function": map[string]any{
					"name":      domain.HandoffToHotel,
					"arguments": `{"location":"Santiago","checkin_date":"2025-01-01","checkout_date":"2025-01-03"}`,
				},
			},
		},
	})

	res, err := p.Plan(context.Background(), ports.PlanRequest{Agent: domain.AgentSupervisor})
	require.NoError(t, err)

	h, ok := res.(domain.Handoff)
	require.True(t, ok, "expected Handoff, got %T", res)
	assert.Equal(t, "call_h", h.CallID)
	assert.Equal(t, domain.ToHotel{Location: "Santiago", CheckinDate: "2025-01-01", CheckoutDate: "2025-01-03"}, h.Signal)
}

func TestPlanner_InvalidArguments(t *testing.T) {
	p, _ := newPlanner(t, map[string]any{
		"role": "assistant",
		"tool_calls": []any{
			map[string]any{
				"id":       "call_x",
				"type":     "function",
				"function": map[string]any{"name": "search_hotels", "arguments": "{not json"},
			},
		},
	})

	_, err := p.Plan(context.Background(), ports.PlanRequest{Agent: domain.AgentHotel})
	assert.Error(t, err)
}

func TestMakeMessages_ToolRoundTrip(t *testing.T) {
	history := []domain.Message{
		domain.UserMessage("book it"),
		{
			Role:      domain.RoleAssistant,
			Agent:     domain.AgentHotel,
			ToolCalls: []domain.ToolCall{{ID: "c1", Name: "create_hotel_booking", Args: map[string]any{"room": 7}}},
		},
		domain.ToolMessage(domain.AgentHotel, domain.ToolResult{ID: "c1", Content: "Booking confirmed"}),
	}

	msgs := openai.MakeMessages("sys", history)
	require.Len(t, msgs, 4)
	assert.Equal(t, "sys", msgs[0].Content)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, "create_hotel_booking", msgs[2].ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"room":7}`, msgs[2].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "c1", msgs[3].ToolCallID)
	assert.Equal(t, "tool", msgs[3].Role)
}
