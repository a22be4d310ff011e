package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnAgentEnter(ctx, &domain.AgentEvent{Agent: domain.AgentHotel})
	hooks.OnAgentEnter(ctx, &domain.AgentEvent{Agent: domain.AgentHotel})
	hooks.OnToolReturn(ctx, &domain.ToolEvent{Agent: domain.AgentHotel, ToolName: "search", Safety: domain.Safe, Duration: time.Millisecond})
	hooks.OnToolReturn(ctx, &domain.ToolEvent{Agent: domain.AgentHotel, ToolName: "search", Safety: domain.Safe, IsError: true})
	hooks.OnApprovalOpened(ctx, &domain.ApprovalEvent{ToolName: "book"})
	hooks.OnApprovalResolved(ctx, &domain.ApprovalEvent{ToolName: "book", Approved: false})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AgentEntries.WithLabelValues("Hotel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("Hotel", "search", "safe", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("Hotel", "search", "safe", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ApprovalsOpened.WithLabelValues("book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ApprovalOutcomes.WithLabelValues("book", "denied")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ApprovalOutcomes.WithLabelValues("book", "approved")))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnToolCall(ctx, &domain.ToolEvent{ToolName: "book", Input: map[string]any{"email": "a@b.c"}})
	assert.Empty(t, buf.String(), "tool arguments stay below Info")

	hooks.OnToolReturn(ctx, &domain.ToolEvent{EventBase: domain.EventBase{ThreadID: "t1"}, ToolName: "book", IsError: true})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "thread_id=t1")

	merged := observability.LogHooks(logger).Merge(domain.LifecycleHooks{})
	require.NotNil(t, merged.OnAgentEnter)
	merged.OnAgentEnter(ctx, &domain.AgentEvent{Agent: domain.AgentSupervisor})
	assert.Contains(t, buf.String(), "agent=Supervisor")
}
