package observability

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "concierge"

// Metrics holds the collectors fed by the lifecycle hooks.
type Metrics struct {
	AgentEntries     *prometheus.CounterVec
	ToolCalls        *prometheus.CounterVec
	ToolDuration     *prometheus.HistogramVec
	ApprovalsOpened  *prometheus.CounterVec
	ApprovalOutcomes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AgentEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_entries_total",
				Help:      "Total number of times control moved to an agent",
			},
			[]string{"agent"},
		),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of executed tool calls",
			},
			[]string{"agent", "tool", "safety", "outcome"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Duration of tool executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ApprovalsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_opened_total",
				Help:      "Total number of sensitive calls suspended for approval",
			},
			[]string{"tool"},
		),
		ApprovalOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "approvals_resolved_total",
				Help:      "Total number of approval decisions by outcome",
			},
			[]string{"tool", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.AgentEntries, m.ToolCalls, m.ToolDuration, m.ApprovalsOpened, m.ApprovalOutcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAgentEnter: func(_ context.Context, e *domain.AgentEvent) {
			m.AgentEntries.WithLabelValues(string(e.Agent)).Inc()
		},
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			m.ToolCalls.WithLabelValues(string(e.Agent), e.ToolName, string(e.Safety), outcome).Inc()
			m.ToolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
		},
		OnApprovalOpened: func(_ context.Context, e *domain.ApprovalEvent) {
			m.ApprovalsOpened.WithLabelValues(e.ToolName).Inc()
		},
		OnApprovalResolved: func(_ context.Context, e *domain.ApprovalEvent) {
			outcome := "denied"
			if e.Approved {
				outcome = "approved"
			}
			m.ApprovalOutcomes.WithLabelValues(e.ToolName, outcome).Inc()
		},
	}
}
