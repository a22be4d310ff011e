package domain_test

import (
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHandoff(t *testing.T) {
	tests := []struct {
		name   string
		args   map[string]any
		target domain.AgentID
		slots  map[string]string
	}{
		{
			name: domain.HandoffToHotel,
			args: map[string]any{
				"location":      "Santiago",
				"checkin_date":  "2025-03-01",
				"checkout_date": "2025-03-05",
			},
			target: domain.AgentHotel,
			slots: map[string]string{
				"location":      "Santiago",
				"checkin_date":  "2025-03-01",
				"checkout_date": "2025-03-05",
			},
		},
		{
			name:   domain.HandoffToExcursionTransfer,
			args:   map[string]any{"location": "Valparaiso", "request": "a tour for 2"},
			target: domain.AgentExcursionTransfer,
			slots:  map[string]string{"location": "Valparaiso", "request": "a tour for 2"},
		},
		{
			name:   domain.HandoffCompleteOrEscalate,
			args:   map[string]any{"cancel": "true", "reason": "user changed their mind"},
			target: domain.AgentSupervisor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := domain.DecodeHandoff(tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.target, sig.Target())
			assert.Equal(t, tt.name, domain.HandoffName(sig))
			if tt.slots == nil {
				assert.Empty(t, sig.Slots())
			} else {
				assert.Equal(t, tt.slots, sig.Slots())
			}
		})
	}
}

func TestDecodeHandoff_WeakTypes(t *testing.T) {
	sig, err := domain.DecodeHandoff(domain.HandoffCompleteOrEscalate, map[string]any{"cancel": "true"})
	require.NoError(t, err)
	esc, ok := sig.(domain.CompleteOrEscalate)
	require.True(t, ok)
	assert.True(t, esc.Cancel)
}

func TestDecodeHandoff_Unknown(t *testing.T) {
	_, err := domain.DecodeHandoff("ToFlights", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownHandoff)
	assert.False(t, domain.IsHandoff("ToFlights"))
	assert.True(t, domain.IsHandoff(domain.HandoffToHotel))
}

func TestSession_CloneIsDeep(t *testing.T) {
	sess := domain.NewSession("t1", domain.Locale{Language: "en"})
	sess.Append(domain.Message{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{{ID: "c1", Name: "x", Args: map[string]any{"a": 1}}}})
	sess.Slots["location"] = "Santiago"

	c := sess.Clone()
	c.Messages[0].ToolCalls[0].Args["a"] = 2
	c.Slots["location"] = "Arica"
	c.Append(domain.UserMessage("hi"))

	assert.Equal(t, 1, sess.Messages[0].ToolCalls[0].Args["a"])
	assert.Equal(t, "Santiago", sess.Slots["location"])
	assert.Len(t, sess.Messages, 1)
}

func TestNewSession_Defaults(t *testing.T) {
	sess := domain.NewSession("t1", domain.Locale{Language: "en"})
	assert.Equal(t, domain.AgentSupervisor, sess.ActiveAgent)
	assert.Equal(t, domain.StatusIdle, sess.Status)
	assert.Equal(t, "en", sess.Locale.Language)
	assert.Equal(t, "CLP", sess.Locale.Currency)
	assert.Nil(t, sess.CurrentPendingAction())
}
