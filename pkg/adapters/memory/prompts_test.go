package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/concierge/pkg/adapters/memory"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompts(t *testing.T) {
	p := memory.Prompts{
		domain.AgentSupervisor: "route",
		domain.AgentHotel:      "hotels",
	}
	ctx := context.Background()

	ids, err := p.ListPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AgentID{domain.AgentHotel, domain.AgentSupervisor}, ids)

	text, err := p.LoadPrompt(ctx, domain.AgentHotel)
	require.NoError(t, err)
	assert.Equal(t, "hotels", text)

	_, err = p.LoadPrompt(ctx, domain.AgentExcursionTransfer)
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)
}
