package loam

import (
	"context"
	"testing"

	"github.com/aretw0/concierge/internal/testutils"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.SetupPromptRepo(t, files)
	return New(loam.NewTypedRepository[PromptMetadata](repo))
}

func TestLoader_LoadPrompt(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"hotel.md": `---
agent: Hotel
name: Hotel desk
description: Overrides the hotel instructions
---
You book hotels in {{.Currency}}.`,
		"supervisor.md": `---
name: Front desk
---
You route travellers.`,
		"notes.md": `---
name: Notes
---
Not a prompt.`,
	})
	ctx := context.Background()

	text, err := loader.LoadPrompt(ctx, domain.AgentHotel)
	require.NoError(t, err)
	assert.Equal(t, "You book hotels in {{.Currency}}.", text)

	text, err = loader.LoadPrompt(ctx, domain.AgentSupervisor)
	require.NoError(t, err)
	assert.Equal(t, "You route travellers.", text)

	_, err = loader.LoadPrompt(ctx, domain.AgentExcursionTransfer)
	assert.ErrorIs(t, err, domain.ErrPromptNotFound)

	ids, err := loader.ListPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AgentID{domain.AgentSupervisor, domain.AgentHotel}, ids)
}

func TestLoader_UnknownAgent(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"pirate.md": `---
agent: Pirate
---
Arr.`,
	})

	_, err := loader.ListPrompts(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnknownAgent)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"hotel.md": `---
name: one
---
First.`,
		"rooms.md": `---
agent: hotel
---
Second.`,
	})

	_, err := loader.ListPrompts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}
