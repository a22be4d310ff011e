package ports

import (
	"context"

	"github.com/aretw0/concierge/pkg/domain"
)

// PromptLoader supplies agent instructions from an external source (Loam, memory).
// This allows prompts to be edited without rebuilding the binary.
type PromptLoader interface {
	// LoadPrompt returns the instruction template for an agent.
	// It returns domain.ErrPromptNotFound when the source has no override.
	LoadPrompt(ctx context.Context, agent domain.AgentID) (string, error)

	// ListPrompts returns the agents the source has instructions for.
	ListPrompts(ctx context.Context) ([]domain.AgentID, error)
}
