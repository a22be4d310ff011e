package memory

import (
	"context"
	"sort"

	"github.com/aretw0/concierge/pkg/domain"
)

// Prompts implements ports.PromptLoader over a fixed map, for tests and embedded setups.
type Prompts map[domain.AgentID]string

// LoadPrompt returns the instructions for an agent.
func (p Prompts) LoadPrompt(ctx context.Context, agent domain.AgentID) (string, error) {
	text, ok := p[agent]
	if !ok {
		return "", domain.ErrPromptNotFound
	}
	return text, nil
}

// ListPrompts returns the agents with instructions, sorted.
func (p Prompts) ListPrompts(ctx context.Context) ([]domain.AgentID, error) {
	ids := make([]domain.AgentID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
