package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/registry"
)

// Roster holds the three agents of a conversation.
type Roster struct {
	agents map[domain.AgentID]*Agent
}

type rosterConfig struct {
	instructions map[domain.AgentID]string
	now          func() time.Time
}

// Option configures a Roster.
type Option func(*rosterConfig)

// WithInstructions replaces the built-in instructions of an agent.
// The text is a text/template with .Time, .Currency, .Language, .LanguageName and .Slots.
func WithInstructions(id domain.AgentID, text string) Option {
	return func(c *rosterConfig) { c.instructions[id] = text }
}

// WithClock overrides the time shown to the agents.
func WithClock(now func() time.Time) Option {
	return func(c *rosterConfig) { c.now = now }
}

// NewRoster builds the agents over a frozen registry and a planner.
func NewRoster(reg *registry.Registry, planner ports.Planner, opts ...Option) (*Roster, error) {
	cfg := rosterConfig{
		instructions: map[domain.AgentID]string{
			domain.AgentSupervisor:        supervisorPrompt,
			domain.AgentHotel:             hotelPrompt,
			domain.AgentExcursionTransfer: excursionPrompt,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	escalate := HandoffDescriptor(domain.HandoffCompleteOrEscalate)
	specs := []struct {
		id       domain.AgentID
		name     string
		handoffs []domain.ToolDescriptor
	}{
		{domain.AgentSupervisor, "CTS Travel Assistant", []domain.ToolDescriptor{
			HandoffDescriptor(domain.HandoffToHotel),
			HandoffDescriptor(domain.HandoffToExcursionTransfer),
		}},
		{domain.AgentHotel, "Hotel Booking Assistant", []domain.ToolDescriptor{escalate}},
		{domain.AgentExcursionTransfer, "Excursion and Transfers Booking Assistant", []domain.ToolDescriptor{escalate}},
	}

	r := &Roster{agents: make(map[domain.AgentID]*Agent, len(specs))}
	for _, s := range specs {
		tmpl, err := parseInstructions(s.id, cfg.instructions[s.id])
		if err != nil {
			return nil, err
		}
		r.agents[s.id] = &Agent{
			ID:           s.id,
			Name:         s.name,
			Handoffs:     s.handoffs,
			instructions: tmpl,
			tools:        reg.ToolsFor(s.id),
			planner:      planner,
			now:          cfg.now,
		}
	}
	if n := len(r.agents[domain.AgentSupervisor].tools.Sensitive); n > 0 {
		return nil, fmt.Errorf("supervisor must not own sensitive tools, found %d", n)
	}
	return r, nil
}

// Get returns an agent by ID.
func (r *Roster) Get(id domain.AgentID) (*Agent, error) {
	a, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAgent, id)
	}
	return a, nil
}

// Agents returns every agent in routing order.
func (r *Roster) Agents() []*Agent {
	out := make([]*Agent, 0, len(domain.Agents))
	for _, id := range domain.Agents {
		out = append(out, r.agents[id])
	}
	return out
}

// LoadInstructions returns roster options for every agent the loader has a prompt for.
func LoadInstructions(ctx context.Context, loader ports.PromptLoader) ([]Option, error) {
	ids, err := loader.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}
	var opts []Option
	for _, id := range ids {
		text, err := loader.LoadPrompt(ctx, id)
		if errors.Is(err, domain.ErrPromptNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load prompt for %s: %w", id, err)
		}
		opts = append(opts, WithInstructions(id, text))
	}
	return opts, nil
}

// HandoffDescriptor describes a handoff signal the way tools are described to the planner.
func HandoffDescriptor(name string) domain.ToolDescriptor {
	switch name {
	case domain.HandoffToHotel:
		return domain.ToolDescriptor{
			Name:        name,
			Description: "Transfer work to a specialized assistant to handle hotel bookings, updates and cancellations.",
			Parameters:  registry.SchemaFor[domain.ToHotel](),
			Agent:       domain.AgentHotel,
		}
	case domain.HandoffToExcursionTransfer:
		return domain.ToolDescriptor{
			Name:        name,
			Description: "Transfer work to a specialized assistant to handle trip recommendations, excursion and transfer bookings.",
			Parameters:  registry.SchemaFor[domain.ToExcursionTransfer](),
			Agent:       domain.AgentExcursionTransfer,
		}
	default:
		return domain.ToolDescriptor{
			Name: domain.HandoffCompleteOrEscalate,
			Description: "A tool to mark the current task as completed and/or to escalate control of the dialog to the main assistant, " +
				"who can re-route the dialog based on the user's needs.",
			Parameters: registry.SchemaFor[domain.CompleteOrEscalate](),
			Agent:      domain.AgentSupervisor,
		}
	}
}
