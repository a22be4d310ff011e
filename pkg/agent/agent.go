package agent

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/registry"
)

// Agent is one participant of the dialog.
type Agent struct {
	ID   domain.AgentID
	Name string

	// Handoffs are the signals this agent may emit instead of replying.
	Handoffs []domain.ToolDescriptor

	instructions *template.Template
	tools        registry.ToolSet
	planner      ports.Planner
	now          func() time.Time
}

// promptData is what instruction templates can reference.
type promptData struct {
	Time         string
	Currency     string
	Language     string
	LanguageName string
	Slots        map[string]string
}

// Tools returns every tool the agent may call.
func (a *Agent) Tools() registry.ToolSet { return a.tools }

// Instructions renders the agent's system prompt for a session.
func (a *Agent) Instructions(sess *domain.Session) (string, error) {
	data := promptData{
		Time:         a.now().Format(time.RFC1123),
		Currency:     sess.Locale.Currency,
		Language:     sess.Locale.Language,
		LanguageName: languageName(sess.Locale.Language),
		Slots:        sess.Slots,
	}
	var buf bytes.Buffer
	if err := a.instructions.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render instructions for %s: %w", a.ID, err)
	}
	return buf.String(), nil
}

// Plan asks the planning capability what to do next with the session.
func (a *Agent) Plan(ctx context.Context, sess *domain.Session) (domain.PlanResult, error) {
	instructions, err := a.Instructions(sess)
	if err != nil {
		return nil, err
	}
	res, err := a.planner.Plan(ctx, ports.PlanRequest{
		Agent:        a.ID,
		Instructions: instructions,
		Messages:     sess.Messages,
		Tools:        a.tools.All(),
		Handoffs:     a.Handoffs,
	})
	if err != nil {
		return nil, fmt.Errorf("%s failed to plan: %w", a.ID, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%s planner returned no result", a.ID)
	}
	return res, nil
}

// CanHandoff reports whether name is one of the agent's handoff signals.
func (a *Agent) CanHandoff(name string) bool {
	for _, h := range a.Handoffs {
		if h.Name == name {
			return true
		}
	}
	return false
}

// EntryMessage is recorded as the handoff's tool result when control moves to a.
func (a *Agent) EntryMessage() string {
	if a.ID == domain.AgentSupervisor {
		return resumeMessage
	}
	return fmt.Sprintf(entryTemplate, a.Name, a.Name)
}

func languageName(tag string) string {
	switch {
	case len(tag) >= 2 && tag[:2] == "es":
		return "Spanish"
	case len(tag) >= 2 && tag[:2] == "pt":
		return "Portuguese"
	case len(tag) >= 2 && tag[:2] == "en":
		return "English"
	case tag == "":
		return "Spanish"
	}
	return tag
}

func parseInstructions(id domain.AgentID, text string) (*template.Template, error) {
	t, err := template.New(string(id)).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid instructions for %s: %w", id, err)
	}
	return t, nil
}
