package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository of Markdown documents to ports.PromptLoader.
// The document body is the instruction template; the front-matter names the agent.
type Loader struct {
	Repo *loam.TypedRepository[PromptMetadata]
}

var _ ports.PromptLoader = (*Loader)(nil)

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PromptMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only repository rooted at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PromptMetadata](repo)), nil
}

// LoadPrompt returns the body of the document owned by agent.
func (l *Loader) LoadPrompt(ctx context.Context, agent domain.AgentID) (string, error) {
	index, err := l.index(ctx)
	if err != nil {
		return "", err
	}
	id, ok := index[agent]
	if !ok {
		return "", domain.ErrPromptNotFound
	}

	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	text := strings.TrimSpace(doc.Content)
	if text == "" {
		return "", fmt.Errorf("prompt %s for %s is empty", id, agent)
	}
	return text, nil
}

// ListPrompts returns the agents that have a document, in routing order.
func (l *Loader) ListPrompts(ctx context.Context) ([]domain.AgentID, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.AgentID, 0, len(index))
	for _, a := range domain.Agents {
		if _, ok := index[a]; ok {
			ids = append(ids, a)
		}
	}
	return ids, nil
}

// index maps each agent to the document ID that holds its prompt.
func (l *Loader) index(ctx context.Context) (map[domain.AgentID]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[domain.AgentID]string)
	for _, doc := range docs {
		id := trimExtension(doc.ID)

		var agent domain.AgentID
		if doc.Data.Agent != "" {
			a, ok := parseAgent(doc.Data.Agent)
			if !ok {
				return nil, fmt.Errorf("%w: %q in %s", domain.ErrUnknownAgent, doc.Data.Agent, doc.ID)
			}
			agent = a
		} else if a, ok := parseAgent(filepath.Base(id)); ok {
			agent = a
		} else {
			continue
		}

		if existing, ok := index[agent]; ok {
			return nil, fmt.Errorf("collision detected: agent '%s' is defined in both '%s' and '%s'", agent, existing, id)
		}
		index[agent] = id
	}
	return index, nil
}

func parseAgent(s string) (domain.AgentID, bool) {
	for _, a := range domain.Agents {
		if strings.EqualFold(string(a), s) {
			return a, true
		}
	}
	return "", false
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
