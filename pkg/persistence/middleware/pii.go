package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
)

// Mask replaces every value whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks slots and historic tool arguments whose
// keys match one of the patterns. The pending action and the queue are stored unmasked
// because they still have to run after an approval.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, threadID string, sess *domain.Session) error {
	// The engine keeps using sess after the checkpoint.
	cloned := sess.Clone()

	for k := range cloned.Slots {
		if m.matches(k) {
			cloned.Slots[k] = Mask
		}
	}
	for i, msg := range cloned.Messages {
		for j, call := range msg.ToolCalls {
			args := deepCopyMap(call.Args)
			m.maskMap(args)
			cloned.Messages[i].ToolCalls[j].Args = args
		}
	}
	return m.next.Save(ctx, threadID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, threadID string) (*domain.Session, error) {
	return m.next.Load(ctx, threadID)
}

func (m *piiMiddleware) Delete(ctx context.Context, threadID string) error {
	return m.next.Delete(ctx, threadID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) maskMap(values map[string]any) {
	for k, v := range values {
		if m.matches(k) {
			values[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			m.maskMap(sub)
		}
	}
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}
