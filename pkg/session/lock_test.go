package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, threadID string, sess *domain.Session) error { return nil }
func (nopStore) Load(ctx context.Context, threadID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, threadID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("thread-%d", i)
		_ = mgr.Save(ctx, id, &domain.Session{})
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
