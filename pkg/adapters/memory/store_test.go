package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/concierge/pkg/adapters/memory"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sess := domain.NewSession("t1", domain.Locale{})
	require.NoError(t, store.Save(ctx, "t1", sess))
	sess.Append(domain.UserMessage("after save"))

	loaded, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Messages)

	loaded.Append(domain.UserMessage("after load"))
	again, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, again.Messages)
}
