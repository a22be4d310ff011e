package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	threadID := "contract-test-thread-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(threadID, domain.Locale{Language: "en", Currency: "USD"})
		sess.ActiveAgent = domain.AgentHotel
		sess.Slots["location"] = "Santiago"
		sess.Credential = "secret-token"
		sess.Append(domain.UserMessage("book me a hotel"))
		sess.Append(domain.Message{
			Role:  domain.RoleAssistant,
			Agent: domain.AgentHotel,
			ToolCalls: []domain.ToolCall{
				{ID: "call-1", Name: "create_hotel_booking", Args: map[string]any{"hotel_id": "42"}},
			},
		})
		sess.Status = domain.StatusAwaitingApproval
		sess.Pending = &domain.PendingAction{
			Handle:   "handle-1",
			Call:     sess.Messages[1].ToolCalls[0],
			Agent:    domain.AgentHotel,
			RaisedAt: 2,
			OpenedAt: time.Now().UTC(),
		}

		err := store.Save(ctx, threadID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, threadID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.AgentHotel, loaded.ActiveAgent)
		assert.Equal(t, domain.StatusAwaitingApproval, loaded.Status)
		assert.Equal(t, "Santiago", loaded.Slots["location"])
		assert.Equal(t, "en", loaded.Locale.Language)
		require.Len(t, loaded.Messages, 2)
		assert.Equal(t, "book me a hotel", loaded.Messages[0].Content)
		require.NotNil(t, loaded.Pending, "a suspended approval must survive a round trip")
		assert.Equal(t, "handle-1", loaded.Pending.Handle)
		assert.Equal(t, "create_hotel_booking", loaded.Pending.Call.Name)
		// JSON persistence turns numbers into float64, strings survive as is.
		assert.Equal(t, "42", loaded.Pending.Call.Args["hotel_id"])
	})

	t.Run("Credential Not Persisted", func(t *testing.T) {
		sess := domain.NewSession(threadID+"-cred", domain.Locale{})
		sess.Credential = "secret-token"
		require.NoError(t, store.Save(ctx, sess.ThreadID, sess))
		defer func() { _ = store.Delete(ctx, sess.ThreadID) }()

		loaded, err := store.Load(ctx, sess.ThreadID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Credential)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+threadID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, threadID, domain.NewSession(threadID, domain.Locale{}))
		require.NoError(t, err)

		err = store.Delete(ctx, threadID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, threadID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := threadID + "-1"
		id2 := threadID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, domain.Locale{}))
		_ = store.Save(ctx, id2, domain.NewSession(id2, domain.Locale{}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, id1)
		assert.Contains(t, threads, id2)
	})
}
