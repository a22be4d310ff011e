package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/concierge/pkg/adapters/memory"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/persistence/middleware"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, active []byte, fallback ...[]byte) ports.SessionStore {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))

	ctx := context.Background()
	sess := domain.NewSession("enc-thread", domain.Locale{Language: "en", Currency: "USD"})
	sess.ActiveAgent = domain.AgentHotel
	sess.Slots["city"] = "Valparaíso"
	sess.Append(domain.UserMessage("a room for two"))

	require.NoError(t, store.Save(ctx, sess.ThreadID, sess))

	raw, err := underlying.Load(ctx, sess.ThreadID)
	require.NoError(t, err)
	assert.Empty(t, raw.Messages)
	assert.NotContains(t, raw.Slots, "city")
	assert.Contains(t, raw.Slots, middleware.EnvelopeSlot)
	assert.Equal(t, domain.AgentHotel, raw.ActiveAgent)

	loaded, err := store.Load(ctx, sess.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, "Valparaíso", loaded.Slots["city"])
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "a room for two", loaded.Messages[0].Content)
	assert.Equal(t, "USD", loaded.Locale.Currency)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	oldStore := encrypted(t, underlying, oldKey)
	newStore := encrypted(t, underlying, newKey, oldKey)

	ctx := context.Background()
	sess := domain.NewSession("rot-thread", domain.Locale{})
	sess.Slots["note"] = "old"
	require.NoError(t, oldStore.Save(ctx, sess.ThreadID, sess))

	loaded, err := newStore.Load(ctx, sess.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Slots["note"])

	loaded.Slots["note"] = "new"
	require.NoError(t, newStore.Save(ctx, sess.ThreadID, loaded))

	_, err = oldStore.Load(ctx, sess.ThreadID)
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainSessionRejected(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewSession("plain", domain.Locale{})))

	_, err := encrypted(t, underlying, generateKey(t)).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestChain_RunsContract(t *testing.T) {
	mask, err := middleware.NewPIIMiddleware([]string{"email"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	ports.RunSessionStoreContract(t, middleware.Chain(memory.NewStore(), mask, enc))
}
