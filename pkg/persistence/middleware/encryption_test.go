package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/persistence/middleware"
	"github.com/aretw0/datadesk/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, inner ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(inner, mw)
}

func sampleSession(userID, owner string) *domain.Session {
	s := domain.NewSession(userID)
	s.State.Stage = domain.StageDocument
	s.State.Dataset = domain.Dataset{
		{ID: 1, Owner: owner, TestDate: time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)},
	}
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := secure(t, memory.NewStore(memory.WithTTL(0)), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	inner := memory.NewStore(memory.WithTTL(0))
	store := secure(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", sampleSession("u1", "Lukoil")))

	envelope, err := inner.Load(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.Sealed)
	assert.Equal(t, domain.StageDocument, envelope.State.Stage)
	assert.Nil(t, envelope.State.Dataset, "dataset must not be stored in the clear")
	assert.NotContains(t, string(envelope.Sealed), "Lukoil")

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Sealed)
	require.Len(t, loaded.State.Dataset, 1)
	assert.Equal(t, "Lukoil", loaded.State.Dataset[0].Owner)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	inner := memory.NewStore(memory.WithTTL(0))
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := secure(t, inner, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, "u1", sampleSession("u1", "old-key")))

	newStore := secure(t, inner, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "old-key", loaded.State.Dataset[0].Owner)

	// Saving again re-encrypts with the active key.
	require.NoError(t, newStore.Save(ctx, "u1", sampleSession("u1", "new-key")))
	_, err = oldStore.Load(ctx, "u1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainSessionRejected(t *testing.T) {
	inner := memory.NewStore(memory.WithTTL(0))
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "u1", sampleSession("u1", "plain")))

	store := secure(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
