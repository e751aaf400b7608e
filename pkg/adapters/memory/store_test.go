package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_NoExpiry(t *testing.T) {
	store := memory.NewStore(memory.WithTTL(0))
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_TTL_Expiration(t *testing.T) {
	store := memory.NewStore(memory.WithTTL(50*time.Millisecond), memory.WithCleanupInterval(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "idle", domain.NewSession("idle")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "idle")

	assert.Eventually(t, func() bool {
		_, err := store.Load(ctx, "idle")
		return err == domain.ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond,
		"janitor should purge expired sessions")
}

func TestMemoryStore_SaveRefreshesTTL(t *testing.T) {
	store := memory.NewStore(memory.WithTTL(150*time.Millisecond), memory.WithCleanupInterval(0))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Save(ctx, "active", domain.NewSession("active")))
		time.Sleep(60 * time.Millisecond)
	}
	_, err := store.Load(ctx, "active")
	assert.NoError(t, err, "a session saved regularly must not expire")
}
