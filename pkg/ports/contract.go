package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-test-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(userID)
		session.State.Stage = domain.StageFilter
		session.State.FilterField1 = domain.FieldAdmArea
		session.State.FilterField2 = domain.FieldOwner
		session.State.Dataset = domain.Dataset{
			{ID: 1, Owner: "X", TestDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		}
		session.Navigation.Push(navigation.NewFrame("root",
			navigation.Row(navigation.Choice{Label: "Sort", Token: "Sorting"}),
		))

		err := store.Save(ctx, userID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StageFilter, loaded.State.Stage)
		assert.Equal(t, domain.FieldOwner, loaded.State.FilterField2)
		require.Len(t, loaded.State.Dataset, 1)
		assert.Equal(t, "X", loaded.State.Dataset[0].Owner)
		assert.True(t, loaded.State.Dataset[0].TestDate.Equal(session.State.Dataset[0].TestDate))
		assert.Equal(t, 1, loaded.Navigation.Depth())
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.State.Stage = domain.StageMessage
		loaded.Navigation.Push(navigation.NewFrame("stray"))

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StageFilter, again.State.Stage, "mutating a loaded session must not leak into the store")
		assert.Equal(t, 1, again.Navigation.Depth())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, userID, domain.NewSession(userID))
		require.NoError(t, err)

		err = store.Delete(ctx, userID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
