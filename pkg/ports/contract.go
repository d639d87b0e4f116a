package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade/pkg/domain"
)

// RunSnapshotStoreContract runs a suite of tests verifying that a
// SnapshotStore implementation adheres to the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	owner := "contract-owner-" + time.Now().Format("20060102150405")

	newSnap := func(owner string) *domain.Snapshot {
		return &domain.Snapshot{
			Owner: owner,
			States: map[string]domain.SlotSnapshot{
				"AppState":  {Current: "in_game", Previous: "menu"},
				"GameState": {Current: "running", Previous: "running", Reentrant: true},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, newSnap(owner))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, owner)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, owner, loaded.Owner)
		assert.Equal(t, "in_game", loaded.States["AppState"].Current)
		assert.True(t, loaded.States["GameState"].Reentrant)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+owner)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSnap(owner)))

		require.NoError(t, store.Delete(ctx, owner))

		_, err := store.Load(ctx, owner)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := owner + "-1"
		id2 := owner + "-2"
		_ = store.Save(ctx, newSnap(id1))
		_ = store.Save(ctx, newSnap(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		owners, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, owners, id1)
		assert.Contains(t, owners, id2)
	})
}
