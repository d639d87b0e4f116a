package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cascade/pkg/adapters/redis"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	snap := &domain.Snapshot{
		Owner: "owner-ttl",
		States: map[string]domain.SlotSnapshot{
			"AppState": {Current: "menu"},
		},
	}

	require.NoError(t, store.Save(ctx, snap))

	owners, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, owners, "owner-ttl")

	// Fast forward time in miniredis for key expiration.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "owner-ttl")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// Index pruning relies on time.Now(), so wait out the TTL before List.
	time.Sleep(1200 * time.Millisecond)

	owners, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Snapshot{Owner: "o1"}))
	assert.True(t, mr.Exists("custom:o1"))
}
