package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client backed by miniredis so no real
// Redis server is needed.
func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestAcquireIsSingleFlight(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewMintLock(client, time.Minute)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "att1", "holder1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second caller loses while the first still holds.
	ok, err = lock.Acquire(ctx, "att1", "holder2")
	require.NoError(t, err)
	assert.False(t, ok)

	// A different attendance is an independent lock.
	ok, err = lock.Acquire(ctx, "att2", "holder2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseOnlyByOwner(t *testing.T) {
	client, _ := setupTestRedis(t)
	lock := NewMintLock(client, time.Minute)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "att1", "holder1")
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release is a no-op.
	require.NoError(t, lock.Release(ctx, "att1", "imposter"))
	locked, err := lock.IsLocked(ctx, "att1")
	require.NoError(t, err)
	assert.True(t, locked)

	// The owner release frees the lock.
	require.NoError(t, lock.Release(ctx, "att1", "holder1"))
	locked, err = lock.IsLocked(ctx, "att1")
	require.NoError(t, err)
	assert.False(t, locked)

	ok, err = lock.Acquire(ctx, "att1", "holder2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewMintLock(client, 2*time.Second)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "att1", "holder1")
	require.NoError(t, err)
	require.True(t, ok)

	// A crashed holder never releases; the TTL frees the lock.
	mr.FastForward(3 * time.Second)

	ok, err = lock.Acquire(ctx, "att1", "holder2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseAfterExpiryIsSafe(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewMintLock(client, time.Second)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "att1", "holder1")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	assert.NoError(t, lock.Release(ctx, "att1", "holder1"))
}
