package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/shared/logger"
)

func setupTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("CURRICULUM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CURRICULUM_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Minute, 10*time.Millisecond, logger.NewNop())
	ctx := context.Background()

	release, err := locker.Lock(ctx, "org-1:krav maga")
	require.NoError(t, err)

	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "org-1:krav maga")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	again, err := locker.Lock(ctx, "org-1:krav maga")
	require.NoError(t, err)
	again()

	exists, err := client.Exists(ctx, redisKeyPrefix+"org-1:krav maga").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	client := setupTestRedis(t)
	locker := NewRedisLocker(client, time.Minute, 10*time.Millisecond, logger.NewNop())
	ctx := context.Background()

	release, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	// Simulate TTL expiry followed by another holder.
	require.NoError(t, client.Set(ctx, redisKeyPrefix+"k", "someone-else", time.Minute).Err())
	release()

	val, err := client.Get(ctx, redisKeyPrefix+"k").Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}
