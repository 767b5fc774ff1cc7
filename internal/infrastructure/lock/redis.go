package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"curriculum/internal/shared/logger"
)

const (
	redisKeyPrefix      = "curriculum:import_lock:"
	defaultRedisTTL     = 2 * time.Minute
	defaultRetryBackoff = 100 * time.Millisecond
	releaseTimeout      = 5 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes holders of a key across processes sharing a Redis.
// The TTL bounds how long a crashed holder blocks others, so it must exceed
// the import transaction timeout.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger logger.Interface
}

// NewRedisLocker creates a Redis backed locker.
func NewRedisLocker(client *redis.Client, ttl, retry time.Duration, log logger.Interface) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	if retry <= 0 {
		retry = defaultRetryBackoff
	}
	return &RedisLocker{client: client, ttl: ttl, retry: retry, logger: log}
}

// Lock polls SetNX until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Release, error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to acquire import lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release regardless.
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warnw("failed to release import lock", "key", redisKey, "error", err)
			}
		})
	}, nil
}

// TransactionScoped reports false: the lock is held until Release or TTL expiry.
func (l *RedisLocker) TransactionScoped() bool {
	return false
}
