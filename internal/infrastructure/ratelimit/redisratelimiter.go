package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding-window limiter shared by every server instance.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg.normalized()}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.cfg.Limit <= 0 {
		return true, nil
	}

	now := time.Now()
	redisKey := l.key(key)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", now.Add(-l.cfg.Window).UnixNano()))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	pipe.Expire(ctx, redisKey, l.cfg.Window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return zcard.Val() < int64(l.cfg.Limit), nil
}

// Remaining returns how many events the key may still record in the
// current window.
func (l *RedisLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	redisKey := l.key(key)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", time.Now().Add(-l.cfg.Window).UnixNano()))
	zcard := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to get remaining: %w", err)
	}

	return remaining(l.cfg.Limit, zcard.Val()), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", l.key(key), err)
	}
	return nil
}

func (l *RedisLimiter) key(identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", identifier, l.cfg.Window.String())
}

func remaining(limit int, used int64) int64 {
	if left := int64(limit) - used; left > 0 {
		return left
	}
	return 0
}
