package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter admits at most a fixed number of events per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Remaining(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Config bounds one limiter.
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// New returns a Redis limiter when a client is available and an in-process
// one otherwise.
func New(rdb *redis.Client, cfg Config) Limiter {
	if rdb != nil {
		return NewRedisLimiter(rdb, cfg)
	}
	return NewMemoryLimiter(cfg)
}
