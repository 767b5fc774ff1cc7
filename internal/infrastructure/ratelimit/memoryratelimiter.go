package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a fixed-window limiter for single-process deployments.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int64
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg.normalized(), now: time.Now, buckets: make(map[string]*bucket)}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.cfg.Limit <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.current(key)
	if b.count >= int64(l.cfg.Limit) {
		return false, nil
	}
	b.count++
	return true, nil
}

func (l *MemoryLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return remaining(l.cfg.Limit, l.current(key).count), nil
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// current must be called with mu held.
func (l *MemoryLimiter) current(key string) *bucket {
	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.cfg.Window {
		b = &bucket{start: now}
		l.buckets[key] = b
	}
	return b
}
