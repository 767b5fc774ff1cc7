// Package lock provides the per-key serialization primitives that keep two
// imports of the same course from running at once.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"curriculum/internal/shared/config"
	"curriculum/internal/shared/logger"
)

// ErrNotInTransaction is returned by transaction scoped lockers called
// without a transaction in the context.
var ErrNotInTransaction = errors.New("lock: transaction scoped lock requires an open transaction")

// Release gives a lock back. It is safe to call more than once.
type Release func()

// Locker acquires an exclusive lock on a key, blocking until it is free or
// ctx is done. When TransactionScoped is true the lock lives as long as the
// transaction carried by ctx and the returned Release is a no-op.
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
	TransactionScoped() bool
}

// New builds the locker selected by cfg.LockBackend.
func New(cfg config.ImportConfig, gdb *gorm.DB, rdb *redis.Client, log logger.Interface) (Locker, error) {
	switch cfg.LockBackend {
	case "", config.LockBackendMemory:
		return NewMemoryLocker(), nil
	case config.LockBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("lock backend %q requires a redis client", cfg.LockBackend)
		}
		return NewRedisLocker(rdb, cfg.LockTTL, cfg.LockRetryInterval, log), nil
	case config.LockBackendAdvisory:
		if gdb == nil || gdb.Dialector.Name() != "postgres" {
			return nil, fmt.Errorf("lock backend %q requires a postgres database", cfg.LockBackend)
		}
		return NewAdvisoryLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}
