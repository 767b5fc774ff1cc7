package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"curriculum/internal/infrastructure/config"
	"curriculum/internal/infrastructure/lock"
	sharedConfig "curriculum/internal/shared/config"
	"curriculum/internal/shared/logger"
)

// ============================================================
// Section 1: Infrastructure - Redis, Locker
// ============================================================

func (c *Container) initInfrastructure() error {
	if c.Config.Redis.Enabled || c.Config.Import.LockBackend == sharedConfig.LockBackendRedis {
		rdb, err := initRedis(c.Config, c.Log)
		if err != nil {
			return err
		}
		c.Redis = rdb
	}

	locker, err := lock.New(c.Config.Import, c.DB, c.Redis, c.Log.Named("lock"))
	if err != nil {
		c.Close()
		return fmt.Errorf("failed to create import locker: %w", err)
	}
	c.Locker = locker

	c.Log.Infow("import locker ready",
		"backend", c.Config.Import.LockBackend,
		"transaction_scoped", locker.TransactionScoped())
	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}
