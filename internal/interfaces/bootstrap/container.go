// Package bootstrap wires the content import engine from configuration. The
// HTTP server and the CLI share one Container.
package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"curriculum/internal/infrastructure/config"
	"curriculum/internal/infrastructure/lock"
	"curriculum/internal/shared/logger"
)

// Container holds the infrastructure components, repositories and use cases
// of the engine.
type Container struct {
	// Core infrastructure
	DB     *gorm.DB
	Config *config.Config
	Log    logger.Interface
	Redis  *redis.Client
	Locker lock.Locker

	Repos    *Repositories
	UseCases *UseCases
}

// New builds a Container. Redis is dialed only when enabled or required by
// the lock backend.
func New(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		DB:     db,
		Config: cfg,
		Log:    log,
	}

	// Section 1: Infrastructure - Redis, Locker
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Repositories
	c.Repos = newRepositories(db, log)

	// Section 3: Use cases
	c.UseCases = newUseCases(c)

	return c, nil
}

// Close releases the connections the Container opened. The database handle
// belongs to the caller.
func (c *Container) Close() error {
	if c.Redis == nil {
		return nil
	}
	if err := c.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}
	return nil
}
