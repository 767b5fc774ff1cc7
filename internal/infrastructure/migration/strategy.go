package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"curriculum/internal/infrastructure/persistence/models"
	"curriculum/internal/shared/logger"
)

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate brings the schema up to date
	Migrate(ctx context.Context, db *gorm.DB) error
	// GetName returns the strategy name
	GetName() string
}

// AutoMigrateModels returns the persistence models in dependency order.
func AutoMigrateModels() []any {
	return models.All()
}

// GormAutoMigrateStrategy syncs the schema straight from the models without
// recording a version. Used for local development.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

// NewGormAutoMigrateStrategy creates a new auto-migrate strategy
func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: log.With("component", "migration.automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	toMigrate := AutoMigrateModels()
	s.logger.Infow("starting gorm auto migration", "models_count", len(toMigrate))

	if err := db.WithContext(ctx).AutoMigrate(toMigrate...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	s.logger.Infow("auto migration completed successfully")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_automigrate"
}
