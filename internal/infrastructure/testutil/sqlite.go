// Package testutil opens migrated sqlite databases for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"curriculum/internal/infrastructure/database"
	"curriculum/internal/infrastructure/migration"
	"curriculum/internal/shared/config"
	"curriculum/internal/shared/logger"
)

// OpenSQLite opens an empty file-backed sqlite database. A file is used
// instead of :memory: so every pooled connection sees the same data.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "curriculum_test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewSQLiteDB opens a sqlite database migrated to the latest schema version.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenSQLite(t)
	err := migration.NewGooseStrategy(logger.NewNop()).Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}
