package migration

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"curriculum/internal/infrastructure/persistence/models"
)

const versionInitialSchema int64 = 1

// schemaMigrations returns the versioned Go migrations. They run through gorm
// so the generated DDL matches the dialect of db.
func schemaMigrations(db *gorm.DB) []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(versionInitialSchema,
			&goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
				return db.WithContext(ctx).AutoMigrate(models.All()...)
			}},
			&goose.GoFunc{RunDB: func(ctx context.Context, _ *sql.DB) error {
				tables := models.All()
				slices.Reverse(tables)
				return db.WithContext(ctx).Migrator().DropTable(tables...)
			}},
		),
	}
}

func gooseDialect(db *gorm.DB) (goose.Dialect, error) {
	switch name := db.Dialector.Name(); name {
	case "mysql":
		return goose.DialectMySQL, nil
	case "postgres":
		return goose.DialectPostgres, nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported migration dialect %q", name)
	}
}
