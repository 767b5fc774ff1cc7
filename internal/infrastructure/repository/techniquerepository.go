package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"curriculum/internal/domain/technique"
	"curriculum/internal/infrastructure/persistence/mappers"
	"curriculum/internal/infrastructure/persistence/models"
	"curriculum/internal/shared/db"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

// TechniqueRepositoryImpl implements the technique.Repository interface.
type TechniqueRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TechniqueMapper
	logger logger.Interface
}

// NewTechniqueRepository creates a new technique repository instance.
func NewTechniqueRepository(gdb *gorm.DB, logger logger.Interface) technique.Repository {
	return &TechniqueRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewTechniqueMapper(),
		logger: logger,
	}
}

// FindBySlugs returns the organization's techniques keyed by slug.
func (r *TechniqueRepositoryImpl) FindBySlugs(ctx context.Context, organizationID string, slugs []string) (map[string]*technique.Technique, error) {
	result := make(map[string]*technique.Technique, len(slugs))
	if len(slugs) == 0 {
		return result, nil
	}

	var modelList []*models.TechniqueModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ByOrganization(organizationID)).Where("slug IN ?", slugs).Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find techniques by slug",
			"organization_id", organizationID, "count", len(slugs), "error", err)
		return nil, fmt.Errorf("failed to find techniques: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, err
	}
	for _, t := range entities {
		result[t.Slug()] = t
	}
	return result, nil
}

// InsertOrFetch inserts the technique with ON CONFLICT DO NOTHING and then
// reads back the row owning (organization, slug). A statement that does
// nothing leaves the transaction usable on every dialect, unlike a failed
// insert on PostgreSQL.
func (r *TechniqueRepositoryImpl) InsertOrFetch(ctx context.Context, t *technique.Technique) (*technique.Technique, bool, error) {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "slug"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil && !errors.IsDuplicateError(result.Error) {
		r.logger.Errorw("failed to insert technique",
			"organization_id", t.OrganizationID(), "slug", t.Slug(), "error", result.Error)
		return nil, false, fmt.Errorf("failed to insert technique: %w", result.Error)
	}
	if result.Error == nil && result.RowsAffected == 1 {
		t.SetID(model.ID)
		return t, true, nil
	}

	var existing models.TechniqueModel
	err := tx.Scopes(db.ByOrganization(t.OrganizationID())).Where("slug = ?", t.Slug()).First(&existing).Error
	if err != nil {
		r.logger.Errorw("failed to fetch technique after conflicting insert",
			"organization_id", t.OrganizationID(), "slug", t.Slug(), "error", err)
		return nil, false, fmt.Errorf("failed to fetch technique %q: %w", t.Slug(), err)
	}

	stored, err := r.mapper.ToEntity(&existing)
	if err != nil {
		return nil, false, err
	}
	r.logger.Debugw("technique created concurrently, reusing", "slug", t.Slug(), "id", stored.ID())
	return stored, false, nil
}

// CountBySlug returns the number of rows holding a slug within an organization.
func (r *TechniqueRepositoryImpl) CountBySlug(ctx context.Context, organizationID, slug string) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.TechniqueModel{}).
		Scopes(db.ByOrganization(organizationID)).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count techniques: %w", err)
	}
	return count, nil
}
