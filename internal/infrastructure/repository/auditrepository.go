package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"curriculum/internal/domain/course"
	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/db"
	"curriculum/internal/shared/logger"
)

// AuditRepositoryImpl runs the read-only consistency queries. Every orphan
// check is a LEFT JOIN against the referenced table so it also finds rows
// that foreign keys would have prevented on a correctly configured store.
type AuditRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewAuditRepository creates a new audit repository instance.
func NewAuditRepository(gdb *gorm.DB, logger logger.Interface) course.AuditRepository {
	return &AuditRepositoryImpl{db: gdb, logger: logger}
}

func (r *AuditRepositoryImpl) LessonLinkStats(ctx context.Context, courseID uint) ([]course.LessonLinkStat, error) {
	var rows []struct {
		LessonPlanID   uint
		LessonNumber   int
		Title          string
		TechniqueLinks int64
	}

	query := fmt.Sprintf(`SELECT lp.id AS lesson_plan_id, lp.lesson_number, lp.title, COUNT(lpt.id) AS technique_links
		FROM %s lp
		LEFT JOIN %s lpt ON lpt.lesson_plan_id = lp.id
		WHERE lp.course_id = ?
		GROUP BY lp.id, lp.lesson_number, lp.title
		ORDER BY lp.lesson_number ASC, lp.id ASC`,
		constants.TableLessonPlans, constants.TableLessonPlanTechniques)

	if err := db.GetTxFromContext(ctx, r.db).Raw(query, courseID).Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to load lesson link stats", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to load lesson link stats: %w", err)
	}

	stats := make([]course.LessonLinkStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, course.LessonLinkStat(row))
	}
	return stats, nil
}

func (r *AuditRepositoryImpl) RosterEntries(ctx context.Context, courseID uint) ([]course.RosterEntry, error) {
	var rows []course.RosterEntry
	query := fmt.Sprintf(`SELECT id, technique_id, order_index FROM %s WHERE course_id = ? ORDER BY order_index ASC, id ASC`,
		constants.TableCourseTechniques)

	if err := db.GetTxFromContext(ctx, r.db).Raw(query, courseID).Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to load course roster", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to load course roster: %w", err)
	}
	return rows, nil
}

type danglingRow struct {
	ID                      uint
	ParentID                uint
	LessonNumber            int
	TechniqueID             uint
	FoundTechniqueID        sql.NullInt64
	TechniqueOrganizationID sql.NullString
}

func (d danglingRow) toDomain() course.DanglingLink {
	return course.DanglingLink{
		ID:                      d.ID,
		ParentID:                d.ParentID,
		LessonNumber:            d.LessonNumber,
		TechniqueID:             d.TechniqueID,
		TechniqueMissing:        !d.FoundTechniqueID.Valid,
		TechniqueOrganizationID: d.TechniqueOrganizationID.String,
	}
}

func (r *AuditRepositoryImpl) DanglingLessonLinks(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error) {
	var rows []danglingRow
	query := fmt.Sprintf(`SELECT lpt.id, lpt.lesson_plan_id AS parent_id, lp.lesson_number, lpt.technique_id,
			t.id AS found_technique_id, t.organization_id AS technique_organization_id
		FROM %s lpt
		JOIN %s lp ON lp.id = lpt.lesson_plan_id
		LEFT JOIN %s t ON t.id = lpt.technique_id
		WHERE lp.course_id = ? AND (t.id IS NULL OR t.organization_id <> ?)
		ORDER BY lp.lesson_number ASC, lpt.order_index ASC`,
		constants.TableLessonPlanTechniques, constants.TableLessonPlans, constants.TableTechniques)

	if err := db.GetTxFromContext(ctx, r.db).Raw(query, courseID, organizationID).Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to scan lesson technique links", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to scan lesson technique links: %w", err)
	}
	return toDangling(rows), nil
}

func (r *AuditRepositoryImpl) DanglingRosterLinks(ctx context.Context, courseID uint, organizationID string) ([]course.DanglingLink, error) {
	var rows []danglingRow
	query := fmt.Sprintf(`SELECT ct.id, ct.course_id AS parent_id, 0 AS lesson_number, ct.technique_id,
			t.id AS found_technique_id, t.organization_id AS technique_organization_id
		FROM %s ct
		LEFT JOIN %s t ON t.id = ct.technique_id
		WHERE ct.course_id = ? AND (t.id IS NULL OR t.organization_id <> ?)
		ORDER BY ct.order_index ASC`,
		constants.TableCourseTechniques, constants.TableTechniques)

	if err := db.GetTxFromContext(ctx, r.db).Raw(query, courseID, organizationID).Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to scan roster links", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to scan roster links: %w", err)
	}
	return toDangling(rows), nil
}

func toDangling(rows []danglingRow) []course.DanglingLink {
	out := make([]course.DanglingLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func (r *AuditRepositoryImpl) LessonTechniquesOutsideRoster(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	query := fmt.Sprintf(`SELECT DISTINCT lpt.technique_id
		FROM %s lpt
		JOIN %s lp ON lp.id = lpt.lesson_plan_id
		LEFT JOIN %s ct ON ct.course_id = lp.course_id AND ct.technique_id = lpt.technique_id
		WHERE lp.course_id = ? AND ct.id IS NULL
		ORDER BY lpt.technique_id ASC`,
		constants.TableLessonPlanTechniques, constants.TableLessonPlans, constants.TableCourseTechniques)

	if err := db.GetTxFromContext(ctx, r.db).Raw(query, courseID).Scan(&ids).Error; err != nil {
		r.logger.Errorw("failed to compare lesson links with roster", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to compare lesson links with roster: %w", err)
	}
	return ids, nil
}

func (r *AuditRepositoryImpl) ParentlessRows(ctx context.Context) ([]course.ParentlessRow, error) {
	checks := []struct {
		table       string
		parentCol   string
		parentTable string
	}{
		{constants.TableLessonPlans, "course_id", constants.TableCourses},
		{constants.TableCourseTechniques, "course_id", constants.TableCourses},
		{constants.TableLessonPlanTechniques, "lesson_plan_id", constants.TableLessonPlans},
	}

	tx := db.GetTxFromContext(ctx, r.db)
	var out []course.ParentlessRow
	for _, check := range checks {
		var rows []struct {
			ID       uint
			ParentID uint
		}
		query := fmt.Sprintf(`SELECT c.id, c.%[2]s AS parent_id FROM %[1]s c LEFT JOIN %[3]s p ON p.id = c.%[2]s WHERE p.id IS NULL ORDER BY c.id ASC`,
			check.table, check.parentCol, check.parentTable)
		if err := tx.Raw(query).Scan(&rows).Error; err != nil {
			r.logger.Errorw("failed to scan parentless rows", "table", check.table, "error", err)
			return nil, fmt.Errorf("failed to scan %s: %w", check.table, err)
		}
		for _, row := range rows {
			out = append(out, course.ParentlessRow{Table: check.table, ID: row.ID, ParentID: row.ParentID})
		}
	}
	return out, nil
}
