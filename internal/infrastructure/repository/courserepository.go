package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"curriculum/internal/domain/course"
	"curriculum/internal/infrastructure/persistence/mappers"
	"curriculum/internal/infrastructure/persistence/models"
	"curriculum/internal/shared/db"
	"curriculum/internal/shared/logger"
)

// CourseRepositoryImpl implements course.Repository and course.GraphWriter.
type CourseRepositoryImpl struct {
	db           *gorm.DB
	mapper       mappers.CourseMapper
	lessonMapper mappers.LessonPlanMapper
	logger       logger.Interface
}

// NewCourseRepository creates a new course repository instance.
func NewCourseRepository(gdb *gorm.DB, logger logger.Interface) *CourseRepositoryImpl {
	return &CourseRepositoryImpl{
		db:           gdb,
		mapper:       mappers.NewCourseMapper(),
		lessonMapper: mappers.NewLessonPlanMapper(),
		logger:       logger,
	}
}

var (
	_ course.Repository  = (*CourseRepositoryImpl)(nil)
	_ course.GraphWriter = (*CourseRepositoryImpl)(nil)
)

// Create inserts the course row. Store errors are returned unwrapped of any
// classification so the caller can map constraint violations.
func (r *CourseRepositoryImpl) Create(ctx context.Context, c *course.Course) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map course entity to model", "error", err)
		return fmt.Errorf("failed to map course entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create course in database", "sid", model.SID, "error", err)
		return fmt.Errorf("failed to create course: %w", err)
	}

	c.SetID(model.ID)
	r.logger.Debugw("course created", "id", model.ID, "sid", model.SID, "name", model.Name)
	return nil
}

// Update writes every document-controlled column, zero values included.
func (r *CourseRepositoryImpl) Update(ctx context.Context, c *course.Course) error {
	model, err := r.mapper.ToModel(c)
	if err != nil {
		r.logger.Errorw("failed to map course entity to model", "error", err)
		return fmt.Errorf("failed to map course entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.CourseModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":                    model.Name,
			"natural_key":             model.NaturalKey,
			"active_key":              model.ActiveKey,
			"description":             model.Description,
			"level":                   model.Level,
			"skill_domain":            model.SkillDomain,
			"is_active":               model.IsActive,
			"is_base_course":          model.IsBaseCourse,
			"duration_weeks":          model.DurationWeeks,
			"lesson_duration_minutes": model.LessonDurationMinutes,
			"expected_lessons":        model.ExpectedLessons,
			"objectives":              model.Objectives,
			"equipment":               model.Equipment,
			"metadata":                model.Metadata,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update course", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update course: course %d vanished", model.ID)
	}

	r.logger.Debugw("course updated", "id", model.ID, "name", model.Name)
	return nil
}

// Delete removes the course row; cascading foreign keys remove the subtree.
func (r *CourseRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Delete(&models.CourseModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete course", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}

	r.logger.Infow("course deleted", "id", id, "rows", result.RowsAffected)
	return nil
}

// GetBySID retrieves a course by its Stripe-style ID.
func (r *CourseRepositoryImpl) GetBySID(ctx context.Context, sid string) (*course.Course, error) {
	var model models.CourseModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get course by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// FindActiveByNaturalKey retrieves the active course matching the natural key.
func (r *CourseRepositoryImpl) FindActiveByNaturalKey(ctx context.Context, organizationID, naturalKey string) (*course.Course, error) {
	var model models.CourseModel

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Scopes(db.ByOrganization(organizationID), db.ActiveOnly()).
		Where("active_key = ?", naturalKey).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to find course by natural key",
			"organization_id", organizationID, "natural_key", naturalKey, "error", err)
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByOrganization lists every course of an organization ordered by ID.
func (r *CourseRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]*course.Course, error) {
	var modelList []*models.CourseModel

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Scopes(db.ByOrganization(organizationID)).Order("id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list courses", "organization_id", organizationID, "error", err)
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return r.mapper.ToEntities(modelList)
}

// CountLessonPlans returns how many lesson plans the course owns.
func (r *CourseRepositoryImpl) CountLessonPlans(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.LessonPlanModel{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count lesson plans: %w", err)
	}
	return count, nil
}

// DeleteChildren removes the lesson plans and roster of a course. Lesson plan
// technique links are removed by the cascading foreign key.
func (r *CourseRepositoryImpl) DeleteChildren(ctx context.Context, courseID uint) (course.ChildCounts, error) {
	var counts course.ChildCounts
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Where("course_id = ?", courseID).Delete(&models.LessonPlanModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete lesson plans", "course_id", courseID, "error", result.Error)
		return counts, fmt.Errorf("failed to delete lesson plans: %w", result.Error)
	}
	counts.LessonPlans = result.RowsAffected

	result = tx.Where("course_id = ?", courseID).Delete(&models.CourseTechniqueModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete course roster", "course_id", courseID, "error", result.Error)
		return counts, fmt.Errorf("failed to delete course roster: %w", result.Error)
	}
	counts.RosterLinks = result.RowsAffected

	return counts, nil
}

// InsertLessonPlans inserts the plans in one batch, then every technique link
// in a second batch.
func (r *CourseRepositoryImpl) InsertLessonPlans(ctx context.Context, courseID uint, plans []*course.LessonPlan) error {
	if len(plans) == 0 {
		return nil
	}

	planModels := make([]*models.LessonPlanModel, 0, len(plans))
	for _, plan := range plans {
		m, err := r.lessonMapper.ToModel(courseID, plan)
		if err != nil {
			return err
		}
		planModels = append(planModels, m)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Omit(clause.Associations).Create(&planModels).Error; err != nil {
		r.logger.Errorw("failed to insert lesson plans", "course_id", courseID, "count", len(planModels), "error", err)
		return fmt.Errorf("failed to insert lesson plans: %w", err)
	}

	var links []*models.LessonPlanTechniqueModel
	for i, plan := range plans {
		plan.ID = planModels[i].ID
		plan.CourseID = courseID
		links = append(links, r.lessonMapper.ToTechniqueModels(plan.ID, plan.Techniques)...)
	}
	if len(links) == 0 {
		return nil
	}

	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		r.logger.Errorw("failed to insert lesson plan techniques", "course_id", courseID, "count", len(links), "error", err)
		return fmt.Errorf("failed to insert lesson plan techniques: %w", err)
	}
	return nil
}

// InsertRoster inserts the course-level technique roster.
func (r *CourseRepositoryImpl) InsertRoster(ctx context.Context, courseID uint, roster []course.CourseTechnique) error {
	if len(roster) == 0 {
		return nil
	}

	rows := r.lessonMapper.ToRosterModels(courseID, roster)
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		r.logger.Errorw("failed to insert course roster", "course_id", courseID, "count", len(rows), "error", err)
		return fmt.Errorf("failed to insert course roster: %w", err)
	}
	return nil
}
