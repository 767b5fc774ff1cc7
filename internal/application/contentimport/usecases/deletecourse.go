package usecases

import (
	"context"
	"fmt"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/course"
	"curriculum/internal/infrastructure/lock"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

// DeleteCourseUseCase removes a course with its lesson plans and both
// association sets. Techniques are shared and always survive.
type DeleteCourseUseCase struct {
	courses course.Repository
	txMgr   TransactionRunner
	locker  lock.Locker
	logger  logger.Interface
}

func NewDeleteCourseUseCase(courses course.Repository, txMgr TransactionRunner, locker lock.Locker, logger logger.Interface) *DeleteCourseUseCase {
	return &DeleteCourseUseCase{
		courses: courses,
		txMgr:   txMgr,
		locker:  locker,
		logger:  logger,
	}
}

func (uc *DeleteCourseUseCase) Execute(ctx context.Context, cmd dto.DeleteCourseCommand) (*dto.DeleteCourseResult, error) {
	uc.logger.Infow("deleting course", "organization_id", cmd.OrganizationID, "course_id", cmd.CourseID)

	if cmd.OrganizationID == "" || cmd.CourseID == "" {
		return nil, errors.NewValidationError("organization id and course id are required")
	}

	c, err := uc.courses.GetBySID(ctx, cmd.CourseID)
	if err != nil {
		uc.logger.Errorw("failed to get course", "course_id", cmd.CourseID, "error", err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil || c.OrganizationID() != cmd.OrganizationID {
		return nil, errors.NewNotFoundError("course not found", cmd.CourseID)
	}

	// Same key as an import of this course, so a delete never interleaves
	// with a replace.
	key := courseLockKey(cmd.OrganizationID, c.NaturalKey())
	if !uc.locker.TransactionScoped() {
		release, err := uc.locker.Lock(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire import lock: %w", err)
		}
		defer release()
	}

	result := &dto.DeleteCourseResult{CourseID: c.SID(), CourseName: c.Name()}
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if uc.locker.TransactionScoped() {
			if _, err := uc.locker.Lock(txCtx, key); err != nil {
				return err
			}
		}
		plans, err := uc.courses.CountLessonPlans(txCtx, c.ID())
		if err != nil {
			return err
		}
		result.LessonPlans = plans
		return uc.courses.Delete(txCtx, c.ID())
	})
	if err != nil {
		uc.logger.Errorw("failed to delete course", "course_id", cmd.CourseID, "error", err)
		return nil, fmt.Errorf("failed to delete course: %w", err)
	}

	uc.logger.Infow("course deleted successfully", "course_id", cmd.CourseID, "lesson_plans", result.LessonPlans)
	return result, nil
}

var _ DeleteCourseExecutor = (*DeleteCourseUseCase)(nil)
