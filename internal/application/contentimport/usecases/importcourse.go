package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/course"
	"curriculum/internal/infrastructure/lock"
	"curriculum/internal/shared/config"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/utils/logutil"
)

const maxLoggedNameLen = 80

// ImportCourseUseCase imports one course document as a single atomic unit:
// either the whole course graph is written or nothing is.
type ImportCourseUseCase struct {
	normalizer DocumentNormalizer
	courses    course.Repository
	resolver   *TechniqueResolver
	builder    *GraphBuilder
	swap       *SwapExecutor
	auditor    AuditCourseExecutor
	txMgr      TransactionRunner
	locker     lock.Locker
	cfg        config.ImportConfig
	logger     logger.Interface
}

// NewImportCourseUseCase wires the import pipeline. auditor may be nil, in
// which case self checks are skipped.
func NewImportCourseUseCase(
	normalizer DocumentNormalizer,
	courses course.Repository,
	resolver *TechniqueResolver,
	builder *GraphBuilder,
	swap *SwapExecutor,
	auditor AuditCourseExecutor,
	txMgr TransactionRunner,
	locker lock.Locker,
	cfg config.ImportConfig,
	logger logger.Interface,
) *ImportCourseUseCase {
	return &ImportCourseUseCase{
		normalizer: normalizer,
		courses:    courses,
		resolver:   resolver,
		builder:    builder,
		swap:       swap,
		auditor:    auditor,
		txMgr:      txMgr,
		locker:     locker,
		cfg:        cfg,
		logger:     logger,
	}
}

// Execute runs the import. A result is returned for every call that got past
// argument checks, including failed ones, so callers can report the outcome.
func (uc *ImportCourseUseCase) Execute(ctx context.Context, cmd dto.ImportCourseCommand) (*dto.ImportResult, error) {
	result := &dto.ImportResult{OrganizationID: cmd.OrganizationID}

	if cmd.OrganizationID == "" {
		return uc.fail(result, errors.NewValidationError("organization id is required"))
	}

	doc, err := uc.normalizer.Normalize(cmd.Raw, cmd.Format)
	if err != nil {
		uc.logger.Warnw("rejected course document", "organization_id", cmd.OrganizationID, "source", cmd.Source, "error", err)
		return uc.fail(result, err)
	}
	result.CourseName = doc.Course.Name

	if err := uc.builder.ValidateLessons(doc); err != nil {
		return uc.fail(result, err)
	}

	uc.logger.Infow("importing course",
		"organization_id", cmd.OrganizationID,
		"course_name", logutil.TruncateForLog(doc.Course.Name, maxLoggedNameLen),
		"lesson_plans", len(doc.LessonPlans),
		"techniques", len(doc.Techniques),
		"replace", cmd.ReplaceExisting,
		"source", cmd.Source,
	)

	// Cheap rejection before waiting on the lock. The check is repeated under
	// the lock since another import may create the course in between.
	existing, err := findExisting(ctx, uc.courses, cmd.OrganizationID, doc)
	if err != nil {
		return uc.fail(result, err)
	}
	if existing != nil && !cmd.ReplaceExisting {
		return uc.alreadyExists(result, existing)
	}

	key := lockKey(cmd.OrganizationID, doc, existing)
	if !uc.locker.TransactionScoped() {
		release, err := uc.acquire(ctx, key)
		if err != nil {
			return uc.fail(result, err)
		}
		defer release()
	}

	txCtx, cancel := uc.withTimeout(ctx, uc.cfg.TransactionTimeout)
	defer cancel()

	var (
		res      *Resolution
		graph    *course.Graph
		target   *course.Course
		removed  course.ChildCounts
		replaced bool
	)
	err = uc.txMgr.RunInTransaction(txCtx, func(txCtx context.Context) error {
		if uc.locker.TransactionScoped() {
			if _, err := uc.acquire(txCtx, key); err != nil {
				return err
			}
		}

		current, err := findExisting(txCtx, uc.courses, cmd.OrganizationID, doc)
		if err != nil {
			return err
		}
		if current != nil && !cmd.ReplaceExisting {
			target = current
			return errors.NewAlreadyExistsError("course already exists", current.SID())
		}

		res, err = uc.resolver.Resolve(txCtx, cmd.OrganizationID, doc, ResolveOptions{
			CreateMissing:     uc.cfg.CreateMissingTechniques,
			DefaultDifficulty: doc.Course.Level,
		})
		if err != nil {
			return err
		}

		graph, err = uc.builder.Build(doc, res)
		if err != nil {
			return err
		}

		if current == nil {
			target, err = uc.swap.Create(txCtx, cmd.OrganizationID, doc.Course.ID, graph)
			return err
		}
		target = current
		replaced = true
		removed, err = uc.swap.Replace(txCtx, current, graph)
		return err
	})
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeAlreadyExists) && target != nil {
			return uc.alreadyExists(result, target)
		}
		err = uc.classify(txCtx, err)
		uc.logger.Errorw("course import rolled back",
			"organization_id", cmd.OrganizationID,
			"course_name", logutil.TruncateForLog(doc.Course.Name, maxLoggedNameLen),
			"error", err,
		)
		return uc.fail(result, err)
	}

	result.Success = true
	result.Outcome = errors.OutcomeCommitted
	result.CourseID = target.SID()
	result.CourseName = target.Name()
	result.Mode = dto.ModeCreate
	if replaced {
		result.Mode = dto.ModeReplace
	}
	fillCounts(result, graph, res)
	result.LessonPlansRemoved = removed.LessonPlans
	result.RosterLinksRemoved = removed.RosterLinks

	uc.logger.Infow("course imported successfully",
		"organization_id", cmd.OrganizationID,
		"course_id", result.CourseID,
		"mode", result.Mode,
		"lesson_plans", result.LessonPlansCreated,
		"techniques_created", result.TechniquesCreated,
		"techniques_reused", result.TechniquesReused,
		"associations", result.AssociationsCreated,
	)

	if uc.cfg.SelfCheck && uc.auditor != nil {
		uc.selfCheck(ctx, result)
	}
	return result, nil
}

// acquire takes the import lock, bounded by LockTimeout.
func (uc *ImportCourseUseCase) acquire(ctx context.Context, key string) (lock.Release, error) {
	lockCtx, cancel := uc.withTimeout(ctx, uc.cfg.LockTimeout)
	defer cancel()

	release, err := uc.locker.Lock(lockCtx, key)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(lockCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewImportTimeoutError("timed out waiting for the course import lock", err)
		}
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	return release, nil
}

// selfCheck audits the committed course. Findings never undo the import.
func (uc *ImportCourseUseCase) selfCheck(ctx context.Context, result *dto.ImportResult) {
	report, err := uc.auditor.Execute(ctx, result.CourseID)
	if err != nil {
		uc.logger.Warnw("post-import audit failed", "course_id", result.CourseID, "error", err)
		result.Warnings = append(result.Warnings, dto.Warning{
			Code:    "self_check_failed",
			Message: err.Error(),
		})
		return
	}
	result.Audit = report
	if !report.Consistent {
		uc.logger.Warnw("post-import audit found issues", "course_id", result.CourseID, "issues", report.Issues)
	}
}

func (uc *ImportCourseUseCase) classify(ctx context.Context, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewImportTimeoutError("course import exceeded its transaction deadline", err)
	}
	if errors.IsConstraintError(err) {
		return errors.NewStorageConstraintError("store rejected the course graph", err)
	}
	return fmt.Errorf("failed to import course: %w", err)
}

func (uc *ImportCourseUseCase) alreadyExists(result *dto.ImportResult, existing *course.Course) (*dto.ImportResult, error) {
	result.Mode = dto.ModeAlreadyExists
	result.CourseID = existing.SID()
	result.CourseName = existing.Name()
	result.Outcome = errors.OutcomeNothingHappened

	uc.logger.Infow("course already exists, nothing imported",
		"organization_id", result.OrganizationID,
		"course_id", existing.SID(),
	)
	return result, errors.NewAlreadyExistsError("course already exists; set replace to overwrite it", existing.SID())
}

func (uc *ImportCourseUseCase) fail(result *dto.ImportResult, err error) (*dto.ImportResult, error) {
	result.Success = false
	result.Outcome = errors.ClassifyOutcome(err)
	return result, err
}

func (uc *ImportCourseUseCase) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fillCounts copies graph and resolution sizes into result.
func fillCounts(result *dto.ImportResult, g *course.Graph, res *Resolution) {
	result.LessonPlansCreated = len(g.LessonPlans)
	result.LessonTechniquesCreated = g.LessonLinkCount()
	result.CourseTechniquesCreated = len(g.Roster)
	result.AssociationsCreated = result.LessonTechniquesCreated + result.CourseTechniquesCreated
	if res == nil {
		return
	}
	result.TechniquesCreated = len(res.Created)
	result.TechniquesReused = len(res.Reused)
	result.Warnings = append(result.Warnings, res.Warnings...)
	for _, t := range res.Created {
		result.CreatedTechniques = append(result.CreatedTechniques, t.Name())
	}
}

var _ ImportCourseExecutor = (*ImportCourseUseCase)(nil)

