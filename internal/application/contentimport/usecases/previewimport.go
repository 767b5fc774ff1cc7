package usecases

import (
	"context"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/course"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

// PreviewImportUseCase reports what an import would do without writing.
type PreviewImportUseCase struct {
	normalizer    DocumentNormalizer
	courses       course.Repository
	resolver      *TechniqueResolver
	builder       *GraphBuilder
	// createMissing mirrors the import setting so a preview fails the same way.
	createMissing bool
	logger        logger.Interface
}

func NewPreviewImportUseCase(
	normalizer DocumentNormalizer,
	courses course.Repository,
	resolver *TechniqueResolver,
	builder *GraphBuilder,
	createMissing bool,
	logger logger.Interface,
) *PreviewImportUseCase {
	return &PreviewImportUseCase{
		normalizer:    normalizer,
		courses:       courses,
		resolver:      resolver,
		builder:       builder,
		createMissing: createMissing,
		logger:        logger,
	}
}

// Execute validates the document and computes the would-be counts. The same
// document errors an import would raise are returned, except that an
// existing course is reported through Mode rather than as an error.
func (uc *PreviewImportUseCase) Execute(ctx context.Context, cmd dto.ImportCourseCommand) (*dto.PreviewResult, error) {
	result := &dto.PreviewResult{ImportResult: dto.ImportResult{
		OrganizationID: cmd.OrganizationID,
		DryRun:         true,
	}}

	fail := func(err error) (*dto.PreviewResult, error) {
		result.Outcome = errors.ClassifyOutcome(err)
		return result, err
	}

	if cmd.OrganizationID == "" {
		return fail(errors.NewValidationError("organization id is required"))
	}

	doc, err := uc.normalizer.Normalize(cmd.Raw, cmd.Format)
	if err != nil {
		return fail(err)
	}
	result.CourseName = doc.Course.Name

	if err := uc.builder.ValidateLessons(doc); err != nil {
		return fail(err)
	}

	existing, err := findExisting(ctx, uc.courses, cmd.OrganizationID, doc)
	if err != nil {
		return fail(err)
	}

	res, err := uc.resolver.Lookup(ctx, cmd.OrganizationID, doc)
	if err != nil {
		return fail(err)
	}
	if len(res.Missing) > 0 && !uc.createMissing {
		return fail(missingTechniquesError(res.Missing))
	}

	graph, err := uc.builder.Build(doc, res)
	if err != nil {
		return fail(err)
	}

	result.Success = true
	result.Outcome = errors.OutcomeNothingHappened
	switch {
	case existing == nil:
		result.Mode = dto.ModeCreate
		result.CourseID = doc.Course.ID
	case cmd.ReplaceExisting:
		result.Mode = dto.ModeReplace
		result.CourseID = existing.SID()
		plans, err := uc.courses.CountLessonPlans(ctx, existing.ID())
		if err != nil {
			return fail(err)
		}
		result.LessonPlansRemoved = plans
	default:
		result.Mode = dto.ModeAlreadyExists
		result.CourseID = existing.SID()
	}

	if result.Mode == dto.ModeAlreadyExists {
		// Nothing would be written; only the warnings still apply.
		result.Warnings = append(result.Warnings, res.Warnings...)
	} else {
		fillCounts(&result.ImportResult, graph, res)
		result.TechniquesCreated = len(res.Missing)
		for _, ref := range res.Missing {
			result.CreatedTechniques = append(result.CreatedTechniques, ref.Name)
		}
	}

	result.Lessons = make([]dto.LessonPreview, 0, len(graph.LessonPlans))
	for _, lp := range graph.LessonPlans {
		p := dto.LessonPreview{
			LessonNumber: lp.LessonNumber,
			WeekNumber:   lp.WeekNumber,
			Title:        lp.Title,
			Techniques:   make([]string, 0, len(lp.Techniques)),
		}
		for _, t := range lp.Techniques {
			p.Techniques = append(p.Techniques, t.TechniqueSlug)
		}
		result.Lessons = append(result.Lessons, p)
	}

	uc.logger.Infow("previewed course import",
		"organization_id", cmd.OrganizationID,
		"course_name", doc.Course.Name,
		"mode", result.Mode,
		"techniques_missing", len(res.Missing),
	)
	return result, nil
}

var _ PreviewImportExecutor = (*PreviewImportUseCase)(nil)
