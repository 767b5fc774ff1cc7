package bootstrap

import (
	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/usecases"
	"curriculum/internal/shared/services/markdown"
)

// ============================================================
// Section 3: Use cases
// ============================================================

// UseCases holds the content import use cases.
type UseCases struct {
	Import  *usecases.ImportCourseUseCase
	Preview *usecases.PreviewImportUseCase
	Audit   *usecases.AuditCourseUseCase
	Delete  *usecases.DeleteCourseUseCase

	// Markdown renders audit reports for HTTP and CLI output.
	Markdown markdown.MarkdownService
}

func newUseCases(c *Container) *UseCases {
	cfg := c.Config.Import
	log := c.Log.Named("contentimport")
	repos := c.Repos

	md := markdown.NewMarkdownService()
	normalizer := document.NewNormalizer(md, document.Options{DefaultLessonMinutes: cfg.DefaultLessonMinutes})
	resolver := usecases.NewTechniqueResolver(repos.Techniques, log)
	builder := usecases.NewGraphBuilder(cfg.DefaultAllocationMinutes)
	swap := usecases.NewSwapExecutor(repos.Courses, repos.Courses, log)
	audit := usecases.NewAuditCourseUseCase(repos.Courses, repos.Audit, log)

	return &UseCases{
		Import:   usecases.NewImportCourseUseCase(normalizer, repos.Courses, resolver, builder, swap, audit, repos.TxManager, c.Locker, cfg, log),
		Preview:  usecases.NewPreviewImportUseCase(normalizer, repos.Courses, resolver, builder, cfg.CreateMissingTechniques, log),
		Audit:    audit,
		Delete:   usecases.NewDeleteCourseUseCase(repos.Courses, repos.TxManager, c.Locker, log),
		Markdown: md,
	}
}
