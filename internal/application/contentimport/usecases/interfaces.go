package usecases

import (
	"context"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
)

type ImportCourseExecutor interface {
	Execute(ctx context.Context, cmd dto.ImportCourseCommand) (*dto.ImportResult, error)
}

type PreviewImportExecutor interface {
	Execute(ctx context.Context, cmd dto.ImportCourseCommand) (*dto.PreviewResult, error)
}

type AuditCourseExecutor interface {
	Execute(ctx context.Context, courseID string) (*dto.AuditReport, error)
	ExecuteOrganization(ctx context.Context, organizationID string) (*dto.OrganizationAuditReport, error)
	ExecuteStore(ctx context.Context) (*dto.StoreAuditReport, error)
}

type DeleteCourseExecutor interface {
	Execute(ctx context.Context, cmd dto.DeleteCourseCommand) (*dto.DeleteCourseResult, error)
}

// TransactionRunner runs fn inside one store transaction carried by the
// context it receives.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DocumentNormalizer turns an uploaded document into canonical form.
type DocumentNormalizer interface {
	Normalize(raw []byte, format document.Format) (*document.Canonical, error)
}
