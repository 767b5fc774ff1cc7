// Package contentimport exposes course import, preview, audit and delete
// over HTTP.
package contentimport

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/application/contentimport/usecases"
	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/services/markdown"
	"curriculum/internal/shared/utils"
)

const defaultMaxDocumentBytes = 4 << 20

type Handler struct {
	importUC  usecases.ImportCourseExecutor
	previewUC usecases.PreviewImportExecutor
	auditUC   usecases.AuditCourseExecutor
	deleteUC  usecases.DeleteCourseExecutor
	markdown  markdown.MarkdownService
	maxBytes  int64
	logger    logger.Interface
}

func NewHandler(
	importUC usecases.ImportCourseExecutor,
	previewUC usecases.PreviewImportExecutor,
	auditUC usecases.AuditCourseExecutor,
	deleteUC usecases.DeleteCourseExecutor,
	md markdown.MarkdownService,
	maxBytes int64,
	log logger.Interface,
) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	return &Handler{
		importUC:  importUC,
		previewUC: previewUC,
		auditUC:   auditUC,
		deleteUC:  deleteUC,
		markdown:  md,
		maxBytes:  maxBytes,
		logger:    log,
	}
}

// ImportCourse handles POST /courses/import
func (h *Handler) ImportCourse(c *gin.Context) {
	orgID, err := organizationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	req, err := parseImportCourseRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	raw, err := h.readBody(c)
	if err != nil {
		h.logger.Warnw("invalid request body for course import", "organization_id", orgID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd, err := req.ToCommand(orgID, raw, c.GetHeader(constants.HeaderContentType))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if req.DryRun {
		result, err := h.previewUC.Execute(c.Request.Context(), cmd)
		if err != nil {
			respondWithResult(c, err, result)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Import preview generated", result)
		return
	}

	result, err := h.importUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondWithResult(c, err, result)
		return
	}

	if result.Mode == dto.ModeReplace {
		utils.SuccessResponse(c, http.StatusOK, "Course replaced successfully", result)
		return
	}
	utils.CreatedResponse(c, result, "Course imported successfully")
}

// AuditCourse handles GET /courses/:id/audit
func (h *Handler) AuditCourse(c *gin.Context) {
	orgID, err := organizationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	courseID, err := parseCourseID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	req, err := parseAuditRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	report, err := h.auditUC.Execute(c.Request.Context(), courseID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if report.OrganizationID != orgID {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("course not found", courseID))
		return
	}

	h.renderReport(c, req.Format, report, report.Markdown)
}

// AuditOrganization handles GET /audit
func (h *Handler) AuditOrganization(c *gin.Context) {
	orgID, err := organizationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	req, err := parseAuditRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	report, err := h.auditUC.ExecuteOrganization(c.Request.Context(), orgID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.renderReport(c, req.Format, report, report.Markdown)
}

// DeleteCourse handles DELETE /courses/:id
func (h *Handler) DeleteCourse(c *gin.Context) {
	orgID, err := organizationID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	courseID, err := parseCourseID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.deleteUC.Execute(c.Request.Context(), dto.DeleteCourseCommand{
		OrganizationID: orgID,
		CourseID:       courseID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Course deleted successfully", result)
}

func (h *Handler) readBody(c *gin.Context) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewBadRequestError("document too large", err.Error())
		}
		return nil, errors.NewBadRequestError("failed to read request body", err.Error())
	}
	if len(raw) == 0 {
		return nil, errors.NewMalformedDocumentError("request body is empty")
	}
	return raw, nil
}

func (h *Handler) renderReport(c *gin.Context, format string, report any, render func() string) {
	switch format {
	case AuditFormatMarkdown:
		c.Data(http.StatusOK, constants.ContentTypeMarkdown, []byte(render()))
	case AuditFormatHTML:
		page, err := h.markdown.ReportHTML(render())
		if err != nil {
			h.logger.Errorw("failed to render audit report", "error", err)
			utils.ErrorResponseWithError(c, errors.NewInternalError("failed to render audit report"))
			return
		}
		c.Data(http.StatusOK, constants.ContentTypeHTML, []byte(page))
	default:
		utils.SuccessResponse(c, http.StatusOK, "", report)
	}
}

// respondWithResult attaches the import result to the error response so a
// caller sees the outcome and, for already_exists, the existing course id.
func respondWithResult[T any](c *gin.Context, err error, result *T) {
	if result == nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ErrorResponseWithData(c, err, result)
}
