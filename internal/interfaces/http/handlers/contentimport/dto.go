package contentimport

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/utils"
)

// Audit report renderings.
const (
	AuditFormatJSON     = "json"
	AuditFormatHTML     = "html"
	AuditFormatMarkdown = "markdown"
)

// ImportCourseRequest carries the query options of POST /courses/import. The
// document itself is the raw request body.
type ImportCourseRequest struct {
	Replace bool   `json:"replace"`
	DryRun  bool   `json:"dry_run"`
	Format  string `json:"format" validate:"omitempty,oneof=auto json yaml yml"`
}

func (r *ImportCourseRequest) ToCommand(orgID string, raw []byte, contentType string) (dto.ImportCourseCommand, error) {
	format, err := r.documentFormat(contentType)
	if err != nil {
		return dto.ImportCourseCommand{}, err
	}
	return dto.ImportCourseCommand{
		OrganizationID:  orgID,
		Raw:             raw,
		Format:          format,
		ReplaceExisting: r.Replace,
		Source:          "http",
	}, nil
}

// documentFormat prefers the explicit query parameter. An unrecognized
// Content-Type falls back to sniffing the body.
func (r *ImportCourseRequest) documentFormat(contentType string) (document.Format, error) {
	if r.Format != "" {
		return document.ParseFormat(r.Format)
	}
	format, err := document.ParseFormat(contentType)
	if err != nil {
		return document.FormatAuto, nil
	}
	return format, nil
}

func parseImportCourseRequest(c *gin.Context) (*ImportCourseRequest, error) {
	replace, err := parseBoolQuery(c, "replace")
	if err != nil {
		return nil, err
	}
	dryRun, err := parseBoolQuery(c, "dry_run")
	if err != nil {
		return nil, err
	}

	req := &ImportCourseRequest{
		Replace: replace,
		DryRun:  dryRun,
		Format:  strings.ToLower(c.Query("format")),
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

// AuditRequest selects the rendering of an audit report.
type AuditRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=json html markdown"`
}

func parseAuditRequest(c *gin.Context) (*AuditRequest, error) {
	req := &AuditRequest{Format: strings.ToLower(c.DefaultQuery("format", AuditFormatJSON))}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	return req, nil
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError("invalid "+name+" parameter", raw)
	}
	return v, nil
}

func parseCourseID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if err := utils.ValidateID(id); err != nil {
		return "", errors.NewValidationError("invalid course ID")
	}
	return id, nil
}

func organizationID(c *gin.Context) (string, error) {
	orgID := c.GetString(constants.ContextKeyOrganizationID)
	if orgID == "" {
		return "", errors.NewUnauthorizedError(constants.ErrMsgOrganizationMissing)
	}
	return orgID, nil
}
