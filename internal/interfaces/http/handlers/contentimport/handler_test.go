package contentimport

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/interfaces/http/handlers/testutil"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/services/markdown"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockImportUC struct {
	result *dto.ImportResult
	err    error
	cmd    dto.ImportCourseCommand
	calls  int
}

func (m *mockImportUC) Execute(_ context.Context, cmd dto.ImportCourseCommand) (*dto.ImportResult, error) {
	m.cmd = cmd
	m.calls++
	return m.result, m.err
}

type mockPreviewUC struct {
	result *dto.PreviewResult
	err    error
	calls  int
}

func (m *mockPreviewUC) Execute(_ context.Context, _ dto.ImportCourseCommand) (*dto.PreviewResult, error) {
	m.calls++
	return m.result, m.err
}

type mockAuditUC struct {
	report    *dto.AuditReport
	orgReport *dto.OrganizationAuditReport
	err       error
}

func (m *mockAuditUC) Execute(_ context.Context, _ string) (*dto.AuditReport, error) {
	return m.report, m.err
}

func (m *mockAuditUC) ExecuteOrganization(_ context.Context, _ string) (*dto.OrganizationAuditReport, error) {
	return m.orgReport, m.err
}

func (m *mockAuditUC) ExecuteStore(_ context.Context) (*dto.StoreAuditReport, error) {
	return nil, m.err
}

type mockDeleteUC struct {
	result *dto.DeleteCourseResult
	err    error
	cmd    dto.DeleteCourseCommand
}

func (m *mockDeleteUC) Execute(_ context.Context, cmd dto.DeleteCourseCommand) (*dto.DeleteCourseResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

// =====================================================================
// Test helper
// =====================================================================

type testDeps struct {
	importUC  *mockImportUC
	previewUC *mockPreviewUC
	auditUC   *mockAuditUC
	deleteUC  *mockDeleteUC
	maxBytes  int64
}

func newTestHandler(deps testDeps) *Handler {
	if deps.importUC == nil {
		deps.importUC = &mockImportUC{}
	}
	if deps.previewUC == nil {
		deps.previewUC = &mockPreviewUC{}
	}
	if deps.auditUC == nil {
		deps.auditUC = &mockAuditUC{}
	}
	if deps.deleteUC == nil {
		deps.deleteUC = &mockDeleteUC{}
	}
	return NewHandler(deps.importUC, deps.previewUC, deps.auditUC, deps.deleteUC,
		markdown.NewMarkdownService(), deps.maxBytes, testutil.NewMockLogger())
}

const courseYAML = `
course:
  name: Boxing
lessons:
  - lesson_number: 1
    techniques: [Jab]
`

// =====================================================================
// ImportCourse
// =====================================================================

func TestHandler_ImportCourse_Created(t *testing.T) {
	importUC := &mockImportUC{result: &dto.ImportResult{Success: true, Mode: dto.ModeCreate, CourseID: "crs_1"}}
	handler := newTestHandler(testDeps{importUC: importUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", courseYAML)
	testutil.SetOrganization(c, "org_1")
	testutil.SetHeader(c, "Content-Type", "application/yaml")

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "org_1", importUC.cmd.OrganizationID)
	assert.Equal(t, document.FormatYAML, importUC.cmd.Format)
	assert.False(t, importUC.cmd.ReplaceExisting)
	assert.Equal(t, courseYAML, string(importUC.cmd.Raw))

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var result dto.ImportResult
	require.NoError(t, testutil.ParseData(resp, &result))
	assert.Equal(t, "crs_1", result.CourseID)
}

func TestHandler_ImportCourse_ReplaceReturnsOK(t *testing.T) {
	importUC := &mockImportUC{result: &dto.ImportResult{Success: true, Mode: dto.ModeReplace}}
	handler := newTestHandler(testDeps{importUC: importUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", courseYAML)
	testutil.SetOrganization(c, "org_1")
	testutil.SetQueryParams(c, map[string]string{"replace": "true", "format": "yaml"})

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, importUC.cmd.ReplaceExisting)
	assert.Equal(t, document.FormatYAML, importUC.cmd.Format)
}

func TestHandler_ImportCourse_AlreadyExistsCarriesResult(t *testing.T) {
	importUC := &mockImportUC{
		result: &dto.ImportResult{Mode: dto.ModeAlreadyExists, CourseID: "crs_existing", Outcome: errors.OutcomeNothingHappened},
		err:    errors.NewAlreadyExistsError("course already exists; set replace to overwrite it", "crs_existing"),
	}
	handler := newTestHandler(testDeps{importUC: importUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", courseYAML)
	testutil.SetOrganization(c, "org_1")

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ErrorTypeAlreadyExists), resp.Error.Type)
	assert.Equal(t, "nothing_happened", resp.Error.Outcome)
	assert.False(t, resp.Error.Retryable)

	var result dto.ImportResult
	require.NoError(t, testutil.ParseData(resp, &result))
	assert.Equal(t, "crs_existing", result.CourseID)
}

func TestHandler_ImportCourse_TimeoutIsRetryable(t *testing.T) {
	importUC := &mockImportUC{
		result: &dto.ImportResult{Outcome: errors.OutcomeRolledBack},
		err:    errors.NewImportTimeoutError("timed out waiting for the course import lock", context.DeadlineExceeded),
	}
	handler := newTestHandler(testDeps{importUC: importUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", courseYAML)
	testutil.SetOrganization(c, "org_1")

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, "rolled_back", resp.Error.Outcome)
	assert.True(t, resp.Error.Retryable)
}

func TestHandler_ImportCourse_DryRunUsesPreview(t *testing.T) {
	importUC := &mockImportUC{}
	previewUC := &mockPreviewUC{result: &dto.PreviewResult{ImportResult: dto.ImportResult{Success: true, DryRun: true}}}
	handler := newTestHandler(testDeps{importUC: importUC, previewUC: previewUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", courseYAML)
	testutil.SetOrganization(c, "org_1")
	testutil.SetQueryParams(c, map[string]string{"dry_run": "1"})

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, previewUC.calls)
	assert.Zero(t, importUC.calls)
}

func TestHandler_ImportCourse_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		org    string
		body   string
		query  map[string]string
		status int
	}{
		{name: "missing organization", body: courseYAML, status: http.StatusUnauthorized},
		{name: "empty body", org: "org_1", status: http.StatusBadRequest},
		{name: "bad replace flag", org: "org_1", body: courseYAML, query: map[string]string{"replace": "maybe"}, status: http.StatusBadRequest},
		{name: "unknown format", org: "org_1", body: courseYAML, query: map[string]string{"format": "xml"}, status: http.StatusBadRequest},
		{name: "too large", org: "org_1", body: strings.Repeat("a", 64), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importUC := &mockImportUC{}
			handler := newTestHandler(testDeps{importUC: importUC, maxBytes: 32})

			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", tt.body)
			if tt.org != "" {
				testutil.SetOrganization(c, tt.org)
			}
			if tt.query != nil {
				testutil.SetQueryParams(c, tt.query)
			}

			handler.ImportCourse(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Zero(t, importUC.calls)

			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, "nothing_happened", resp.Error.Outcome)
		})
	}
}

func TestHandler_ImportCourse_UnknownContentTypeIsSniffed(t *testing.T) {
	importUC := &mockImportUC{result: &dto.ImportResult{Success: true, Mode: dto.ModeCreate}}
	handler := newTestHandler(testDeps{importUC: importUC})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/courses/import", `{"course":{"name":"Boxing"}}`)
	testutil.SetOrganization(c, "org_1")
	testutil.SetHeader(c, "Content-Type", "text/plain")

	handler.ImportCourse(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, document.FormatAuto, importUC.cmd.Format)
}

// =====================================================================
// AuditCourse
// =====================================================================

func auditReport() *dto.AuditReport {
	return &dto.AuditReport{
		CourseID:        "crs_1",
		CourseName:      "Boxing",
		OrganizationID:  "org_1",
		Consistent:      false,
		LessonPlanCount: 1,
		ExpectedLessons: 2,
		Issues:          []string{"lesson 1 links a missing technique"},
	}
}

func TestHandler_AuditCourse_JSON(t *testing.T) {
	handler := newTestHandler(testDeps{auditUC: &mockAuditUC{report: auditReport()}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/courses/crs_1/audit", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_1")

	handler.AuditCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var report dto.AuditReport
	require.NoError(t, testutil.ParseData(resp, &report))
	assert.False(t, report.Consistent)
	assert.Len(t, report.Issues, 1)
}

func TestHandler_AuditCourse_Renderings(t *testing.T) {
	handler := newTestHandler(testDeps{auditUC: &mockAuditUC{report: auditReport()}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/courses/crs_1/audit", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_1")
	testutil.SetQueryParams(c, map[string]string{"format": "markdown"})
	handler.AuditCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Audit: Boxing (crs_1)")

	c, w = testutil.NewTestContext(http.MethodGet, "/api/v1/courses/crs_1/audit", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_1")
	testutil.SetQueryParams(c, map[string]string{"format": "html"})
	handler.AuditCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "INCONSISTENT")
}

func TestHandler_AuditCourse_ForeignOrganizationIsNotFound(t *testing.T) {
	handler := newTestHandler(testDeps{auditUC: &mockAuditUC{report: auditReport()}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/courses/crs_1/audit", nil)
	testutil.SetOrganization(c, "org_2")
	testutil.SetURLParam(c, "id", "crs_1")

	handler.AuditCourse(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_AuditCourse_BadFormat(t *testing.T) {
	handler := newTestHandler(testDeps{auditUC: &mockAuditUC{report: auditReport()}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/courses/crs_1/audit", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_1")
	testutil.SetQueryParams(c, map[string]string{"format": "pdf"})

	handler.AuditCourse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AuditOrganization(t *testing.T) {
	orgReport := &dto.OrganizationAuditReport{OrganizationID: "org_1", Consistent: true, Courses: []*dto.AuditReport{}}
	handler := newTestHandler(testDeps{auditUC: &mockAuditUC{orgReport: orgReport}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/audit", nil)
	testutil.SetOrganization(c, "org_1")

	handler.AuditOrganization(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var report dto.OrganizationAuditReport
	require.NoError(t, testutil.ParseData(resp, &report))
	assert.True(t, report.Consistent)
}

// =====================================================================
// DeleteCourse
// =====================================================================

func TestHandler_DeleteCourse(t *testing.T) {
	deleteUC := &mockDeleteUC{result: &dto.DeleteCourseResult{CourseID: "crs_1", LessonPlans: 3}}
	handler := newTestHandler(testDeps{deleteUC: deleteUC})

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/courses/crs_1", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_1")

	handler.DeleteCourse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.DeleteCourseCommand{OrganizationID: "org_1", CourseID: "crs_1"}, deleteUC.cmd)
}

func TestHandler_DeleteCourse_NotFound(t *testing.T) {
	deleteUC := &mockDeleteUC{err: errors.NewNotFoundError("course not found", "crs_404")}
	handler := newTestHandler(testDeps{deleteUC: deleteUC})

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/courses/crs_404", nil)
	testutil.SetOrganization(c, "org_1")
	testutil.SetURLParam(c, "id", "crs_404")

	handler.DeleteCourse(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
