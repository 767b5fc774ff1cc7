package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/course"
	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

// AuditCourseUseCase checks the structural consistency of imported courses.
// It only reads.
type AuditCourseUseCase struct {
	courses course.Repository
	audit   course.AuditRepository
	logger  logger.Interface
}

func NewAuditCourseUseCase(courses course.Repository, audit course.AuditRepository, logger logger.Interface) *AuditCourseUseCase {
	return &AuditCourseUseCase{
		courses: courses,
		audit:   audit,
		logger:  logger,
	}
}

// Execute audits one course by SID.
func (uc *AuditCourseUseCase) Execute(ctx context.Context, courseID string) (*dto.AuditReport, error) {
	c, err := uc.courses.GetBySID(ctx, courseID)
	if err != nil {
		uc.logger.Errorw("failed to get course", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("course not found", courseID)
	}
	return uc.auditCourse(ctx, c)
}

// ExecuteOrganization audits every course of an organization.
func (uc *AuditCourseUseCase) ExecuteOrganization(ctx context.Context, organizationID string) (*dto.OrganizationAuditReport, error) {
	if organizationID == "" {
		return nil, errors.NewValidationError("organization id is required")
	}

	list, err := uc.courses.ListByOrganization(ctx, organizationID)
	if err != nil {
		uc.logger.Errorw("failed to list courses", "organization_id", organizationID, "error", err)
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	report := &dto.OrganizationAuditReport{
		OrganizationID: organizationID,
		Consistent:     true,
		Courses:        make([]*dto.AuditReport, 0, len(list)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, c := range list {
		r, err := uc.auditCourse(ctx, c)
		if err != nil {
			return nil, err
		}
		report.Courses = append(report.Courses, r)
		report.Consistent = report.Consistent && r.Consistent
	}

	uc.logger.Infow("organization audit completed",
		"organization_id", organizationID,
		"courses", len(report.Courses),
		"consistent", report.Consistent,
	)
	return report, nil
}

// ExecuteStore scans the whole store for lesson plans and association rows
// whose parent is gone. It is an operator check and is not organization
// scoped.
func (uc *AuditCourseUseCase) ExecuteStore(ctx context.Context) (*dto.StoreAuditReport, error) {
	parentless, err := uc.audit.ParentlessRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan parentless rows: %w", err)
	}

	report := &dto.StoreAuditReport{
		ParentlessRows: make([]dto.DanglingLink, 0, len(parentless)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, row := range parentless {
		report.ParentlessRows = append(report.ParentlessRows, dto.DanglingLink{
			Table:    row.Table,
			ID:       row.ID,
			ParentID: row.ParentID,
			Reason:   "parent row missing",
		})
	}
	report.Consistent = len(report.ParentlessRows) == 0

	uc.logger.Infow("store audit completed",
		"parentless_rows", len(report.ParentlessRows),
		"consistent", report.Consistent,
	)
	return report, nil
}

func (uc *AuditCourseUseCase) auditCourse(ctx context.Context, c *course.Course) (*dto.AuditReport, error) {
	details := c.Details()
	report := &dto.AuditReport{
		CourseID:        c.SID(),
		CourseName:      c.Name(),
		OrganizationID:  c.OrganizationID(),
		ExpectedLessons: details.ExpectedLessons,
		GeneratedAt:     time.Now().UTC(),
	}

	stats, err := uc.audit.LessonLinkStats(ctx, c.ID())
	if err != nil {
		return nil, err
	}
	report.LessonPlanCount = len(stats)
	numbers := make([]int, 0, len(stats))
	for _, s := range stats {
		report.Lessons = append(report.Lessons, dto.LessonAudit{
			LessonNumber:   s.LessonNumber,
			Title:          s.Title,
			TechniqueLinks: s.TechniqueLinks,
		})
		report.LessonTechniqueLinks += s.TechniqueLinks
		numbers = append(numbers, s.LessonNumber)
	}
	report.LessonNumberGaps, report.DuplicateLessonNumbers = sequenceFindings(numbers)

	roster, err := uc.audit.RosterEntries(ctx, c.ID())
	if err != nil {
		return nil, err
	}
	report.RosterSize = len(roster)
	order := make([]int, 0, len(roster))
	for _, e := range roster {
		order = append(order, e.OrderIndex)
	}
	rosterGaps, rosterDups := sequenceFindings(order)
	report.RosterOrderGaps = rosterGaps

	lessonLinks, err := uc.audit.DanglingLessonLinks(ctx, c.ID(), c.OrganizationID())
	if err != nil {
		return nil, err
	}
	rosterLinks, err := uc.audit.DanglingRosterLinks(ctx, c.ID(), c.OrganizationID())
	if err != nil {
		return nil, err
	}
	report.DanglingLinks = append(report.DanglingLinks, toDanglingLinks(constants.TableLessonPlanTechniques, lessonLinks)...)
	report.DanglingLinks = append(report.DanglingLinks, toDanglingLinks(constants.TableCourseTechniques, rosterLinks)...)

	outside, err := uc.audit.LessonTechniquesOutsideRoster(ctx, c.ID())
	if err != nil {
		return nil, err
	}
	report.LessonTechniquesOutsideRoster = outside

	for _, d := range report.DanglingLinks {
		report.Issues = append(report.Issues, fmt.Sprintf("%s row %d: %s", d.Table, d.ID, d.Reason))
	}
	if len(report.DuplicateLessonNumbers) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("duplicate lesson numbers: %v", report.DuplicateLessonNumbers))
	}
	if len(rosterGaps) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("roster order has gaps at: %v", rosterGaps))
	}
	if len(rosterDups) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("roster order repeats: %v", rosterDups))
	}
	if len(outside) > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d lesson techniques missing from the course roster", len(outside)))
	}
	if report.LessonPlanCount == 0 {
		report.Issues = append(report.Issues, "course has no lesson plans")
	}

	if details.ExpectedLessons > 0 && details.ExpectedLessons != report.LessonPlanCount {
		report.Notices = append(report.Notices, fmt.Sprintf("course declares %d lessons but has %d", details.ExpectedLessons, report.LessonPlanCount))
	}
	if len(report.LessonNumberGaps) > 0 {
		report.Notices = append(report.Notices, fmt.Sprintf("lesson numbers skip: %v", report.LessonNumberGaps))
	}

	report.Consistent = len(report.Issues) == 0
	if !report.Consistent {
		uc.logger.Warnw("course audit found issues", "course_id", c.SID(), "issues", len(report.Issues))
	}
	return report, nil
}

func toDanglingLinks(table string, links []course.DanglingLink) []dto.DanglingLink {
	out := make([]dto.DanglingLink, 0, len(links))
	for _, l := range links {
		reason := "technique missing"
		if !l.TechniqueMissing {
			reason = fmt.Sprintf("technique belongs to organization %s", l.TechniqueOrganizationID)
		}
		out = append(out, dto.DanglingLink{
			Table:        table,
			ID:           l.ID,
			ParentID:     l.ParentID,
			LessonNumber: l.LessonNumber,
			TechniqueID:  l.TechniqueID,
			Reason:       reason,
		})
	}
	return out
}

// sequenceFindings compares values against 1..max and returns the missing
// positions and the repeated values, both ascending.
func sequenceFindings(values []int) (gaps, dups []int) {
	if len(values) == 0 {
		return nil, nil
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	seen := make(map[int]int, len(sorted))
	for _, v := range sorted {
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	for n := 1; n <= sorted[len(sorted)-1]; n++ {
		if seen[n] == 0 {
			gaps = append(gaps, n)
		}
	}
	return gaps, dups
}

var _ AuditCourseExecutor = (*AuditCourseUseCase)(nil)
