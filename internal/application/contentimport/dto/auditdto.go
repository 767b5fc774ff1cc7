package dto

import (
	"fmt"
	"strings"
	"time"
)

// LessonAudit is the link count of one lesson plan.
type LessonAudit struct {
	LessonNumber   int    `json:"lesson_number"`
	Title          string `json:"title"`
	TechniqueLinks int64  `json:"technique_links"`
}

// DanglingLink is an association row pointing at a missing or foreign
// technique, or a row whose parent is gone.
type DanglingLink struct {
	Table        string `json:"table"`
	ID           uint   `json:"id"`
	ParentID     uint   `json:"parent_id"`
	LessonNumber int    `json:"lesson_number,omitempty"`
	TechniqueID  uint   `json:"technique_id,omitempty"`
	Reason       string `json:"reason"`
}

// AuditReport is the read-only consistency report of one course.
type AuditReport struct {
	CourseID       string `json:"course_id"`
	CourseName     string `json:"course_name"`
	OrganizationID string `json:"organization_id"`
	// Consistent is true when Issues is empty. Notices never affect it.
	Consistent bool `json:"consistent"`

	LessonPlanCount      int           `json:"lesson_plan_count"`
	ExpectedLessons      int           `json:"expected_lessons"`
	RosterSize           int           `json:"roster_size"`
	LessonTechniqueLinks int64         `json:"lesson_technique_links"`
	Lessons              []LessonAudit `json:"lessons"`

	LessonNumberGaps              []int          `json:"lesson_number_gaps,omitempty"`
	DuplicateLessonNumbers        []int          `json:"duplicate_lesson_numbers,omitempty"`
	RosterOrderGaps               []int          `json:"roster_order_gaps,omitempty"`
	DanglingLinks                 []DanglingLink `json:"dangling_links,omitempty"`
	LessonTechniquesOutsideRoster []uint         `json:"lesson_techniques_outside_roster,omitempty"`

	Issues      []string  `json:"issues,omitempty"`
	Notices     []string  `json:"notices,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// OrganizationAuditReport covers every course of one organization.
type OrganizationAuditReport struct {
	OrganizationID string         `json:"organization_id"`
	Consistent     bool           `json:"consistent"`
	Courses        []*AuditReport `json:"courses"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// StoreAuditReport lists rows whose parent is gone. Those rows belong to no
// organization, so the scan runs over the whole store.
type StoreAuditReport struct {
	Consistent     bool           `json:"consistent"`
	ParentlessRows []DanglingLink `json:"parentless_rows"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// IsConsistent reports whether the audit found no issues.
func (r *AuditReport) IsConsistent() bool { return r.Consistent }

// IsConsistent reports whether every course is clean.
func (r *OrganizationAuditReport) IsConsistent() bool { return r.Consistent }

// IsConsistent reports whether no parentless rows were found.
func (r *StoreAuditReport) IsConsistent() bool { return r.Consistent }

// Markdown renders the report for operators.
func (r *AuditReport) Markdown() string {
	var b strings.Builder
	r.writeMarkdown(&b, "#")
	return b.String()
}

func (r *AuditReport) writeMarkdown(b *strings.Builder, heading string) {
	status := "consistent"
	if !r.Consistent {
		status = "INCONSISTENT"
	}
	fmt.Fprintf(b, "%s Audit: %s (%s)\n\n", heading, escapeCell(r.CourseName), r.CourseID)
	fmt.Fprintf(b, "- Status: **%s**\n", status)
	fmt.Fprintf(b, "- Organization: %s\n", r.OrganizationID)
	fmt.Fprintf(b, "- Lesson plans: %d (expected %d)\n", r.LessonPlanCount, r.ExpectedLessons)
	fmt.Fprintf(b, "- Roster techniques: %d\n", r.RosterSize)
	fmt.Fprintf(b, "- Lesson technique links: %d\n", r.LessonTechniqueLinks)
	fmt.Fprintf(b, "- Generated at: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	if len(r.Lessons) > 0 {
		b.WriteString("| Lesson | Title | Technique links |\n|---:|---|---:|\n")
		for _, l := range r.Lessons {
			fmt.Fprintf(b, "| %d | %s | %d |\n", l.LessonNumber, escapeCell(l.Title), l.TechniqueLinks)
		}
		b.WriteString("\n")
	}

	writeList(b, heading+"# Issues", r.Issues)
	writeList(b, heading+"# Notices", r.Notices)
}

// Markdown renders the organization report for operators.
func (r *OrganizationAuditReport) Markdown() string {
	var b strings.Builder
	status := "consistent"
	if !r.Consistent {
		status = "INCONSISTENT"
	}
	fmt.Fprintf(&b, "# Organization audit: %s\n\n", r.OrganizationID)
	fmt.Fprintf(&b, "- Status: **%s**\n", status)
	fmt.Fprintf(&b, "- Courses: %d\n", len(r.Courses))
	fmt.Fprintf(&b, "- Generated at: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	for _, c := range r.Courses {
		c.writeMarkdown(&b, "##")
	}
	return b.String()
}

// Markdown renders the store scan for operators.
func (r *StoreAuditReport) Markdown() string {
	var b strings.Builder
	status := "consistent"
	if !r.Consistent {
		status = "INCONSISTENT"
	}
	b.WriteString("# Store audit\n\n")
	fmt.Fprintf(&b, "- Status: **%s**\n", status)
	fmt.Fprintf(&b, "- Parentless rows: %d\n", len(r.ParentlessRows))
	fmt.Fprintf(&b, "- Generated at: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	if len(r.ParentlessRows) > 0 {
		b.WriteString("| Table | ID | Missing parent |\n|---|---:|---:|\n")
		for _, row := range r.ParentlessRows {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", row.Table, row.ID, row.ParentID)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
