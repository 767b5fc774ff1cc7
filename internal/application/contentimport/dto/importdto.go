package dto

import (
	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/shared/errors"
)

// ImportCourseCommand is one importCourse call.
type ImportCourseCommand struct {
	OrganizationID  string
	Raw             []byte
	Format          document.Format
	ReplaceExisting bool
	// Source names where the document came from, for logs only.
	Source string
}

// ImportMode tells which path an import took.
type ImportMode string

const (
	ModeCreate        ImportMode = "create"
	ModeReplace       ImportMode = "replace"
	ModeAlreadyExists ImportMode = "already_exists"
)

// Warning is a non-fatal finding reported alongside a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Slug    string `json:"slug,omitempty"`
}

// ImportResult is returned for every import attempt, successful or not.
type ImportResult struct {
	Success        bool           `json:"success"`
	Outcome        errors.Outcome `json:"outcome"`
	Mode           ImportMode     `json:"mode,omitempty"`
	DryRun         bool           `json:"dry_run"`
	OrganizationID string         `json:"organization_id"`
	CourseID       string         `json:"course_id,omitempty"`
	CourseName     string         `json:"course_name"`

	LessonPlansCreated      int   `json:"lesson_plans_created"`
	LessonPlansRemoved      int64 `json:"lesson_plans_removed"`
	RosterLinksRemoved      int64 `json:"roster_links_removed"`
	TechniquesCreated       int   `json:"techniques_created"`
	TechniquesReused        int   `json:"techniques_reused"`
	CourseTechniquesCreated int   `json:"course_techniques_created"`
	LessonTechniquesCreated int   `json:"lesson_techniques_created"`
	AssociationsCreated     int   `json:"associations_created"`

	// CreatedTechniques names the techniques this import added (or would add
	// on a dry run).
	CreatedTechniques []string     `json:"created_techniques,omitempty"`
	Warnings          []Warning    `json:"warnings,omitempty"`
	Audit             *AuditReport `json:"audit,omitempty"`
}

// PreviewResult is the outcome of a dry run: the counts an import would
// produce plus the lesson layout it would write.
type PreviewResult struct {
	ImportResult
	Lessons []LessonPreview `json:"lessons"`
}

// LessonPreview is one lesson of a dry run.
type LessonPreview struct {
	LessonNumber int      `json:"lesson_number"`
	WeekNumber   int      `json:"week_number"`
	Title        string   `json:"title"`
	Techniques   []string `json:"techniques"`
}

// DeleteCourseCommand removes one course and its owned subtree.
type DeleteCourseCommand struct {
	OrganizationID string
	CourseID       string
}

// DeleteCourseResult reports the removed course.
type DeleteCourseResult struct {
	CourseID    string `json:"course_id"`
	CourseName  string `json:"course_name"`
	LessonPlans int64  `json:"lesson_plans"`
}
