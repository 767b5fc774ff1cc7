// Package document turns heterogeneous course documents into one canonical
// in-memory representation. It performs no I/O and never touches storage.
package document

import (
	"fmt"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/shared"
)

// Canonical is the normalized form of a course document.
type Canonical struct {
	Course      CourseSpec   `json:"course"`
	LessonPlans []LessonSpec `json:"lesson_plans" validate:"required,min=1,dive"`
	// Techniques is every technique the document mentions, deduplicated by
	// slug in first-seen order: catalog entries first, then lesson mentions.
	Techniques []TechniqueRef `json:"techniques" validate:"dive"`
	// Conflicts lists metadata disagreements found while merging references
	// that share a slug. The later value was kept.
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// CourseSpec carries the course identity and metadata.
type CourseSpec struct {
	ID                    string         `json:"id,omitempty" validate:"max=64"`
	Name                  string         `json:"name" validate:"required,max=255"`
	Description           string         `json:"description,omitempty"`
	Level                 shared.Level   `json:"level"`
	SkillDomain           string         `json:"skill_domain,omitempty" validate:"max=100"`
	IsActive              bool           `json:"is_active"`
	IsBaseCourse          bool           `json:"is_base_course"`
	DurationWeeks         int            `json:"duration_weeks" validate:"gte=0"`
	LessonDurationMinutes int            `json:"lesson_duration_minutes" validate:"gte=0"`
	ExpectedLessons       int            `json:"expected_lessons" validate:"gte=0"`
	Objectives            []string       `json:"objectives,omitempty"`
	Equipment             []string       `json:"equipment,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
}

// Details converts the spec into the document-controlled course fields.
func (c CourseSpec) Details() course.Details {
	return course.Details{
		Name:                  c.Name,
		Description:           c.Description,
		Level:                 c.Level,
		SkillDomain:           c.SkillDomain,
		IsActive:              c.IsActive,
		IsBaseCourse:          c.IsBaseCourse,
		DurationWeeks:         c.DurationWeeks,
		LessonDurationMinutes: c.LessonDurationMinutes,
		ExpectedLessons:       c.ExpectedLessons,
		Objectives:            c.Objectives,
		Equipment:             c.Equipment,
		Metadata:              c.Metadata,
	}
}

// LessonSpec is one lesson entry. Techniques holds the merged reference for
// each distinct slug the lesson mentions, in mention order.
type LessonSpec struct {
	LessonNumber    int              `json:"lesson_number" validate:"gte=1"`
	WeekNumber      int              `json:"week_number" validate:"gte=1"`
	Title           string           `json:"title" validate:"required,max=255"`
	Description     string           `json:"description,omitempty"`
	DurationMinutes int              `json:"duration_minutes" validate:"gte=0"`
	Level           shared.Level     `json:"level"`
	Sections        []course.Section `json:"sections,omitempty"`
	Equipment       []string         `json:"equipment,omitempty"`
	Objectives      []string         `json:"objectives,omitempty"`
	Techniques      []TechniqueRef   `json:"techniques" validate:"dive"`
}

// TechniqueRef is a technique mention. Category and Difficulty stay as the
// document wrote them; the resolver parses them when it creates a technique.
type TechniqueRef struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"required"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Description string `json:"description,omitempty"`
}

// Conflict records two different values given for one field of one slug.
type Conflict struct {
	Slug     string `json:"slug"`
	Field    string `json:"field"`
	Previous string `json:"previous"`
	Value    string `json:"value"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("technique %q: %s %q replaced by %q", c.Slug, c.Field, c.Previous, c.Value)
}

// Slugs returns the slug of every technique in document order.
func (d *Canonical) Slugs() []string {
	slugs := make([]string, len(d.Techniques))
	for i, t := range d.Techniques {
		slugs[i] = t.Slug
	}
	return slugs
}
