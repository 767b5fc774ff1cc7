package course

import (
	"curriculum/internal/domain/shared"
)

// Section is one structured content block of a lesson such as warm-up or
// cool-down.
type Section struct {
	Kind            string   `json:"kind"`
	Title           string   `json:"title,omitempty"`
	Content         string   `json:"content,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Items           []string `json:"items,omitempty"`
}

// LessonPlan is one ordered unit of instruction owned by a course.
type LessonPlan struct {
	ID              uint
	CourseID        uint
	LessonNumber    int
	WeekNumber      int
	Title           string
	Description     string
	DurationMinutes int
	Level           shared.Level
	Sections        []Section
	Equipment       []string
	Objectives      []string
	Techniques      []LessonPlanTechnique
}

// LessonPlanTechnique positions a technique within one lesson.
type LessonPlanTechnique struct {
	TechniqueID       uint
	TechniqueSlug     string
	OrderIndex        int
	AllocationMinutes int
	Objective         string
}

// CourseTechnique positions a technique in the course-level roster.
type CourseTechnique struct {
	TechniqueID   uint
	TechniqueSlug string
	OrderIndex    int
	WeekNumber    int
	IsRequired    bool
}

// Graph is everything an import writes for one course besides the course row.
type Graph struct {
	Details     Details
	LessonPlans []*LessonPlan
	Roster      []CourseTechnique
}

// LessonLinkCount totals the lesson-level technique links.
func (g *Graph) LessonLinkCount() int {
	n := 0
	for _, lp := range g.LessonPlans {
		n += len(lp.Techniques)
	}
	return n
}
