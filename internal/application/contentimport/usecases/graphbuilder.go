package usecases

import (
	"fmt"
	"sort"
	"strings"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/domain/course"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/utils/setutil"
)

const lessonObjectivePrefix = "Practice technique: "

// GraphBuilder assembles the lesson plans, their technique links and the
// course roster from a canonical document and its technique resolution.
type GraphBuilder struct {
	allocationMinutes int
}

func NewGraphBuilder(allocationMinutes int) *GraphBuilder {
	if allocationMinutes <= 0 {
		allocationMinutes = 15
	}
	return &GraphBuilder{allocationMinutes: allocationMinutes}
}

// ValidateLessons rejects documents that repeat a lesson number.
func (b *GraphBuilder) ValidateLessons(doc *document.Canonical) error {
	seen := make(map[int]int, len(doc.LessonPlans))
	var dups []int
	for _, l := range doc.LessonPlans {
		seen[l.LessonNumber]++
		if seen[l.LessonNumber] == 2 {
			dups = append(dups, l.LessonNumber)
		}
	}
	if len(dups) == 0 {
		return nil
	}

	sort.Ints(dups)
	numbers := make([]string, len(dups))
	for i, n := range dups {
		numbers[i] = fmt.Sprint(n)
	}
	return errors.NewDuplicateLessonNumberError("lesson numbers must be unique within a course", strings.Join(numbers, ", "))
}

// Build orders lessons by number and links each one to its techniques in
// mention order. The roster is the union of lesson techniques in first-seen
// order followed by techniques only the catalog names. Techniques absent from
// res get a zero ID, which only a dry run tolerates.
func (b *GraphBuilder) Build(doc *document.Canonical, res *Resolution) (*course.Graph, error) {
	if err := b.ValidateLessons(doc); err != nil {
		return nil, err
	}

	lessons := make([]document.LessonSpec, len(doc.LessonPlans))
	copy(lessons, doc.LessonPlans)
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].LessonNumber < lessons[j].LessonNumber
	})

	roster := setutil.NewOrderedSet[string]()
	rosterWeek := make(map[string]int)
	graph := &course.Graph{
		Details:     doc.Course.Details(),
		LessonPlans: make([]*course.LessonPlan, 0, len(lessons)),
	}

	for _, l := range lessons {
		plan := &course.LessonPlan{
			LessonNumber:    l.LessonNumber,
			WeekNumber:      l.WeekNumber,
			Title:           l.Title,
			Description:     l.Description,
			DurationMinutes: l.DurationMinutes,
			Level:           l.Level,
			Sections:        l.Sections,
			Equipment:       l.Equipment,
			Objectives:      l.Objectives,
			Techniques:      make([]course.LessonPlanTechnique, 0, len(l.Techniques)),
		}
		for i, ref := range l.Techniques {
			id, name := b.identity(res, ref)
			plan.Techniques = append(plan.Techniques, course.LessonPlanTechnique{
				TechniqueID:       id,
				TechniqueSlug:     ref.Slug,
				OrderIndex:        i + 1,
				AllocationMinutes: b.allocationMinutes,
				Objective:         lessonObjectivePrefix + name,
			})
			if roster.Add(ref.Slug) {
				rosterWeek[ref.Slug] = l.WeekNumber
			}
		}
		graph.LessonPlans = append(graph.LessonPlans, plan)
	}

	for _, ref := range doc.Techniques {
		roster.Add(ref.Slug)
	}

	byslug := make(map[string]document.TechniqueRef, len(doc.Techniques))
	for _, ref := range doc.Techniques {
		byslug[ref.Slug] = ref
	}
	graph.Roster = make([]course.CourseTechnique, 0, roster.Len())
	for i, slug := range roster.Items() {
		id, _ := b.identity(res, byslug[slug])
		week := rosterWeek[slug]
		if week < 1 {
			week = 1
		}
		graph.Roster = append(graph.Roster, course.CourseTechnique{
			TechniqueID:   id,
			TechniqueSlug: slug,
			OrderIndex:    i + 1,
			WeekNumber:    week,
			IsRequired:    true,
		})
	}
	return graph, nil
}

func (b *GraphBuilder) identity(res *Resolution, ref document.TechniqueRef) (uint, string) {
	if res != nil {
		if t, ok := res.BySlug[ref.Slug]; ok && t != nil {
			return t.ID(), t.Name()
		}
	}
	return 0, ref.Name
}
