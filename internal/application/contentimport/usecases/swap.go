package usecases

import (
	"context"
	"fmt"

	"curriculum/internal/domain/course"
	"curriculum/internal/shared/logger"
)

// SwapExecutor writes a built graph for a new course or swaps the owned
// subtree of an existing one. Callers run it inside one transaction.
type SwapExecutor struct {
	courses course.Repository
	graph   course.GraphWriter
	logger  logger.Interface
}

func NewSwapExecutor(courses course.Repository, graph course.GraphWriter, logger logger.Interface) *SwapExecutor {
	return &SwapExecutor{
		courses: courses,
		graph:   graph,
		logger:  logger,
	}
}

// Create inserts the course row then its lesson plans, lesson links and roster.
func (s *SwapExecutor) Create(ctx context.Context, organizationID, sid string, g *course.Graph) (*course.Course, error) {
	if err := checkResolved(g); err != nil {
		return nil, err
	}

	c, err := course.NewCourse(organizationID, sid, g.Details)
	if err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	if err := s.insertChildren(ctx, c.ID(), g); err != nil {
		return nil, err
	}

	s.logger.Debugw("course graph created",
		"course_id", c.SID(),
		"lesson_plans", len(g.LessonPlans),
		"roster", len(g.Roster),
	)
	return c, nil
}

// Replace deletes the owned subtree of existing, overwrites its details and
// inserts the new subtree. The course row and its SID are preserved.
func (s *SwapExecutor) Replace(ctx context.Context, existing *course.Course, g *course.Graph) (course.ChildCounts, error) {
	if err := checkResolved(g); err != nil {
		return course.ChildCounts{}, err
	}

	removed, err := s.graph.DeleteChildren(ctx, existing.ID())
	if err != nil {
		return course.ChildCounts{}, fmt.Errorf("failed to delete course children: %w", err)
	}
	if err := existing.ApplyDetails(g.Details); err != nil {
		return course.ChildCounts{}, err
	}
	if err := s.courses.Update(ctx, existing); err != nil {
		return course.ChildCounts{}, fmt.Errorf("failed to update course: %w", err)
	}
	if err := s.insertChildren(ctx, existing.ID(), g); err != nil {
		return course.ChildCounts{}, err
	}

	s.logger.Debugw("course graph replaced",
		"course_id", existing.SID(),
		"lesson_plans_removed", removed.LessonPlans,
		"roster_removed", removed.RosterLinks,
		"lesson_plans", len(g.LessonPlans),
	)
	return removed, nil
}

func (s *SwapExecutor) insertChildren(ctx context.Context, courseID uint, g *course.Graph) error {
	if err := s.graph.InsertLessonPlans(ctx, courseID, g.LessonPlans); err != nil {
		return fmt.Errorf("failed to insert lesson plans: %w", err)
	}
	if err := s.graph.InsertRoster(ctx, courseID, g.Roster); err != nil {
		return fmt.Errorf("failed to insert course techniques: %w", err)
	}
	return nil
}

// checkResolved refuses graphs built from a read-only lookup.
func checkResolved(g *course.Graph) error {
	for _, lp := range g.LessonPlans {
		for _, t := range lp.Techniques {
			if t.TechniqueID == 0 {
				return fmt.Errorf("lesson %d references unresolved technique %q", lp.LessonNumber, t.TechniqueSlug)
			}
		}
	}
	for _, t := range g.Roster {
		if t.TechniqueID == 0 {
			return fmt.Errorf("roster references unresolved technique %q", t.TechniqueSlug)
		}
	}
	return nil
}
