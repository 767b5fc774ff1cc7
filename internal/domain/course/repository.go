package course

import "context"

// Repository defines persistence operations for the course aggregate.
// Lookups return nil, nil when nothing matches.
type Repository interface {
	// Create inserts the course row and sets its ID.
	Create(ctx context.Context, c *Course) error

	// Update writes every document-controlled column of an existing course.
	Update(ctx context.Context, c *Course) error

	// Delete removes the course; lesson plans, their technique links and the
	// course roster go with it through cascading foreign keys.
	Delete(ctx context.Context, id uint) error

	// GetBySID retrieves a course by Stripe-style ID
	GetBySID(ctx context.Context, sid string) (*Course, error)

	// FindActiveByNaturalKey retrieves the active course with the given natural key.
	FindActiveByNaturalKey(ctx context.Context, organizationID, naturalKey string) (*Course, error)

	// ListByOrganization lists every course of an organization ordered by ID.
	ListByOrganization(ctx context.Context, organizationID string) ([]*Course, error)

	// CountLessonPlans returns how many lesson plans the course owns.
	CountLessonPlans(ctx context.Context, courseID uint) (int64, error)
}

// GraphWriter replaces the owned subtree of a course. It is only meaningful
// inside a transaction.
type GraphWriter interface {
	// DeleteChildren removes all lesson plans (cascading to their technique
	// links) and all roster rows of the course.
	DeleteChildren(ctx context.Context, courseID uint) (ChildCounts, error)

	// InsertLessonPlans bulk inserts lesson plans then their technique links,
	// setting ID and CourseID on each plan.
	InsertLessonPlans(ctx context.Context, courseID uint, plans []*LessonPlan) error

	// InsertRoster bulk inserts the course-level technique roster.
	InsertRoster(ctx context.Context, courseID uint, roster []CourseTechnique) error
}

// ChildCounts reports rows removed from a course subtree.
type ChildCounts struct {
	LessonPlans int64
	RosterLinks int64
}
