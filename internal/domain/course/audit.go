package course

import "context"

// LessonLinkStat is one lesson plan with the number of technique links it owns.
type LessonLinkStat struct {
	LessonPlanID   uint
	LessonNumber   int
	Title          string
	TechniqueLinks int64
}

// RosterEntry is one course-level roster row.
type RosterEntry struct {
	ID          uint
	TechniqueID uint
	OrderIndex  int
}

// DanglingLink is an association row whose technique is missing or belongs to
// another organization. ParentID is the owning lesson plan or course.
type DanglingLink struct {
	ID                      uint
	ParentID                uint
	LessonNumber            int
	TechniqueID             uint
	TechniqueMissing        bool
	TechniqueOrganizationID string
}

// ParentlessRow is a child row whose owning row no longer exists.
type ParentlessRow struct {
	Table    string
	ID       uint
	ParentID uint
}

// AuditRepository exposes the read-only queries of the consistency auditor.
type AuditRepository interface {
	LessonLinkStats(ctx context.Context, courseID uint) ([]LessonLinkStat, error)
	RosterEntries(ctx context.Context, courseID uint) ([]RosterEntry, error)
	DanglingLessonLinks(ctx context.Context, courseID uint, organizationID string) ([]DanglingLink, error)
	DanglingRosterLinks(ctx context.Context, courseID uint, organizationID string) ([]DanglingLink, error)
	// LessonTechniquesOutsideRoster returns technique IDs linked from a lesson
	// of the course but absent from its roster.
	LessonTechniquesOutsideRoster(ctx context.Context, courseID uint) ([]uint, error)
	// ParentlessRows scans every association and lesson plan table for rows
	// whose parent is gone. Such rows cannot be attributed to an organization.
	ParentlessRows(ctx context.Context) ([]ParentlessRow, error)
}
