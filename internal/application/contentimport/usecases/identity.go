package usecases

import (
	"context"
	"fmt"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/domain/course"
	"curriculum/internal/shared/errors"
)

// lockKey serializes imports of one course identity within an organization.
// When the document resolves to a stored course the stored natural key is
// used, so an explicit id import that renames the course still takes the
// same lock as every other import or delete of that course.
func lockKey(organizationID string, doc *document.Canonical, existing *course.Course) string {
	if existing != nil {
		return courseLockKey(organizationID, existing.NaturalKey())
	}
	return courseLockKey(organizationID, course.NaturalKey(doc.Course.Name))
}

func courseLockKey(organizationID, naturalKey string) string {
	return "course-import:" + organizationID + ":" + naturalKey
}

// findExisting returns the course an import of doc would overwrite, or nil.
// An explicit document ID is matched first; it must belong to the same
// organization. Otherwise the active course with the same natural key wins.
func findExisting(ctx context.Context, courses course.Repository, organizationID string, doc *document.Canonical) (*course.Course, error) {
	if doc.Course.ID != "" {
		c, err := courses.GetBySID(ctx, doc.Course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get course by id: %w", err)
		}
		if c != nil {
			if c.OrganizationID() != organizationID {
				return nil, errors.NewConflictError("course id belongs to another organization", doc.Course.ID)
			}
			return c, nil
		}
	}

	c, err := courses.FindActiveByNaturalKey(ctx, organizationID, course.NaturalKey(doc.Course.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to find course by name: %w", err)
	}
	return c, nil
}
