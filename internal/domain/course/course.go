// Package course provides the course aggregate: the course row, its lesson
// plans and both technique association sets.
package course

import (
	"fmt"
	"strings"
	"time"

	"curriculum/internal/domain/shared"
	"curriculum/internal/shared/id"
)

// Details is the document-controlled part of a course. A replace import
// overwrites all of it while the course identity is preserved.
type Details struct {
	Name                  string
	Description           string
	Level                 shared.Level
	SkillDomain           string
	IsActive              bool
	IsBaseCourse          bool
	DurationWeeks         int
	LessonDurationMinutes int
	ExpectedLessons       int
	Objectives            []string
	Equipment             []string
	Metadata              map[string]any
}

// Course is the aggregate root of an imported curriculum unit.
type Course struct {
	id             uint
	sid            string
	organizationID string
	naturalKey     string
	details        Details
	createdAt      time.Time
	updatedAt      time.Time
}

// NaturalKey returns the re-import identity of a course name within an
// organization: case folded, accents removed, whitespace collapsed.
func NaturalKey(name string) string {
	return shared.Fold(name)
}

// NewCourse creates a course that has not been persisted yet. An empty sid
// generates one.
func NewCourse(organizationID, sid string, details Details) (*Course, error) {
	if organizationID == "" {
		return nil, ErrOrganizationRequired
	}
	details.Name = strings.TrimSpace(details.Name)
	if details.Name == "" {
		return nil, ErrNameRequired
	}
	if sid == "" {
		generated, err := id.NewCourseID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate SID: %w", err)
		}
		sid = generated
	}

	now := time.Now()
	return &Course{
		sid:            sid,
		organizationID: organizationID,
		naturalKey:     NaturalKey(details.Name),
		details:        details,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructCourse reconstructs a course from persistence
func ReconstructCourse(
	id uint,
	sid string,
	organizationID string,
	naturalKey string,
	details Details,
	createdAt, updatedAt time.Time,
) (*Course, error) {
	if id == 0 {
		return nil, fmt.Errorf("course ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("course SID is required")
	}
	if naturalKey == "" {
		naturalKey = NaturalKey(details.Name)
	}

	return &Course{
		id:             id,
		sid:            sid,
		organizationID: organizationID,
		naturalKey:     naturalKey,
		details:        details,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (c *Course) ID() uint               { return c.id }
func (c *Course) SID() string            { return c.sid }
func (c *Course) OrganizationID() string { return c.organizationID }
func (c *Course) Name() string           { return c.details.Name }
func (c *Course) NaturalKey() string     { return c.naturalKey }
func (c *Course) IsActive() bool         { return c.details.IsActive }
func (c *Course) Details() Details       { return c.details }
func (c *Course) CreatedAt() time.Time   { return c.createdAt }
func (c *Course) UpdatedAt() time.Time   { return c.updatedAt }

// ActiveKey is the value of the unique (organization, active key) column:
// the natural key while active, nil otherwise so inactive courses never
// collide.
func (c *Course) ActiveKey() *string {
	if !c.details.IsActive {
		return nil
	}
	key := c.naturalKey
	return &key
}

// ApplyDetails replaces the document-controlled fields in place.
func (c *Course) ApplyDetails(details Details) error {
	details.Name = strings.TrimSpace(details.Name)
	if details.Name == "" {
		return ErrNameRequired
	}
	c.details = details
	c.naturalKey = NaturalKey(details.Name)
	c.updatedAt = time.Now()
	return nil
}

// SetID sets the course ID after persistence
func (c *Course) SetID(id uint) {
	c.id = id
}
