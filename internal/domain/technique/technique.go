// Package technique provides the organization-scoped technique entity.
package technique

import (
	"fmt"
	"strings"
	"time"

	"curriculum/internal/domain/shared"
	"curriculum/internal/shared/id"
)

// Technique is an atomic, reusable skill shared by every course of an organization.
type Technique struct {
	id             uint
	sid            string
	organizationID string
	name           string
	slug           string
	category       Category
	difficulty     shared.Level
	description    string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewTechnique creates a technique that has not been persisted yet. An empty
// category is inferred from the name.
func NewTechnique(organizationID, name string, category Category, difficulty shared.Level, description string) (*Technique, error) {
	if organizationID == "" {
		return nil, ErrOrganizationRequired
	}
	name = strings.Join(strings.Fields(name), " ")
	slug := NormalizeSlug(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptySlug, name)
	}
	if category == "" {
		category = InferCategory(name)
	}
	if !difficulty.IsValid() {
		difficulty = shared.LevelBeginner
	}

	sid, err := id.NewTechniqueID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SID: %w", err)
	}

	now := time.Now()
	return &Technique{
		sid:            sid,
		organizationID: organizationID,
		name:           name,
		slug:           slug,
		category:       category,
		difficulty:     difficulty,
		description:    description,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructTechnique reconstructs a technique from persistence
func ReconstructTechnique(
	id uint,
	sid string,
	organizationID string,
	name string,
	slug string,
	category string,
	difficulty string,
	description string,
	createdAt, updatedAt time.Time,
) (*Technique, error) {
	if id == 0 {
		return nil, fmt.Errorf("technique ID cannot be zero")
	}
	if slug == "" {
		return nil, ErrEmptySlug
	}

	return &Technique{
		id:             id,
		sid:            sid,
		organizationID: organizationID,
		name:           name,
		slug:           slug,
		category:       Category(category),
		difficulty:     shared.Level(difficulty),
		description:    description,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (t *Technique) ID() uint                 { return t.id }
func (t *Technique) SID() string              { return t.sid }
func (t *Technique) OrganizationID() string   { return t.organizationID }
func (t *Technique) Name() string             { return t.name }
func (t *Technique) Slug() string             { return t.slug }
func (t *Technique) Category() Category       { return t.category }
func (t *Technique) Difficulty() shared.Level { return t.difficulty }
func (t *Technique) Description() string      { return t.description }
func (t *Technique) CreatedAt() time.Time     { return t.createdAt }
func (t *Technique) UpdatedAt() time.Time     { return t.updatedAt }

// IsPersisted reports whether the technique has a storage identity.
func (t *Technique) IsPersisted() bool {
	return t.id != 0
}

// SetID sets the technique ID after persistence
func (t *Technique) SetID(id uint) {
	t.id = id
}
