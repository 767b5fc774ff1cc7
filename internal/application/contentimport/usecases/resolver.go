package usecases

import (
	"context"
	"fmt"
	"strings"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/application/contentimport/dto"
	"curriculum/internal/domain/shared"
	"curriculum/internal/domain/technique"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

// ResolveOptions controls how missing techniques are handled.
type ResolveOptions struct {
	CreateMissing bool
	// DefaultDifficulty applies to new techniques whose reference gives none.
	DefaultDifficulty shared.Level
}

// Resolution maps every slug of a document to its stored technique.
type Resolution struct {
	BySlug  map[string]*technique.Technique
	Created []*technique.Technique
	Reused  []*technique.Technique
	// Missing holds references with no stored technique. Only a read-only
	// Lookup leaves it non-empty.
	Missing  []document.TechniqueRef
	Warnings []dto.Warning
}

// TechniqueResolver maps technique references to organization-scoped
// techniques, creating the ones that do not exist yet.
type TechniqueResolver struct {
	repo   technique.Repository
	logger logger.Interface
}

func NewTechniqueResolver(repo technique.Repository, logger logger.Interface) *TechniqueResolver {
	return &TechniqueResolver{
		repo:   repo,
		logger: logger,
	}
}

// Lookup resolves references against stored techniques without writing.
func (r *TechniqueResolver) Lookup(ctx context.Context, organizationID string, doc *document.Canonical) (*Resolution, error) {
	existing, err := r.repo.FindBySlugs(ctx, organizationID, doc.Slugs())
	if err != nil {
		return nil, fmt.Errorf("failed to look up techniques: %w", err)
	}

	res := &Resolution{BySlug: make(map[string]*technique.Technique, len(doc.Techniques))}
	for _, ref := range doc.Techniques {
		if t, ok := existing[ref.Slug]; ok {
			res.BySlug[ref.Slug] = t
			res.Reused = append(res.Reused, t)
			continue
		}
		res.Missing = append(res.Missing, ref)
	}

	for _, c := range doc.Conflicts {
		r.logger.Warnw("conflicting technique metadata, keeping last value",
			"organization_id", organizationID,
			"slug", c.Slug,
			"field", c.Field,
			"previous", c.Previous,
			"value", c.Value,
		)
		res.Warnings = append(res.Warnings, dto.Warning{
			Code:    string(errors.ErrorTypeAmbiguousTechniqueRef),
			Message: c.String(),
			Slug:    c.Slug,
		})
	}
	return res, nil
}

// Resolve looks up every reference and inserts the missing ones. It must run
// inside the import transaction. A slug created concurrently by another
// import is fetched instead, so one slug never yields two rows.
func (r *TechniqueResolver) Resolve(ctx context.Context, organizationID string, doc *document.Canonical, opts ResolveOptions) (*Resolution, error) {
	res, err := r.Lookup(ctx, organizationID, doc)
	if err != nil {
		return nil, err
	}
	if len(res.Missing) == 0 {
		return res, nil
	}

	if !opts.CreateMissing {
		return nil, missingTechniquesError(res.Missing)
	}

	for _, ref := range res.Missing {
		difficulty := opts.DefaultDifficulty
		if ref.Difficulty != "" {
			difficulty = shared.ParseLevel(ref.Difficulty)
		}

		t, err := technique.NewTechnique(organizationID, ref.Name, technique.ParseCategory(ref.Category), difficulty, ref.Description)
		if err != nil {
			return nil, errors.NewMalformedDocumentError("invalid technique reference", err.Error())
		}

		stored, created, err := r.repo.InsertOrFetch(ctx, t)
		if err != nil {
			r.logger.Errorw("failed to insert technique", "slug", ref.Slug, "error", err)
			return nil, fmt.Errorf("failed to insert technique %q: %w", ref.Slug, err)
		}

		res.BySlug[ref.Slug] = stored
		if created {
			res.Created = append(res.Created, stored)
		} else {
			r.logger.Debugw("technique created by a concurrent import, reusing", "slug", ref.Slug, "technique_id", stored.ID())
			res.Reused = append(res.Reused, stored)
		}
	}
	res.Missing = nil
	return res, nil
}

func missingTechniquesError(missing []document.TechniqueRef) error {
	names := make([]string, len(missing))
	for i, ref := range missing {
		names[i] = ref.Name
	}
	return errors.NewValidationError("document references techniques that do not exist", strings.Join(names, ", "))
}
