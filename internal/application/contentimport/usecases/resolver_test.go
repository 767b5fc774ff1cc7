package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curriculum/internal/application/contentimport/document"
	"curriculum/internal/domain/shared"
	"curriculum/internal/domain/technique"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
)

func resolverDoc() *document.Canonical {
	jab := document.TechniqueRef{Name: "Jab", Slug: "jab", Category: "PUNCH"}
	kick := document.TechniqueRef{Name: "Front Kick", Slug: "front-kick", Difficulty: "advanced"}
	return &document.Canonical{
		Course:      document.CourseSpec{Name: "Kickboxing"},
		LessonPlans: []document.LessonSpec{{LessonNumber: 1, Techniques: []document.TechniqueRef{jab, kick}}},
		Techniques:  []document.TechniqueRef{jab, kick},
		Conflicts:   []document.Conflict{{Slug: "jab", Field: "category", Previous: "KICK", Value: "PUNCH"}},
	}
}

func TestTechniqueResolver_CreatesMissing(t *testing.T) {
	repo := &mockTechniqueRepository{
		FindBySlugsFunc: func(ctx context.Context, org string, slugs []string) (map[string]*technique.Technique, error) {
			assert.Equal(t, []string{"jab", "front-kick"}, slugs)
			return map[string]*technique.Technique{"jab": storedTechnique(t, 7, org, "Jab")}, nil
		},
	}
	var inserted []*technique.Technique
	repo.InsertOrFetchFunc = func(ctx context.Context, tech *technique.Technique) (*technique.Technique, bool, error) {
		inserted = append(inserted, tech)
		tech.SetID(8)
		return tech, true, nil
	}

	r := NewTechniqueResolver(repo, logger.NewNop())
	res, err := r.Resolve(context.Background(), "org_1", resolverDoc(), ResolveOptions{CreateMissing: true, DefaultDifficulty: shared.LevelBeginner})
	require.NoError(t, err)

	require.Len(t, inserted, 1)
	assert.Equal(t, "front-kick", inserted[0].Slug())
	assert.Equal(t, shared.LevelAdvanced, inserted[0].Difficulty())
	assert.Equal(t, technique.CategoryKick, inserted[0].Category())

	assert.Len(t, res.Created, 1)
	assert.Len(t, res.Reused, 1)
	assert.Empty(t, res.Missing)
	assert.Equal(t, uint(7), res.BySlug["jab"].ID())
	assert.Equal(t, uint(8), res.BySlug["front-kick"].ID())

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, string(errors.ErrorTypeAmbiguousTechniqueRef), res.Warnings[0].Code)
	assert.Equal(t, "jab", res.Warnings[0].Slug)
}

func TestTechniqueResolver_ConcurrentWinnerIsReused(t *testing.T) {
	winner := storedTechnique(t, 42, "org_1", "Front Kick")
	repo := &mockTechniqueRepository{
		InsertOrFetchFunc: func(ctx context.Context, tech *technique.Technique) (*technique.Technique, bool, error) {
			if tech.Slug() == "front-kick" {
				return winner, false, nil
			}
			tech.SetID(1)
			return tech, true, nil
		},
	}

	res, err := NewTechniqueResolver(repo, logger.NewNop()).Resolve(context.Background(), "org_1", resolverDoc(), ResolveOptions{CreateMissing: true})
	require.NoError(t, err)

	assert.Len(t, res.Created, 1)
	require.Len(t, res.Reused, 1)
	assert.Same(t, winner, res.BySlug["front-kick"])
}

func TestTechniqueResolver_CreateMissingDisabled(t *testing.T) {
	repo := &mockTechniqueRepository{
		InsertOrFetchFunc: func(ctx context.Context, tech *technique.Technique) (*technique.Technique, bool, error) {
			t.Fatal("nothing may be inserted")
			return nil, false, nil
		},
	}

	res, err := NewTechniqueResolver(repo, logger.NewNop()).Resolve(context.Background(), "org_1", resolverDoc(), ResolveOptions{})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, "Jab, Front Kick", errors.GetAppError(err).Details)
}

func TestTechniqueResolver_LookupDoesNotWrite(t *testing.T) {
	repo := &mockTechniqueRepository{
		InsertOrFetchFunc: func(ctx context.Context, tech *technique.Technique) (*technique.Technique, bool, error) {
			t.Fatal("lookup must not insert")
			return nil, false, nil
		},
	}

	res, err := NewTechniqueResolver(repo, logger.NewNop()).Lookup(context.Background(), "org_1", resolverDoc())
	require.NoError(t, err)
	assert.Len(t, res.Missing, 2)
	assert.Empty(t, res.BySlug)
}
