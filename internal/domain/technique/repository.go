package technique

import "context"

// Repository defines persistence operations for techniques.
// Techniques are shared across courses; no operation here deletes one.
type Repository interface {
	// FindBySlugs returns the organization's techniques keyed by slug.
	// Missing slugs are absent from the map.
	FindBySlugs(ctx context.Context, organizationID string, slugs []string) (map[string]*Technique, error)

	// InsertOrFetch inserts t unless (organization, slug) already exists, then
	// returns the persisted row. created is false when another writer won.
	InsertOrFetch(ctx context.Context, t *Technique) (stored *Technique, created bool, err error)

	// CountBySlug returns how many rows share a slug. Used to verify the
	// uniqueness guarantee in diagnostics.
	CountBySlug(ctx context.Context, organizationID, slug string) (int64, error)
}
