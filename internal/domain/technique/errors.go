package technique

import "errors"

var (
	// ErrEmptySlug indicates a name that has no letters or digits
	ErrEmptySlug = errors.New("technique name has no letters or digits")

	// ErrOrganizationRequired indicates a technique without organization scope
	ErrOrganizationRequired = errors.New("technique organization is required")
)
