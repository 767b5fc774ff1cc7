package course

import "errors"

var (
	// ErrNameRequired indicates a course without a display name
	ErrNameRequired = errors.New("course name is required")

	// ErrOrganizationRequired indicates a course without organization scope
	ErrOrganizationRequired = errors.New("course organization is required")

	// ErrInvalidLessonNumber indicates a lesson number below one
	ErrInvalidLessonNumber = errors.New("lesson number must be at least 1")
)
