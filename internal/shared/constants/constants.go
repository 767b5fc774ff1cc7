package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType    = "Content-Type"
	HeaderXRequestID     = "X-Request-ID"
	HeaderOrganizationID = "X-Organization-ID"

	// Content Types
	ContentTypeJSON     = "application/json"
	ContentTypeYAML     = "application/yaml"
	ContentTypeHTML     = "text/html; charset=utf-8"
	ContentTypeMarkdown = "text/markdown; charset=utf-8"

	// Context keys
	ContextKeyOrganizationID = "organization_id"
	ContextKeyRequestID      = "request_id"

	// Database table names
	TableCourses              = "courses"
	TableTechniques           = "techniques"
	TableLessonPlans          = "lesson_plans"
	TableCourseTechniques     = "course_techniques"
	TableLessonPlanTechniques = "lesson_plan_techniques"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgOrganizationMissing = "organization scope is required"
)
