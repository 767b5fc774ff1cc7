package errors

// Outcome tells a caller whether a failed import changed nothing by construction
// or was applied and then rolled back.
type Outcome string

const (
	// OutcomeCommitted means the import was applied.
	OutcomeCommitted Outcome = "committed"
	// OutcomeNothingHappened covers validation failures and already-exists results.
	// These are fixed by editing the document.
	OutcomeNothingHappened Outcome = "nothing_happened"
	// OutcomeRolledBack covers timeouts and storage rejections. These warrant a retry.
	OutcomeRolledBack Outcome = "rolled_back"
)

// ClassifyOutcome maps an import error onto the caller-facing outcome.
func ClassifyOutcome(err error) Outcome {
	if err == nil {
		return OutcomeCommitted
	}
	appErr := GetAppError(err)
	if appErr == nil {
		return OutcomeRolledBack
	}
	switch appErr.Type {
	case ErrorTypeMalformedDocument,
		ErrorTypeAlreadyExists,
		ErrorTypeDuplicateLessonNumber,
		ErrorTypeAmbiguousTechniqueRef,
		ErrorTypeValidation,
		ErrorTypeBadRequest,
		ErrorTypeNotFound,
		ErrorTypeConflict,
		ErrorTypeUnauthorized:
		return OutcomeNothingHappened
	default:
		return OutcomeRolledBack
	}
}

// Retryable reports whether the caller should retry the same request.
func Retryable(err error) bool {
	return err != nil && ClassifyOutcome(err) == OutcomeRolledBack
}
