// Package errors provides application-level error types and utilities.
// It defines the common error taxonomy (validation, not found, conflict) and the
// import specific outcomes used by the content import engine.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeUnauthorized ErrorType = "unauthorized"

	ErrorTypeMalformedDocument          ErrorType = "malformed_document"
	ErrorTypeAlreadyExists              ErrorType = "already_exists"
	ErrorTypeDuplicateLessonNumber      ErrorType = "duplicate_lesson_number"
	ErrorTypeAmbiguousTechniqueRef      ErrorType = "ambiguous_technique_reference"
	ErrorTypeImportTimeout              ErrorType = "import_timeout"
	ErrorTypeStorageConstraintViolation ErrorType = "storage_constraint_violation"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewMalformedDocumentError reports a structurally invalid course document.
func NewMalformedDocumentError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeMalformedDocument, http.StatusBadRequest, message, details)
}

// NewAlreadyExistsError reports an import that matched an existing course
// while replacement was not requested.
func NewAlreadyExistsError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAlreadyExists, http.StatusConflict, message, details)
}

// NewDuplicateLessonNumberError reports two lessons sharing a number.
func NewDuplicateLessonNumberError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeDuplicateLessonNumber, http.StatusUnprocessableEntity, message, details)
}

// NewAmbiguousTechniqueError reports conflicting metadata for one slug.
func NewAmbiguousTechniqueError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAmbiguousTechniqueRef, http.StatusUnprocessableEntity, message, details)
}

// NewImportTimeoutError wraps a lock or transaction deadline.
func NewImportTimeoutError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeImportTimeout, http.StatusGatewayTimeout, message, nil)
	e.Cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewStorageConstraintError wraps an unexpected store rejection; the cause is
// surfaced verbatim in Details.
func NewStorageConstraintError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeStorageConstraintViolation, http.StatusConflict, message, nil)
	e.Cause = cause
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	errStr := err.Error()
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	// SQLite
	return strings.Contains(errStr, "UNIQUE constraint failed")
}

// IsConstraintError reports unique, foreign key and check violations.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if IsDuplicateError(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451 || myErr.Number == 1452
	}

	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "foreign key constraint") ||
		strings.Contains(errStr, "CHECK constraint failed")
}
