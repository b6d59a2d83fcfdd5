package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent contract violations and availability problems
var (
	// Board options
	ErrInvalidGrouping = errors.New("invalid grouping dimension")
	ErrInvalidOrdering = errors.New("invalid ordering criterion")
	ErrInvalidLocale   = errors.New("invalid locale")

	// Snapshot lifecycle
	ErrSnapshotUnavailable = errors.New("no ticket snapshot is available")
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrUpstreamUnavailable = errors.New("remote snapshot source unavailable")
	ErrMalformedSnapshot   = errors.New("malformed snapshot payload")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInternalError hides err behind a generic message.
func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
