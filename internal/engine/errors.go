package engine

import (
	"errors"
	"fmt"
)

// StateError reports input the engine refused: an unknown algorithm tag or
// an inconsistent snapshot passed to Restore.
type StateError struct {
	// Code identifies the error category.
	Code StateErrorCode

	// Field names the offending snapshot field, if any.
	Field string

	// Message is a human-readable description.
	Message string
}

// StateErrorCode categorizes state errors.
type StateErrorCode string

const (
	// ErrCodeUnknownAlgorithm indicates a tag with no catalog entry.
	ErrCodeUnknownAlgorithm StateErrorCode = "UNKNOWN_ALGORITHM"

	// ErrCodeInvalidState indicates a snapshot field out of range.
	ErrCodeInvalidState StateErrorCode = "INVALID_STATE"
)

// Error implements the error interface.
func (e *StateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownAlgorithm reports whether err is an unknown-algorithm error.
// Uses errors.As to handle wrapped errors.
func IsUnknownAlgorithm(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUnknownAlgorithm
	}
	return false
}

// IsInvalidState reports whether err is an invalid-snapshot error.
func IsInvalidState(err error) bool {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidState
	}
	return false
}

func invalidState(field, format string, args ...any) *StateError {
	return &StateError{
		Code:    ErrCodeInvalidState,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
