package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrEmptyTitle indicates that an entry has no displayable title
	ErrEmptyTitle = errors.New("title is required")

	// ErrInvalidEntryURL indicates that an entry link is not an absolute http(s) URL
	ErrInvalidEntryURL = errors.New("url must be an absolute http or https URL")

	// ErrZeroDeadline indicates that an entry carries no deadline
	ErrZeroDeadline = errors.New("deadline is required")

	// ErrUnknownSourceKind indicates a source kind with no registered scraper
	ErrUnknownSourceKind = errors.New("unknown source kind")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidationFailed for any ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
