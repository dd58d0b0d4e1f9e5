package port

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden indicates the backend rejected the request due to authorization.
	ErrForbidden = errors.New("backend request forbidden")
	// ErrNotFound indicates the requested backend resource does not exist.
	ErrNotFound = errors.New("backend resource not found")
	// ErrUnsupported is returned when a screen has no endpoint for the requested operation.
	ErrUnsupported = errors.New("operation unsupported for screen")
	// ErrMalformedResponse indicates the backend answered with an unexpected payload shape.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrRejected matches every RejectedError.
	ErrRejected = errors.New("request rejected by backend")
	// ErrValidation wraps input checks that fail before any request is sent.
	ErrValidation = errors.New("validation failed")
)

// RejectedError is a business failure reported by the backend (duplicate, conflict, ...).
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected by backend (status %d)", e.Status)
	}
	return fmt.Sprintf("request rejected by backend (status %d): %s", e.Status, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// PublicMessage is the backend's own wording, safe to show to the user.
func (e *RejectedError) PublicMessage() string {
	return e.Message
}

// Invalid wraps a validation failure with a user-facing reason.
func Invalid(format string, args ...any) error {
	return &validationError{reason: strings.TrimSpace(fmt.Sprintf(format, args...))}
}

type validationError struct {
	reason string
}

func (e *validationError) Error() string         { return "validation failed: " + e.reason }
func (e *validationError) Is(target error) bool  { return target == ErrValidation }
func (e *validationError) PublicMessage() string { return e.reason }
