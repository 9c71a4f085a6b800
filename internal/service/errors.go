// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Failure classifications for the interaction pipeline. Every stage
// failure maps to exactly one of these; the translation to HTTP status
// codes happens once, in the handler layer.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUserNotFound      = errors.New("user not found")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrPersistenceFailed = errors.New("persistence failed")
)

// UnauthorizedError carries the caller-supplied message for an
// authorization failure.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// Unwrap makes the error match ErrUnauthorized with errors.Is.
func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// UserNotFoundError reports which external id failed to resolve. The
// acting-user and target-user lookups fail with distinct instances so
// the caller can tell which side was unknown.
type UserNotFoundError struct {
	ExternalID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.ExternalID)
}

// Unwrap makes the error match ErrUserNotFound with errors.Is.
func (e *UserNotFoundError) Unwrap() error {
	return ErrUserNotFound
}

// Authorize confirms that the requester's subject claim matches the
// expected external id. The comparison is byte-for-byte and
// case-sensitive; no normalization is applied. It touches nothing else,
// so an unauthorized caller incurs no database access.
func Authorize(subject, expectedExternalID, message string) error {
	if subject != expectedExternalID {
		return &UnauthorizedError{Message: message}
	}
	return nil
}
