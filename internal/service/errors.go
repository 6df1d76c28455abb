package service

import (
	"errors"
	"fmt"

	"github.com/mnemoapp/mnemo/internal/store"
)

// Common service errors - sentinel errors used across service operations.
// These errors represent expected conditions that callers may want to check
// for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in StudyServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The command layer maps service errors to user-facing messages
var (
	// ErrDeckNotFound indicates that the named deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNameExists indicates that creating or importing a deck would
	// collide with an existing deck's name.
	ErrDeckNameExists = errors.New("a deck with that name already exists")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrNoCardsDue indicates that the deck has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrInvalidOutcome indicates an unrecognized review outcome.
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// StudyServiceError wraps errors from the study service with context.
type StudyServiceError struct {
	// Operation is the operation that failed (e.g., "create_deck", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for StudyServiceError.
func (e *StudyServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("study service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("study service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StudyServiceError) Unwrap() error {
	return e.Err
}

// NewStudyServiceError creates a new StudyServiceError.
// It returns known sentinel errors directly without wrapping.
func NewStudyServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrDeckNotFound,
		ErrDeckNameExists,
		ErrCardNotFound,
		ErrNoCardsDue,
		ErrInvalidOutcome,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	return &StudyServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// mapStoreError converts store-level sentinels to their service-level
// equivalents and passes every other error through unchanged.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return ErrDeckNotFound
	case errors.Is(err, store.ErrDeckNameExists):
		return ErrDeckNameExists
	case errors.Is(err, store.ErrCardNotFound):
		return ErrCardNotFound
	default:
		return err
	}
}
