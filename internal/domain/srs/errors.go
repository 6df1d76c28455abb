package srs

import (
	"errors"
	"fmt"
)

// Common scheduling errors.
var (
	// ErrInvalidOutcome is returned when a review is submitted with an
	// outcome value outside the defined enumeration.
	ErrInvalidOutcome = errors.New("invalid review outcome")

	// ErrInvalidParams is returned when scheduling parameters fail validation.
	ErrInvalidParams = errors.New("invalid scheduling parameters")
)

// SnapshotError describes a malformed entry found while validating a
// snapshot during import. The import is rejected as a whole; no records
// are modified when a SnapshotError is returned.
type SnapshotError struct {
	CardID  string // card whose state is malformed
	Field   string // offending snapshot field, when known
	Message string // what is wrong with the value
	Err     error  // underlying cause, if any
}

// Error implements the error interface for SnapshotError.
func (e *SnapshotError) Error() string {
	msg := fmt.Sprintf("invalid review state for card %q", e.CardID)
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

func newSnapshotError(cardID, field, message string) *SnapshotError {
	return &SnapshotError{CardID: cardID, Field: field, Message: message}
}
