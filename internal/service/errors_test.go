package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mnemoapp/mnemo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		assert.Equal(t, "deck not found", ErrDeckNotFound.Error())
		assert.Equal(t, "a deck with that name already exists", ErrDeckNameExists.Error())
		assert.Equal(t, "card not found", ErrCardNotFound.Error())
		assert.Equal(t, "no cards due for review", ErrNoCardsDue.Error())
		assert.Equal(t, "invalid review outcome", ErrInvalidOutcome.Error())
	})

	t.Run("sentinels are distinct", func(t *testing.T) {
		assert.False(t, errors.Is(ErrDeckNotFound, ErrCardNotFound))
		assert.False(t, errors.Is(ErrDeckNameExists, ErrDeckNotFound))
		assert.False(t, errors.Is(ErrNoCardsDue, ErrInvalidOutcome))
	})
}

func TestStudyServiceError_Error(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		message   string
		err       error
		expected  string
	}{
		{
			name:      "with underlying error",
			operation: "create_deck",
			message:   "failed to save deck",
			err:       errors.New("database connection failed"),
			expected:  "study service create_deck failed: failed to save deck: database connection failed",
		},
		{
			name:      "without underlying error",
			operation: "flush_state",
			message:   "failed to write review state",
			err:       nil,
			expected:  "study service flush_state failed: failed to write review state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceErr := &StudyServiceError{
				Operation: tt.operation,
				Message:   tt.message,
				Err:       tt.err,
			}
			assert.Equal(t, tt.expected, serviceErr.Error())
		})
	}
}

func TestStudyServiceError_Unwrap(t *testing.T) {
	underlying := errors.New("disk full")
	serviceErr := &StudyServiceError{
		Operation: "export_deck",
		Message:   "failed to save archive",
		Err:       underlying,
	}

	assert.Equal(t, underlying, serviceErr.Unwrap())
	assert.True(t, errors.Is(serviceErr, underlying))

	var asErr *StudyServiceError
	require.True(t, errors.As(serviceErr, &asErr))
	assert.Equal(t, "export_deck", asErr.Operation)
}

func TestNewStudyServiceError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, NewStudyServiceError("create_deck", "failed", nil))
	})

	t.Run("sentinels pass through unwrapped", func(t *testing.T) {
		for _, sentinel := range []error{
			ErrDeckNotFound,
			ErrDeckNameExists,
			ErrCardNotFound,
			ErrNoCardsDue,
			ErrInvalidOutcome,
		} {
			err := NewStudyServiceError("get_deck", "lookup failed", sentinel)
			assert.Equal(t, sentinel, err)

			// Sentinels buried in a wrap chain surface the same way.
			wrapped := fmt.Errorf("while importing: %w", sentinel)
			assert.Equal(t, sentinel, NewStudyServiceError("import_deck", "load failed", wrapped))
		}
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		underlying := errors.New("constraint violation")
		err := NewStudyServiceError("add_card", "failed to save card", underlying)

		var serviceErr *StudyServiceError
		require.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, "add_card", serviceErr.Operation)
		assert.Equal(t, "failed to save card", serviceErr.Message)
		assert.True(t, errors.Is(err, underlying))
	})
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "deck not found", err: store.ErrDeckNotFound, expected: ErrDeckNotFound},
		{name: "deck name exists", err: store.ErrDeckNameExists, expected: ErrDeckNameExists},
		{name: "card not found", err: store.ErrCardNotFound, expected: ErrCardNotFound},
		{
			name:     "wrapped store sentinel",
			err:      fmt.Errorf("insert: %w", store.ErrDeckNameExists),
			expected: ErrDeckNameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapStoreError(tt.err))
		})
	}

	t.Run("unrelated errors pass through", func(t *testing.T) {
		unrelated := errors.New("io failure")
		assert.Equal(t, unrelated, mapStoreError(unrelated))
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, mapStoreError(nil))
	})
}
