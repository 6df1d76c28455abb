package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mnemoapp/mnemo/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite extended result codes
const (
	// uniqueViolationCode is the SQLite extended result code for violations
	// of an explicit UNIQUE constraint or index
	uniqueViolationCode = sqlite3.SQLITE_CONSTRAINT_UNIQUE

	// primaryKeyViolationCode is the SQLite extended result code for inserts
	// that duplicate a PRIMARY KEY value
	primaryKeyViolationCode = sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY

	// foreignKeyViolationCode is the SQLite extended result code for foreign
	// key violations (requires the foreign_keys pragma to be on)
	foreignKeyViolationCode = sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY

	// checkViolationCode is the SQLite extended result code for check
	// constraint violations
	checkViolationCode = sqlite3.SQLITE_CONSTRAINT_CHECK

	// notNullViolationCode is the SQLite extended result code for not null
	// violations
	notNullViolationCode = sqlite3.SQLITE_CONSTRAINT_NOTNULL
)

// resultCode extracts the SQLite extended result code from an error, or 0
// if the error did not originate in the SQLite library.
func resultCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

// MapError maps a database error to an appropriate domain error.
// It wraps the original error to preserve context and provide better debugging information.
// This function should be used in all database operations to ensure consistent error handling.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Handle common SQL errors
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	// Handle SQLite-specific errors
	switch resultCode(err) {
	case uniqueViolationCode, primaryKeyViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation: %v", store.ErrInvalidEntity, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation: %v", store.ErrInvalidEntity, err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsUniqueViolation checks if the given error is a SQLite unique constraint violation.
// This is useful for detecting duplicate records that violate unique constraints.
// SQLite reports a duplicate PRIMARY KEY with its own result code, so both
// codes are treated as unique violations.
func IsUniqueViolation(err error) bool {
	code := resultCode(err)
	return code == uniqueViolationCode || code == primaryKeyViolationCode
}

// IsForeignKeyViolation checks if the given error is a SQLite foreign key constraint violation.
// This occurs when an operation would violate referential integrity constraints.
func IsForeignKeyViolation(err error) bool {
	return resultCode(err) == foreignKeyViolationCode
}

// IsNotFoundError checks if the given error represents a "not found" scenario.
// This handles both sql.ErrNoRows and errors that are or wrap store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// MapUniqueViolation maps a SQLite unique violation error to a more specific error.
// If the error is not a unique violation, it returns the original error.
// This is useful for providing more specific error messages for unique constraint violations.
func MapUniqueViolation(err error, entityName string, specificError error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	// If a specific error is provided, use it
	if specificError != nil {
		return fmt.Errorf("%w: %v", specificError, err)
	}

	if entityName != "" {
		return fmt.Errorf("%w: %s already exists: %v", store.ErrDuplicate, entityName, err)
	}
	return fmt.Errorf("%w: duplicate entry: %v", store.ErrDuplicate, err)
}
