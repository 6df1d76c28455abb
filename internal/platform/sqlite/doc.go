// Package sqlite provides SQLite-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of opening the database file, applying schema
// migrations, executing queries, and mapping between domain entities and
// database records.
package sqlite
