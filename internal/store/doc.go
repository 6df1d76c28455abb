// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. The SQLite implementations live in
// internal/platform/sqlite.
package store
