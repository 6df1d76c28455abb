package store

import (
	"context"
	"database/sql"

	"github.com/mnemoapp/mnemo/internal/domain/srs"
)

// ReviewStateStore defines the interface for persisting the scheduling
// state of the review engine. Rows are keyed by card ID and map one-to-one
// onto engine snapshot entries.
type ReviewStateStore interface {
	// LoadAll reads every persisted review state row into a snapshot
	// suitable for srs.Engine.ImportState.
	LoadAll(ctx context.Context) (srs.Snapshot, error)

	// SaveAll replaces the persisted review state with the given snapshot.
	// IMPORTANT: This is a full rewrite and MUST be run within a transaction;
	// use the WithTx method with store.RunInTransaction so a failure cannot
	// leave the table half-written.
	SaveAll(ctx context.Context, snapshot srs.Snapshot) error

	// Delete removes the review state rows for the given card IDs.
	// IDs without a row are ignored.
	Delete(ctx context.Context, cardIDs []string) error

	// WithTx returns a new ReviewStateStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ReviewStateStore
}
