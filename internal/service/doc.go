// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects, the review
// engine, and the repositories defined in internal/store to fulfill
// application features.
//
// The central type is StudyService, which coordinates the three moving
// parts of the application:
//
//  1. The stores hold decks, cards, and persisted review state.
//  2. The srs.Engine holds the in-memory scheduling state and makes all
//     scheduling decisions.
//  3. The archive.Manager reads and writes portable deck files.
//
// The service owns the consistency between them: review state is loaded
// into the engine at startup, flushed back after mutating operations, and
// engine records are forgotten when their cards are deleted. Operations
// that touch several tables run inside a single transaction via
// store.RunInTransaction.
//
// The service layer depends on domain entities and repository interfaces,
// never on specific infrastructure implementations.
package service
