// Package domain contains the core business entities, value objects, and
// domain logic of the flashcard application: decks, cards, study counters,
// and review outcomes. It is independent of any specific storage or
// delivery mechanism; spaced repetition scheduling lives in the srs
// subpackage.
package domain
