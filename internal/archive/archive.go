package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/mnemoapp/mnemo/internal/domain"
	"github.com/mnemoapp/mnemo/internal/domain/srs"
)

const (
	// CurrentFormatVersion is written into every archive this package
	// produces. Archives claiming a newer version are rejected.
	CurrentFormatVersion = 1

	// Ext is the file extension for compressed deck archives.
	Ext = ".fcz"
)

var (
	// ErrInvalidArchive is returned when archive content cannot be decoded
	// or fails validation. Check the wrapped message for details.
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrUnsupportedVersion is returned when an archive was written by a
	// newer format version than this program understands.
	ErrUnsupportedVersion = errors.New("unsupported archive format version")
)

// Archive is the portable representation of a single deck: the deck
// itself, its cards, and the review engine's state for those cards.
type Archive struct {
	FormatVersion int            `json:"format_version"`
	ExportedAt    time.Time      `json:"exported_at"`
	Deck          *domain.Deck   `json:"deck"`
	Cards         []*domain.Card `json:"cards"`
	Review        srs.Snapshot   `json:"review_states,omitempty"`
}

// New assembles an archive for one deck. The review snapshot may span the
// whole collection; only entries belonging to the given cards are carried.
func New(deck *domain.Deck, cards []*domain.Card, review srs.Snapshot) *Archive {
	a := &Archive{
		FormatVersion: CurrentFormatVersion,
		ExportedAt:    time.Now().UTC(),
		Deck:          deck,
		Cards:         cards,
	}

	for _, card := range cards {
		id := card.ID.String()
		if state, ok := review[id]; ok {
			if a.Review == nil {
				a.Review = make(srs.Snapshot, len(cards))
			}
			a.Review[id] = state
		}
	}

	return a
}

// Validate checks that the archive is internally consistent: the deck and
// every card pass domain validation, every card belongs to the archived
// deck, and every review state references an archived card.
func (a *Archive) Validate() error {
	if a.Deck == nil {
		return fmt.Errorf("%w: deck is missing", ErrInvalidArchive)
	}
	if err := a.Deck.Validate(); err != nil {
		return fmt.Errorf("%w: deck: %v", ErrInvalidArchive, err)
	}

	ids := make(map[string]bool, len(a.Cards))
	for _, card := range a.Cards {
		if card == nil {
			return fmt.Errorf("%w: card entry is missing", ErrInvalidArchive)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: card %s: %v", ErrInvalidArchive, card.ID, err)
		}
		if card.DeckID != a.Deck.ID {
			return fmt.Errorf("%w: card %s belongs to deck %s, not %s",
				ErrInvalidArchive, card.ID, card.DeckID, a.Deck.ID)
		}
		if ids[card.ID.String()] {
			return fmt.Errorf("%w: duplicate card %s", ErrInvalidArchive, card.ID)
		}
		ids[card.ID.String()] = true
	}

	for id := range a.Review {
		if !ids[id] {
			return fmt.Errorf("%w: review state references unknown card %s", ErrInvalidArchive, id)
		}
	}

	return nil
}

// encode marshals the archive as indented JSON and gzip-compresses it.
func encode(archive *Archive) ([]byte, error) {
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress archive: %w", err)
	}
	return buf.Bytes(), nil
}

// decode parses archive bytes, decompressing first when the content is
// gzip. Plain JSON is accepted as is, so exported interchange files load
// through the same path as managed archives.
func decode(data []byte) (*Archive, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	switch {
	case err == nil:
		decompressed, err := io.ReadAll(zr)
		closeErr := zr.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt compressed data: %v", ErrInvalidArchive, err)
		}
		data = decompressed
	case errors.Is(err, gzip.ErrHeader):
		// Not gzip; parse as plain JSON.
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	return unmarshalArchive(data)
}

// unmarshalArchive parses and validates a JSON archive document.
func unmarshalArchive(data []byte) (*Archive, error) {
	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	if archive.FormatVersion > CurrentFormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, archive.FormatVersion)
	}

	if err := archive.Validate(); err != nil {
		return nil, err
	}
	return &archive, nil
}
