package ports

import (
	"context"
	"encoding/json"

	"github.com/slidekit/slidekit/internal/domain/entities"
)

// RenderedLeaf is one content leaf after rendering: the path it was
// resolved from, its final HTML, and the style override in effect.
type RenderedLeaf struct {
	Path  string             `json:"path"`
	Text  string             `json:"text"`
	HTML  string             `json:"html"`
	Style entities.TextStyle `json:"style,omitempty"`
}

// RenderedSlide is a slide with every string leaf rendered. It is a
// snapshot taken under the deck's read lock: callers keep using it
// safely after a later commit replaces the slide's content.
type RenderedSlide struct {
	ID      string
	Index   int
	Layout  string
	Title   string
	Content json.RawMessage
	Leaves  []RenderedLeaf
}

// DeckService is the main service interface for decks.
type DeckService interface {
	// LoadDeck loads a deck from a JSON or YAML file and normalizes
	// every content leaf.
	LoadDeck(ctx context.Context, path string) (*entities.Deck, error)

	// ParseDeck parses raw deck bytes (JSON or YAML).
	ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error)

	// RenderDeck renders every leaf of every slide.
	RenderDeck(ctx context.Context, deck *entities.Deck) ([]RenderedSlide, error)
}

// EditingService binds edit interactions to data paths and applies
// commits atomically.
type EditingService interface {
	// BeginEdit resolves the target fragment once and snapshots the
	// resulting path and style. ok is false when the text is not
	// editable (no leaf matches).
	BeginEdit(deck *entities.Deck, slideID, fragmentID, targetText string) (*entities.EditSession, bool)

	// CommitEdit writes the new text and, when changed, the new style,
	// both addressed by the session's snapshotted path, as one atomic
	// update.
	CommitEdit(deck *entities.Deck, session *entities.EditSession, newText string, newStyle *entities.TextStyle) error

	// Abandon discards an in-flight session without writing back.
	Abandon(session *entities.EditSession)
}

// StyleStore reads and writes per-path style overrides.
type StyleStore interface {
	GetStyle(deck *entities.Deck, slideID, path string) (entities.TextStyle, bool)
	SetStyle(deck *entities.Deck, slideID, path string, style entities.TextStyle) error
}
