package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// DeckService implements the business logic for decks: loading,
// ingest-time normalization, and rendering every content leaf.
type DeckService struct {
	renderer ports.TextRenderer
	resolver ports.ContentResolver
	logger   *slog.Logger
}

// NewDeckService creates a new deck service instance
func NewDeckService(renderer ports.TextRenderer, resolver ports.ContentResolver, logger *slog.Logger) *DeckService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckService{
		renderer: renderer,
		resolver: resolver,
		logger:   logger.With("service", "deck"),
	}
}

// LoadDeck loads a deck from a JSON or YAML file
func (s *DeckService) LoadDeck(ctx context.Context, path string) (*entities.Deck, error) {
	if path == "" {
		return nil, errors.New("deck path cannot be empty")
	}

	content, err := os.ReadFile(path) // #nosec G304 - path comes from the operator's CLI
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("deck file not found: %s", path)
		}
		return nil, fmt.Errorf("reading deck file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		converted, err := yamlToJSON(content)
		if err != nil {
			return nil, fmt.Errorf("converting YAML deck: %w", err)
		}
		content = converted
	}

	return s.ParseDeck(ctx, content)
}

// ParseDeck parses raw deck bytes into a validated, normalized deck
func (s *DeckService) ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error) {
	if len(content) == 0 {
		return nil, errors.New("deck content cannot be empty")
	}

	var deck entities.Deck
	if err := json.Unmarshal(content, &deck); err != nil {
		return nil, fmt.Errorf("parsing deck: %w", err)
	}

	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}

	for i := range deck.Slides {
		slide := &deck.Slides[i]
		slide.Index = i
		if slide.ID == "" {
			slide.ID = uuid.NewString()
		}
		slide.Content = sanitizeLeaves(slide.Content)
	}

	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	s.logger.Info("deck parsed",
		slog.String("deck_id", deck.ID),
		slog.Int("slides", len(deck.Slides)),
	)

	return &deck, nil
}

// RenderDeck renders every string leaf of every slide. The whole pass
// runs under the deck's read lock, so a concurrent commit either lands
// before the snapshot or after it, never halfway through.
func (s *DeckService) RenderDeck(ctx context.Context, deck *entities.Deck) ([]ports.RenderedSlide, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}

	deck.RLock()
	defer deck.RUnlock()

	rendered := make([]ports.RenderedSlide, 0, len(deck.Slides))
	for i := range deck.Slides {
		slide := &deck.Slides[i]
		rendered = append(rendered, ports.RenderedSlide{
			ID:      slide.ID,
			Index:   slide.Index,
			Layout:  slide.Layout,
			Title:   slide.DisplayTitle(),
			Content: slide.Content,
			Leaves:  s.renderLeaves(slide),
		})
	}

	return rendered, nil
}

// renderLeaves walks the slide's content tree in document order and
// renders every string leaf, attaching the style override keyed by the
// leaf's data path.
func (s *DeckService) renderLeaves(slide *entities.Slide) []ports.RenderedLeaf {
	var leaves []ports.RenderedLeaf

	walkStringLeaves(gjson.ParseBytes(slide.Content), "", func(path, value string) {
		leaf := ports.RenderedLeaf{
			Path: path,
			Text: value,
			HTML: s.renderer.Render(value),
		}
		if style, ok := slide.StyleAt(path); ok {
			leaf.Style = style
		}
		leaves = append(leaves, leaf)
	})

	return leaves
}

// sanitizeLeaves applies the JSON-escape control-character repair to
// every string leaf of a content tree at ingest time: models that
// forget to escape backslashes in LaTeX commands produce payloads where
// \text already arrived as TAB + "ext" before the renderer ever runs.
func sanitizeLeaves(doc json.RawMessage) json.RawMessage {
	out := []byte(doc)

	walkStringLeaves(gjson.ParseBytes(doc), "", func(path, value string) {
		repaired := repairControlEscapes(value)
		if repaired == value {
			return
		}
		updated, err := sjson.SetBytes(out, bracketedToGJSON(path), repaired)
		if err != nil {
			return
		}
		out = updated
	})

	return out
}

// repairControlEscapes maps the control characters produced by JSON
// decoding of single-backslash LaTeX commands back to their escapes.
func repairControlEscapes(value string) string {
	if !strings.ContainsAny(value, "\t\r\b\f") {
		return value
	}
	return strings.NewReplacer(
		"\t", `\t`,
		"\r", `\r`,
		"\b", `\b`,
		"\f", `\f`,
	).Replace(value)
}

// walkStringLeaves visits every string leaf depth-first in document
// order, passing the bracketed data path ("items[1].caption").
func walkStringLeaves(value gjson.Result, path string, visit func(path, value string)) {
	switch {
	case value.Type == gjson.String:
		visit(path, value.Str)

	case value.IsArray():
		i := 0
		value.ForEach(func(_, child gjson.Result) bool {
			walkStringLeaves(child, fmt.Sprintf("%s[%d]", path, i), visit)
			i++
			return true
		})

	case value.IsObject():
		value.ForEach(func(key, child gjson.Result) bool {
			childPath := key.String()
			if path != "" {
				childPath = path + "." + childPath
			}
			walkStringLeaves(child, childPath, visit)
			return true
		})
	}
}

func bracketedToGJSON(path string) string {
	path = strings.ReplaceAll(path, "[", ".")
	return strings.ReplaceAll(path, "]", "")
}

// yamlToJSON converts a YAML document to JSON bytes
func yamlToJSON(content []byte) ([]byte, error) {
	var tree interface{}
	if err := yaml.Unmarshal(content, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}
