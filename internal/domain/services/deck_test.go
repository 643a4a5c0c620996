package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidekit/slidekit/internal/adapters/secondary/contentpath"
	"github.com/slidekit/slidekit/internal/domain/entities"
)

// stubRenderer marks rendered text so tests can tell HTML from source.
type stubRenderer struct{}

func (stubRenderer) Render(text string) string       { return "<p>" + text + "</p>" }
func (stubRenderer) RenderInline(text string) string { return text }

func newTestDeckService() *DeckService {
	return NewDeckService(stubRenderer{}, contentpath.NewResolver(), nil)
}

func TestDeckService_ParseDeck(t *testing.T) {
	svc := newTestDeckService()
	ctx := context.Background()

	t.Run("valid deck", func(t *testing.T) {
		content := []byte(`{
			"title": "Demo",
			"slides": [
				{"content": {"title": "Hi", "items": ["A", "B"]}}
			]
		}`)

		deck, err := svc.ParseDeck(ctx, content)
		require.NoError(t, err)

		assert.Equal(t, "Demo", deck.Title)
		assert.NotEmpty(t, deck.ID, "missing deck id is generated")
		require.Len(t, deck.Slides, 1)
		assert.NotEmpty(t, deck.Slides[0].ID, "missing slide id is generated")
		assert.Equal(t, 0, deck.Slides[0].Index)
	})

	t.Run("slide indices follow deck order", func(t *testing.T) {
		content := []byte(`{
			"slides": [
				{"content": {"title": "one"}},
				{"content": {"title": "two"}},
				{"content": {"title": "three"}}
			]
		}`)

		deck, err := svc.ParseDeck(ctx, content)
		require.NoError(t, err)

		for i, slide := range deck.Slides {
			assert.Equal(t, i, slide.Index)
		}
	})

	t.Run("control escapes repaired at ingest", func(t *testing.T) {
		// \t in the JSON source arrives as a literal tab after decoding
		content := []byte(`{"slides":[{"content":{"body":"$\text{v}$"}}]}`)

		deck, err := svc.ParseDeck(ctx, content)
		require.NoError(t, err)

		var tree struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.Unmarshal(deck.Slides[0].Content, &tree))
		assert.Equal(t, `$\text{v}$`, tree.Body)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := svc.ParseDeck(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := svc.ParseDeck(ctx, []byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("deck without slides rejected", func(t *testing.T) {
		_, err := svc.ParseDeck(ctx, []byte(`{"title":"empty","slides":[]}`))
		assert.Error(t, err)
	})
}

func TestDeckService_LoadDeck(t *testing.T) {
	svc := newTestDeckService()
	ctx := context.Background()

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"title":"J","slides":[{"content":{"title":"s"}}]}`), 0o600))

		deck, err := svc.LoadDeck(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "J", deck.Title)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.yaml")
		yamlContent := "title: Y\nslides:\n  - content:\n      title: s\n      items:\n        - one\n        - two\n"
		require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

		deck, err := svc.LoadDeck(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Y", deck.Title)
		require.Len(t, deck.Slides, 1)

		var tree struct {
			Items []string `json:"items"`
		}
		require.NoError(t, json.Unmarshal(deck.Slides[0].Content, &tree))
		assert.Equal(t, []string{"one", "two"}, tree.Items)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.LoadDeck(ctx, "/nonexistent/deck.json")
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := svc.LoadDeck(ctx, "")
		assert.Error(t, err)
	})
}

func TestDeckService_RenderDeck(t *testing.T) {
	svc := newTestDeckService()
	ctx := context.Background()

	deck, err := svc.ParseDeck(ctx, []byte(`{
		"slides": [
			{"content": {"title": "Hi", "items": ["A", "B"]}}
		]
	}`))
	require.NoError(t, err)

	t.Run("every string leaf is rendered with its path", func(t *testing.T) {
		rendered, err := svc.RenderDeck(ctx, deck)
		require.NoError(t, err)
		require.Len(t, rendered, 1)

		leaves := rendered[0].Leaves
		require.Len(t, leaves, 3)

		byPath := map[string]string{}
		for _, leaf := range leaves {
			byPath[leaf.Path] = leaf.HTML
		}
		assert.Equal(t, "<p>Hi</p>", byPath["title"])
		assert.Equal(t, "<p>A</p>", byPath["items[0]"])
		assert.Equal(t, "<p>B</p>", byPath["items[1]"])
	})

	t.Run("leaves keep document order", func(t *testing.T) {
		rendered, err := svc.RenderDeck(ctx, deck)
		require.NoError(t, err)

		paths := make([]string, 0, 3)
		for _, leaf := range rendered[0].Leaves {
			paths = append(paths, leaf.Path)
		}
		assert.Equal(t, []string{"title", "items[0]", "items[1]"}, paths)
	})

	t.Run("style override rides along on its leaf", func(t *testing.T) {
		deck.Slides[0].SetStyleAt("items[1]", entities.TextStyle{FontFamily: "Mono", FontSize: 14})

		rendered, err := svc.RenderDeck(ctx, deck)
		require.NoError(t, err)

		for _, leaf := range rendered[0].Leaves {
			if leaf.Path == "items[1]" {
				assert.Equal(t, "Mono", leaf.Style.FontFamily)
				assert.Equal(t, 14, leaf.Style.FontSize)
			} else {
				assert.True(t, leaf.Style.IsZero())
			}
		}
	})

	t.Run("nil deck rejected", func(t *testing.T) {
		_, err := svc.RenderDeck(ctx, nil)
		assert.Error(t, err)
	})
}
