package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

type stubDecks struct{}

func (stubDecks) LoadDeck(ctx context.Context, path string) (*entities.Deck, error) {
	return nil, errors.New("not used")
}

func (stubDecks) ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error) {
	return nil, errors.New("not used")
}

func (stubDecks) RenderDeck(ctx context.Context, deck *entities.Deck) ([]ports.RenderedSlide, error) {
	return []ports.RenderedSlide{
		{
			ID:      deck.Slides[0].ID,
			Index:   deck.Slides[0].Index,
			Title:   "Hi",
			Content: deck.Slides[0].Content,
			Leaves: []ports.RenderedLeaf{
				{Path: "title", Text: "Hi", HTML: "<p>Hi</p>"},
			},
		},
	}, nil
}

type stubEditing struct {
	beginOK bool
	styles  map[string]entities.TextStyle
}

func (s *stubEditing) BeginEdit(deck *entities.Deck, slideID, fragmentID, targetText string) (*entities.EditSession, bool) {
	if !s.beginOK {
		return nil, false
	}
	return &entities.EditSession{
		DeckID:       deck.ID,
		SlideID:      slideID,
		Path:         "items[1]",
		OriginalText: targetText,
		Hidden:       true,
	}, true
}

func (s *stubEditing) CommitEdit(deck *entities.Deck, session *entities.EditSession, newText string, newStyle *entities.TextStyle) error {
	if session.Path == "" {
		return errors.New("no path")
	}
	return nil
}

func (s *stubEditing) Abandon(session *entities.EditSession) {}

func (s *stubEditing) GetStyle(deck *entities.Deck, slideID, path string) (entities.TextStyle, bool) {
	style, ok := s.styles[path]
	return style, ok
}

func (s *stubEditing) SetStyle(deck *entities.Deck, slideID, path string, style entities.TextStyle) error {
	if s.styles == nil {
		s.styles = map[string]entities.TextStyle{}
	}
	s.styles[path] = style
	return nil
}

type stubTextRenderer struct{}

func (stubTextRenderer) Render(text string) string       { return "<p>" + text + "</p>" }
func (stubTextRenderer) RenderInline(text string) string { return text }

func newTestServer(editing *stubEditing) *Server {
	return NewServer(
		stubDecks{},
		editing,
		editing,
		stubTextRenderer{},
		&entities.ServerConfig{Host: "localhost", Port: 4810},
		&entities.LoggingConfig{Level: "error"},
	)
}

func testDeck() *entities.Deck {
	return &entities.Deck{
		ID:    "d1",
		Title: "Demo",
		Slides: []entities.Slide{
			{ID: "s1", Content: json.RawMessage(`{"title":"Hi","items":["A","B"]}`)},
		},
	}
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.setupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHandleDeck(t *testing.T) {
	t.Run("renders the loaded deck", func(t *testing.T) {
		s := newTestServer(&stubEditing{beginOK: true})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodGet, "/api/deck", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp DeckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "d1", resp.ID)
		require.Len(t, resp.Slides, 1)
		assert.Equal(t, "<p>Hi</p>", resp.Slides[0].Leaves[0].HTML)
	})

	t.Run("404 without a deck", func(t *testing.T) {
		s := newTestServer(&stubEditing{})

		rec := doRequest(s, http.MethodGet, "/api/deck", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(&stubEditing{})

	t.Run("block render", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/api/render", RenderRequest{Text: "hello"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp RenderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "<p>hello</p>", resp.HTML)
	})

	t.Run("render output is sanitized", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/api/render", RenderRequest{Text: "<script>x</script>", Inline: true})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp RenderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotContains(t, resp.HTML, "<script>")
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader([]byte("{broken")))
		rec := httptest.NewRecorder()
		s.setupRoutes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleEditBegin(t *testing.T) {
	t.Run("editable fragment returns the session", func(t *testing.T) {
		s := newTestServer(&stubEditing{beginOK: true})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodPost, "/api/edit/begin", EditBeginRequest{SlideID: "s1", Text: "B"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EditBeginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Editable)
		require.NotNil(t, resp.Session)
		assert.Equal(t, "items[1]", resp.Session.Path)
		assert.Equal(t, "Items 2", resp.Label)
	})

	t.Run("non-editable fragment is not an error", func(t *testing.T) {
		s := newTestServer(&stubEditing{beginOK: false})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodPost, "/api/edit/begin", EditBeginRequest{SlideID: "s1", Text: "2."})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EditBeginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Editable)
		assert.Nil(t, resp.Session)
	})

	t.Run("404 without a deck", func(t *testing.T) {
		s := newTestServer(&stubEditing{beginOK: true})

		rec := doRequest(s, http.MethodPost, "/api/edit/begin", EditBeginRequest{SlideID: "s1", Text: "B"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleEditCommit(t *testing.T) {
	t.Run("commits through the session", func(t *testing.T) {
		s := newTestServer(&stubEditing{beginOK: true})
		s.SetDeck(testDeck())

		body := EditCommitRequest{
			Session: &entities.EditSession{SlideID: "s1", Path: "items[1]"},
			Text:    "new",
		}
		rec := doRequest(s, http.MethodPost, "/api/edit/commit", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"committed":true`)
	})

	t.Run("missing session rejected", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodPost, "/api/edit/commit", EditCommitRequest{Text: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("commit failure maps to 422", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		body := EditCommitRequest{Session: &entities.EditSession{SlideID: "s1"}, Text: "x"}
		rec := doRequest(s, http.MethodPost, "/api/edit/commit", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleStyle(t *testing.T) {
	t.Run("put then get round trip", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		put := StylePutRequest{
			SlideID: "s1",
			Path:    "items[1]",
			Style:   entities.TextStyle{FontFamily: "Mono", FontSize: 14},
		}
		rec := doRequest(s, http.MethodPut, "/api/style", put)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(s, http.MethodGet, "/api/style?slideId=s1&path=items%5B1%5D", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp StyleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Exists)
		assert.Equal(t, "Mono", resp.Style.FontFamily)
		assert.Equal(t, 14, resp.Style.FontSize)
	})

	t.Run("get requires slideId and path", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodGet, "/api/style", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing override reports exists false", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodGet, "/api/style?slideId=s1&path=title", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp StyleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Exists)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("security headers are set", func(t *testing.T) {
		s := newTestServer(&stubEditing{})
		s.SetDeck(testDeck())

		rec := doRequest(s, http.MethodGet, "/api/deck", nil)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("panic recovers to 500", func(t *testing.T) {
		logger := NewHTTPLogger("test", entities.LogLevelError)
		handler := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}), logger)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
