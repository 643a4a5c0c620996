package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/slidekit/slidekit/internal/domain/entities"
)

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide
// content. The policy additionally admits MathML so typeset math
// survives the boundary.
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Basic text formatting
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a").AllowAttrs("href").OnElements("a")
	p.AllowElements("img").AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span").AllowAttrs("class", "title").OnElements("div", "span")
	p.AllowAttrs("class", "id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "code")

	// MathML produced by the math renderer
	p.AllowElements(
		"math", "semantics", "annotation",
		"mrow", "mi", "mn", "mo", "ms", "mtext", "mspace",
		"mfrac", "msqrt", "mroot", "msub", "msup", "msubsup",
		"munder", "mover", "munderover", "mtable", "mtr", "mtd",
		"mstyle", "merror", "mpadded", "mphantom", "mfenced",
	)
	p.AllowAttrs("xmlns", "display", "mathvariant", "displaystyle").OnElements("math", "mstyle", "mi", "mo", "mtext")
	p.AllowAttrs("encoding").OnElements("annotation")

	return p
}

var htmlSanitizer = createHTMLSanitizer()

func (s *Server) handleError(w http.ResponseWriter, message string, status int) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode error response: %v", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}

// handleDeck returns the current deck with every leaf rendered
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck := s.GetDeck()
	if deck == nil {
		s.handleError(w, "no deck loaded", http.StatusNotFound)
		return
	}

	rendered, err := s.decks.RenderDeck(r.Context(), deck)
	if err != nil {
		s.handleError(w, "rendering deck failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, deckToResponse(deck, rendered))
}

// RenderRequest is the body of POST /api/render
type RenderRequest struct {
	Text   string `json:"text"`
	Inline bool   `json:"inline"`
}

// RenderResponse is the preview HTML for an overlay
type RenderResponse struct {
	HTML string `json:"html"`
}

// handleRender renders one text fragment for the edit overlay preview
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var html string
	if req.Inline {
		html = s.renderer.RenderInline(req.Text)
	} else {
		html = s.renderer.Render(req.Text)
	}

	s.writeJSON(w, RenderResponse{HTML: htmlSanitizer.Sanitize(html)})
}

// EditBeginRequest is the body of POST /api/edit/begin
type EditBeginRequest struct {
	SlideID    string `json:"slideId"`
	FragmentID string `json:"fragmentId,omitempty"`
	Text       string `json:"text"`
}

// EditBeginResponse reports whether the fragment is editable and, when
// it is, the session snapshot the client must echo back on commit
type EditBeginResponse struct {
	Editable bool                  `json:"editable"`
	Session  *entities.EditSession `json:"session,omitempty"`
	Label    string                `json:"label,omitempty"`
}

// handleEditBegin resolves a clicked fragment to its data path
func (s *Server) handleEditBegin(w http.ResponseWriter, r *http.Request) {
	var req EditBeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deck := s.GetDeck()
	if deck == nil {
		s.handleError(w, "no deck loaded", http.StatusNotFound)
		return
	}

	session, ok := s.editing.BeginEdit(deck, req.SlideID, req.FragmentID, req.Text)
	if !ok {
		// Not an error: renderer-generated text has no source field.
		s.writeJSON(w, EditBeginResponse{Editable: false})
		return
	}

	s.writeJSON(w, EditBeginResponse{
		Editable: true,
		Session:  session,
		Label:    PathLabel(session.Path),
	})
}

// EditCommitRequest is the body of POST /api/edit/commit
type EditCommitRequest struct {
	Session *entities.EditSession `json:"session"`
	Text    string                `json:"text"`
	Style   *entities.TextStyle   `json:"style,omitempty"`
}

// handleEditCommit applies an edit atomically
func (s *Server) handleEditCommit(w http.ResponseWriter, r *http.Request) {
	var req EditCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Session == nil {
		s.handleError(w, "missing edit session", http.StatusBadRequest)
		return
	}

	deck := s.GetDeck()
	if deck == nil {
		s.handleError(w, "no deck loaded", http.StatusNotFound)
		return
	}

	if err := s.editing.CommitEdit(deck, req.Session, req.Text, req.Style); err != nil {
		s.handleError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"committed": true,
		"path":      req.Session.Path,
	})
}

// StyleResponse is the style override for one path
type StyleResponse struct {
	SlideID string             `json:"slideId"`
	Path    string             `json:"path"`
	Style   entities.TextStyle `json:"style"`
	Exists  bool               `json:"exists"`
}

// handleStyleGet returns the style override for ?slideId=...&path=...
func (s *Server) handleStyleGet(w http.ResponseWriter, r *http.Request) {
	slideID := r.URL.Query().Get("slideId")
	path := r.URL.Query().Get("path")
	if slideID == "" || path == "" {
		s.handleError(w, "slideId and path are required", http.StatusBadRequest)
		return
	}

	deck := s.GetDeck()
	if deck == nil {
		s.handleError(w, "no deck loaded", http.StatusNotFound)
		return
	}

	style, ok := s.styles.GetStyle(deck, slideID, path)
	s.writeJSON(w, StyleResponse{SlideID: slideID, Path: path, Style: style, Exists: ok})
}

// StylePutRequest is the body of PUT /api/style
type StylePutRequest struct {
	SlideID string             `json:"slideId"`
	Path    string             `json:"path"`
	Style   entities.TextStyle `json:"style"`
}

// handleStylePut records a style override
func (s *Server) handleStylePut(w http.ResponseWriter, r *http.Request) {
	var req StylePutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deck := s.GetDeck()
	if deck == nil {
		s.handleError(w, "no deck loaded", http.StatusNotFound)
		return
	}

	if err := s.styles.SetStyle(deck, req.SlideID, req.Path, req.Style); err != nil {
		s.handleError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.writeJSON(w, map[string]bool{"saved": true})
}
