package http

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// DeckResponse is the JSON shape of GET /api/deck
type DeckResponse struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Slides []SlideResponse `json:"slides"`
}

// SlideResponse is one slide with its rendered leaves
type SlideResponse struct {
	ID      string              `json:"id"`
	Index   int                 `json:"index"`
	Layout  string              `json:"layout,omitempty"`
	Title   string              `json:"title"`
	Content json.RawMessage     `json:"content"`
	Leaves  []ports.RenderedLeaf `json:"leaves"`
}

// deckToResponse shapes a rendered deck for the API. Leaf HTML is
// sanitized here, at the boundary, so internal callers keep the raw
// renderer output.
func deckToResponse(deck *entities.Deck, rendered []ports.RenderedSlide) DeckResponse {
	resp := DeckResponse{
		ID:     deck.ID,
		Title:  deck.Title,
		Slides: make([]SlideResponse, 0, len(rendered)),
	}

	for _, rs := range rendered {
		leaves := make([]ports.RenderedLeaf, len(rs.Leaves))
		for i, leaf := range rs.Leaves {
			leaf.HTML = htmlSanitizer.Sanitize(leaf.HTML)
			leaves[i] = leaf
		}
		resp.Slides = append(resp.Slides, SlideResponse{
			ID:      rs.ID,
			Index:   rs.Index,
			Layout:  rs.Layout,
			Title:   rs.Title,
			Content: rs.Content,
			Leaves:  leaves,
		})
	}

	return resp
}

var labelCaser = cases.Title(language.English)

// PathLabel renders a data path as a human-readable label for the edit
// overlay, e.g. "body.items[2].caption" becomes "Body / Items 3 /
// Caption". Array indices are shown one-based.
func PathLabel(path string) string {
	if path == "" {
		return ""
	}

	parts := strings.Split(path, ".")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		name := part
		index := -1
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			if n, err := strconv.Atoi(part[open+1 : len(part)-1]); err == nil {
				name = part[:open]
				index = n
			}
		}

		label := labelCaser.String(strings.ReplaceAll(name, "_", " "))
		if index >= 0 {
			label += " " + strconv.Itoa(index+1)
		}
		labels = append(labels, label)
	}

	return strings.Join(labels, " / ")
}
