package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Deck represents a generated slide deck being edited
type Deck struct {
	// ID is a unique identifier for the deck
	ID string `json:"id"`

	// Title is the deck title shown in the editor chrome
	Title string `json:"title"`

	// Slides are the deck's slides in presentation order
	Slides []Slide `json:"slides"`

	// mu guards slide content and style maps, which are read by render
	// passes and written by edit commits on concurrent requests.
	mu sync.RWMutex
}

// Slide represents a single slide whose content was authored by the
// generation model
type Slide struct {
	// ID is a stable identifier assigned at generation time
	ID string `json:"id"`

	// Index is the slide position in the deck (0-based)
	Index int `json:"index"`

	// Layout names the slide layout the content tree was generated for
	Layout string `json:"layout,omitempty"`

	// Content is the structured content tree: arbitrarily nested objects
	// and arrays whose string leaves are the text to render
	Content json.RawMessage `json:"content"`

	// Styles maps data paths to per-fragment style overrides. Created
	// lazily on first style edit; entries are never pruned when the
	// underlying field is deleted, so orphans are possible.
	Styles map[string]TextStyle `json:"styles,omitempty"`
}

// Validate ensures the deck is structurally usable
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return errors.New("deck must contain at least one slide")
	}

	for i := range d.Slides {
		if err := d.Slides[i].Validate(); err != nil {
			return fmt.Errorf("slide %d: %w", i, err)
		}
	}

	return nil
}

// DisplayTitle returns the deck title, or a fallback when unset
func (d *Deck) DisplayTitle() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	return "Untitled Deck"
}

// Lock takes the deck's write lock for an edit commit.
func (d *Deck) Lock() { d.mu.Lock() }

// Unlock releases the write lock.
func (d *Deck) Unlock() { d.mu.Unlock() }

// RLock takes the deck's read lock for a render pass.
func (d *Deck) RLock() { d.mu.RLock() }

// RUnlock releases the read lock.
func (d *Deck) RUnlock() { d.mu.RUnlock() }

// SlideByID returns the slide with the given ID, or nil if absent
func (d *Deck) SlideByID(id string) *Slide {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return &d.Slides[i]
		}
	}
	return nil
}

// Validate ensures the slide has a usable content tree
func (s *Slide) Validate() error {
	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}

	if len(s.Content) == 0 {
		return errors.New("slide content cannot be empty")
	}

	if !json.Valid(s.Content) {
		return errors.New("slide content must be valid JSON")
	}

	return nil
}

// DisplayTitle returns the slide's title field when the content tree has
// one, or a generated fallback
func (s *Slide) DisplayTitle() string {
	var tree struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(s.Content, &tree); err == nil {
		if t := strings.TrimSpace(tree.Title); t != "" {
			return t
		}
	}

	return "Slide " + strconv.Itoa(s.Index+1)
}

// StyleAt returns the style override for a data path, if one exists
func (s *Slide) StyleAt(path string) (TextStyle, bool) {
	if s.Styles == nil {
		return TextStyle{}, false
	}
	style, ok := s.Styles[path]
	return style, ok
}

// SetStyleAt records a style override for a data path, creating the map
// on first use
func (s *Slide) SetStyleAt(path string, style TextStyle) {
	if s.Styles == nil {
		s.Styles = make(map[string]TextStyle)
	}
	s.Styles[path] = style
}
