package entities

import "errors"

// EditSession binds one in-progress edit interaction to the data path it
// was resolved from. The path is computed once when the interaction
// starts and never re-resolved: after the text changes, a text-based
// re-match could land on the wrong field or on no field at all.
type EditSession struct {
	// DeckID identifies the deck being edited
	DeckID string `json:"deckId"`

	// SlideID identifies the slide the fragment belongs to
	SlideID string `json:"slideId"`

	// Path is the data path snapshotted at interaction start
	Path string `json:"path"`

	// OriginalText is the leaf value when the session began
	OriginalText string `json:"originalText"`

	// Style is the override in effect for Path when the session began
	Style TextStyle `json:"style"`

	// Hidden reports whether the display-only fragment is hidden behind
	// the edit overlay. View state, not a DOM mutation: the rendering
	// layer reflects it declaratively.
	Hidden bool `json:"hidden"`
}

// Validate ensures the session can be committed
func (e *EditSession) Validate() error {
	if e.SlideID == "" {
		return errors.New("edit session must reference a slide")
	}
	if e.Path == "" {
		return errors.New("edit session must carry a resolved data path")
	}
	return nil
}
