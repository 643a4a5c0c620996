package entities

// TextStyle holds the per-fragment style overrides a user can apply to a
// rendered text leaf. Only font family and size are overridable; all
// other typography inherits from the slide's structural styling.
type TextStyle struct {
	// FontFamily overrides the font family when non-empty
	FontFamily string `json:"fontFamily,omitempty"`

	// FontSize overrides the font size (in points) when positive
	FontSize int `json:"fontSize,omitempty"`
}

// IsZero reports whether the style overrides nothing
func (t TextStyle) IsZero() bool {
	return t.FontFamily == "" && t.FontSize == 0
}

// Merge returns the receiver with non-zero fields of other applied on top
func (t TextStyle) Merge(other TextStyle) TextStyle {
	out := t
	if other.FontFamily != "" {
		out.FontFamily = other.FontFamily
	}
	if other.FontSize > 0 {
		out.FontSize = other.FontSize
	}
	return out
}
