package ports

// TextRenderer converts one model-authored text leaf into HTML. Both
// entry points are pure and total: arbitrary input in, HTML out, no
// error path. RenderInline emits inline HTML with no block-level
// wrapper, suitable for embedding inside a single text node.
type TextRenderer interface {
	Render(text string) string
	RenderInline(text string) string
}

// MathRenderer converts a TeX span to visual markup in best-effort
// mode: malformed input yields inline error markup, never a failure.
type MathRenderer interface {
	Render(tex string, display bool) string
}
