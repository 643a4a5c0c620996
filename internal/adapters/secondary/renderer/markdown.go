// Package renderer turns model-authored Markdown+math text into HTML.
// The pipeline protects code spans, repairs malformed delimiters, wraps
// bare math, swaps math spans for rendered tokens, converts the rest
// with goldmark, then restores the token layers in reverse order.
package renderer

import (
	"bytes"
	gohtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/slidekit/slidekit/internal/adapters/secondary/normalize"
	"github.com/slidekit/slidekit/internal/adapters/secondary/typeset"
	"github.com/slidekit/slidekit/internal/domain/entities"
)

// MarkdownRenderer implements the TextRenderer interface using Goldmark.
// Configuration is fixed at construction; instances hold no mutable
// state and are safe for concurrent renders.
type MarkdownRenderer struct {
	md   goldmark.Markdown
	math *typeset.Renderer
	cfg  entities.RendererConfig
}

// NewMarkdownRenderer creates a renderer with the given configuration.
// GFM tables, strikethrough and task lists are on; bare-URL/email
// linkification is deliberately NOT enabled (explicit [text](url) links
// still work), and soft line breaks render as hard breaks.
func NewMarkdownRenderer(cfg entities.RendererConfig) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRenderer{
		md:   md,
		math: typeset.NewRenderer(),
		cfg:  cfg,
	}
}

// Render converts one text leaf to block HTML. Pure and total: no input
// can make it fail, and feeding its own repaired source back through
// produces the same HTML.
func (r *MarkdownRenderer) Render(text string) string {
	return r.render(text, false)
}

// RenderInline converts one text leaf to inline HTML for embedding in a
// single text node: a lone paragraph is unwrapped, multi-block content
// falls back to the block form rather than corrupting structure.
func (r *MarkdownRenderer) RenderInline(text string) string {
	return r.render(text, true)
}

func (r *MarkdownRenderer) render(text string, inline bool) string {
	if text == "" {
		return ""
	}

	// Code first, shielding it from every math-aware transform below.
	protected, codeReps := normalize.ProtectCode(text)

	repaired := normalize.Repair(protected)

	// Arrow rewriting must precede auto-wrapping: the comparison signs
	// inside ASCII arrows read as a math signal, and once a line is
	// dollar-wrapped the arrow pass no longer touches it.
	if r.cfg.ArrowSchemes {
		repaired = normalize.ArrowSchemes(repaired)
	}
	if r.cfg.AutoWrapMath {
		repaired = normalize.AutoWrap(repaired, r.cfg.GetBlockWrapThreshold())
		repaired = normalize.WrapBare(repaired)
	}

	body, mathReps := r.math.Extract(repaired)

	out := r.convert(body)

	// Restoration undoes the most recently applied protection first:
	// math tokens were created after code tokens, so they go back first
	// and code spans are restored last.
	out = normalize.RestoreTokens(out, mathReps)
	out = normalize.RestoreTokens(out, codeReps)

	if inline {
		out = unwrapParagraph(out)
	}

	return out
}

func (r *MarkdownRenderer) convert(body string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		// Conversion failures degrade to escaped text; the pipeline
		// never surfaces an error for any input.
		return "<p>" + gohtml.EscapeString(body) + "</p>\n"
	}
	return buf.String()
}

// unwrapParagraph strips the wrapping <p> element when the HTML is
// exactly one paragraph.
func unwrapParagraph(out string) string {
	trimmed := strings.TrimSpace(out)
	if !strings.HasPrefix(trimmed, "<p>") || !strings.HasSuffix(trimmed, "</p>") {
		return out
	}

	inner := trimmed[len("<p>") : len(trimmed)-len("</p>")]
	if strings.Contains(inner, "<p>") || strings.Contains(inner, "</p>") {
		return out
	}

	return inner
}
