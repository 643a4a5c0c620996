// Package typeset adapts the LaTeX-to-MathML renderer into the text
// pipeline: delimited math spans are rendered and swapped for sentinel
// tokens so the markdown converter never sees raw math syntax.
package typeset

import (
	gohtml "html"
	"strings"

	"git.sr.ht/~mekyt/latex2mathml"

	"github.com/slidekit/slidekit/internal/adapters/secondary/normalize"
)

const mathMLNamespace = "http://www.w3.org/1998/Math/MathML"

// Renderer converts delimited TeX spans to MathML markup. The zero
// value is ready to use; the renderer holds no mutable state and is
// safe for concurrent use.
type Renderer struct{}

// NewRenderer creates a math renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render converts one TeX span to MathML in best-effort mode: malformed
// input degrades to an inline error marker instead of propagating.
func (r *Renderer) Render(tex string, display bool) (markup string) {
	defer func() {
		if rec := recover(); rec != nil {
			markup = errorMarkup(tex)
		}
	}()

	mode := "inline"
	if display {
		mode = "block"
	}

	markup = latex2mathml.Convert(tex, mathMLNamespace, mode, 0)
	if strings.TrimSpace(markup) == "" {
		markup = errorMarkup(tex)
	}
	return markup
}

// errorMarkup is the inline marker shown for unrenderable math. Visible
// as a rendering artifact, never a crash.
func errorMarkup(tex string) string {
	return `<span class="math-error" title="unrenderable math">` + gohtml.EscapeString(tex) + `</span>`
}

// Extract tokenizes every math span in text, rendering each span up
// front and recording the markup for later restoration. Display spans
// ($$...$$) go first; the remaining single-line $...$ spans require a
// non-$ character (or start of string) before the opener and no $
// directly after the closer, so leftover block delimiters are never
// misread as doubled inline ones.
func (r *Renderer) Extract(text string) (string, []normalize.Replacement) {
	var reps []normalize.Replacement
	text = r.extractDisplay(text, &reps)
	text = r.extractInline(text, &reps)
	return text, reps
}

func (r *Renderer) extractDisplay(text string, reps *[]normalize.Replacement) string {
	var out strings.Builder
	out.Grow(len(text))

	for {
		open := strings.Index(text, "$$")
		if open < 0 {
			break
		}
		length := strings.Index(text[open+2:], "$$")
		if length < 0 {
			break
		}

		tex := text[open+2 : open+2+length]
		token := normalize.Token("math", len(*reps))
		*reps = append(*reps, normalize.Replacement{
			Token: token,
			Value: r.Render(strings.TrimSpace(tex), true),
		})

		out.WriteString(text[:open])
		out.WriteString(token)
		text = text[open+2+length+2:]
	}

	out.WriteString(text)
	return out.String()
}

func (r *Renderer) extractInline(text string, reps *[]normalize.Replacement) string {
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '$' || (i > 0 && (text[i-1] == '$' || text[i-1] == '\\')) {
			out.WriteByte(c)
			continue
		}

		// Candidate opener: find the closer on the same line.
		end := -1
		for j := i + 1; j < len(text); j++ {
			if text[j] == '\n' {
				break
			}
			if text[j] == '$' && text[j-1] != '\\' {
				end = j
				break
			}
		}

		if end < 0 || end == i+1 || (end+1 < len(text) && text[end+1] == '$') {
			out.WriteByte(c)
			continue
		}

		token := normalize.Token("math", len(*reps))
		*reps = append(*reps, normalize.Replacement{
			Token: token,
			Value: r.Render(strings.TrimSpace(text[i+1:end]), false),
		})
		out.WriteString(token)
		i = end
	}

	return out.String()
}
