package normalize

import (
	gohtml "html"
	"regexp"
	"strconv"
	"strings"
)

// Replacement is one protect/restore pair: a sentinel token substituted
// into the text and the value that replaces it during restoration. Pairs
// live for a single render pass and are never persisted.
type Replacement struct {
	Token string
	Value string
}

// Token builds the sentinel for a protection layer and index. The prefix
// is unlikely enough, and the index unique enough, that collisions with
// user content cannot occur within one pass.
func Token(layer string, index int) string {
	return "@@slidekit-" + layer + "-" + strconv.Itoa(index) + "@@"
}

var (
	fencedCodeRe = regexp.MustCompile("(?s)```([^\n`]*)\n(.*?)```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
)

// ProtectCode substitutes fenced code blocks and inline code spans with
// sentinel tokens so code content is never mistaken for math or mangled
// by escape repairs. The recorded value is the span pre-rendered to
// escaped HTML: restoration happens after markdown conversion, so the
// raw markdown form would otherwise surface verbatim in the output.
func ProtectCode(text string) (string, []Replacement) {
	var reps []Replacement

	text = fencedCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := fencedCodeRe.FindStringSubmatch(m)
		token := Token("code", len(reps))
		reps = append(reps, Replacement{Token: token, Value: renderFencedCode(sub[1], sub[2])})
		return token
	})

	text = inlineCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		token := Token("code", len(reps))
		body := strings.Trim(m, "`")
		reps = append(reps, Replacement{Token: token, Value: "<code>" + gohtml.EscapeString(body) + "</code>"})
		return token
	})

	return text, reps
}

func renderFencedCode(info, body string) string {
	var b strings.Builder
	b.WriteString("<pre><code")
	if lang := strings.TrimSpace(info); lang != "" {
		b.WriteString(` class="language-` + gohtml.EscapeString(lang) + `"`)
	}
	b.WriteString(">")
	b.WriteString(gohtml.EscapeString(strings.TrimSuffix(body, "\n")))
	b.WriteString("\n</code></pre>")
	return b.String()
}

// RestoreTokens substitutes one protection layer back into rendered
// HTML. Tokens that ended up alone inside a paragraph are unwrapped
// first so block-level values do not nest inside <p>. Layers must be
// restored in reverse protection order (the caller's responsibility).
func RestoreTokens(html string, reps []Replacement) string {
	for _, rep := range reps {
		wrapped := "<p>" + rep.Token + "</p>"
		if strings.Contains(html, wrapped) {
			html = strings.ReplaceAll(html, wrapped, rep.Value)
			continue
		}
		html = strings.ReplaceAll(html, rep.Token, rep.Value)
	}
	return html
}
