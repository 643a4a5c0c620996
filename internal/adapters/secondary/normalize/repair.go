package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Precompiled repair patterns.
var (
	// Control character immediately followed by a letter: the residue of
	// a LaTeX command whose backslash was eaten by JSON decoding
	// ("\text" -> TAB + "ext", "\rightarrow" -> CR + "ightarrow").
	controlBeforeLetterRe = regexp.MustCompile("[\t\r\x08\x0c][a-zA-Z]")

	// Doubled backslash before a letter, the usual double-escaping artifact.
	doubledBackslashRe = regexp.MustCompile(`\\\\([a-zA-Z])`)
)

// controlEscapes maps the control characters JSON decoding produces from
// single-backslash LaTeX commands back to their two-character escapes.
var controlEscapes = map[byte]string{
	'\t':   `\t`,
	'\r':   `\r`,
	'\x08': `\b`,
	'\x0c': `\f`,
}

// bareCommands lists LaTeX commands that commonly surface with their
// leading backslash (and escape letter) lost entirely. Longer spellings
// come first so "extbf{" is not half-matched by "ext{". The set is a
// fixed whitelist: repairs beyond it need an explicit signal, not a
// broadened match.
var bareCommands = []struct {
	bare  string
	fixed string
}{
	{"extbf{", `\textbf{`},
	{"extit{", `\textit{`},
	{"ext{", `\text{`},
	{"ightarrow", `\rightarrow`},
	{"rac{", `\frac{`},
	{"imes", `\times`},
	{"heta", `\theta`},
}

var bareCommandRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(bareCommands))
	for i, c := range bareCommands {
		// Must not follow a letter or backslash, so ordinary words
		// ("sometimes", "Theta") are left alone.
		res[i] = regexp.MustCompile(`(^|[^A-Za-z\\])` + regexp.QuoteMeta(c.bare))
	}
	return res
}()

// Repair fixes the known classes of malformed math delimiters and
// control-sequence corruption in model-emitted text. It is pure, total
// and deterministic; every step is a best-effort heuristic that leaves
// ambiguous text unchanged rather than guessing. Step order matters:
// later steps assume earlier repairs already ran. Code spans must be
// token-protected by the caller before Repair sees the text.
func Repair(raw string) string {
	s := raw
	s = normalizeDelimiters(s)
	s = repairControlChars(s)
	s = collapseDoubledBackslashes(s)
	s = stripEscapedDisplayOpener(s)
	s = stripDollarsInTextGroups(s)
	s = dropUnmatchedDisplayDelimiter(s)
	s = repairBareCommands(s)
	s = escapeTabsInMathSpans(s)
	s = breakBeforeNonLatinLetters(s)
	s = balanceInlineDollars(s)
	return s
}

// normalizeDelimiters rewrites the alternate math delimiter spellings to
// their dollar forms.
func normalizeDelimiters(s string) string {
	return strings.NewReplacer(
		`\[`, "$$",
		`\]`, "$$",
		`\(`, "$",
		`\)`, "$",
	).Replace(s)
}

// repairControlChars rewrites a control character immediately followed
// by a letter back to its two-character escape form.
func repairControlChars(s string) string {
	return controlBeforeLetterRe.ReplaceAllStringFunc(s, func(m string) string {
		return controlEscapes[m[0]] + m[1:]
	})
}

// collapseDoubledBackslashes turns `\\dfrac` into `\dfrac`.
func collapseDoubledBackslashes(s string) string {
	return doubledBackslashRe.ReplaceAllString(s, `\$1`)
}

// stripEscapedDisplayOpener drops a stray backslash directly before a
// display-math opener.
func stripEscapedDisplayOpener(s string) string {
	return strings.ReplaceAll(s, `\$$`, "$$")
}

// stripDollarsInTextGroups removes $ characters nested inside
// \text{...} groups; the math renderer rejects them. Brace depth is
// tracked so nested groups stay intact.
func stripDollarsInTextGroups(s string) string {
	const marker = `\text{`

	var out strings.Builder
	out.Grow(len(s))

	for {
		idx := strings.Index(s, marker)
		if idx < 0 {
			out.WriteString(s)
			break
		}

		out.WriteString(s[:idx+len(marker)])
		rest := s[idx+len(marker):]

		depth := 1
		i := 0
		for i < len(rest) && depth > 0 {
			switch rest[i] {
			case '{':
				depth++
			case '}':
				depth--
			case '$':
				i++
				continue
			}
			out.WriteByte(rest[i])
			i++
		}
		s = rest[i:]
	}

	return out.String()
}

// dropUnmatchedDisplayDelimiter removes the last $$ occurrence when the
// total count is odd. Conservative: never removes more than one.
func dropUnmatchedDisplayDelimiter(s string) string {
	if strings.Count(s, "$$")%2 == 0 {
		return s
	}
	idx := strings.LastIndex(s, "$$")
	return s[:idx] + s[idx+2:]
}

// repairBareCommands restores the leading backslash of whitelisted LaTeX
// commands that lost it.
func repairBareCommands(s string) string {
	for i, c := range bareCommands {
		s = bareCommandRes[i].ReplaceAllString(s, "$1"+c.fixed)
	}
	return s
}

// escapeTabsInMathSpans rewrites literal tab characters inside math
// spans back into \t escapes. Tabs followed by a letter were already
// handled by repairControlChars; this catches the rest.
func escapeTabsInMathSpans(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	inBlock := false
	inInline := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '$' && !inInline:
			inBlock = !inBlock
			out.WriteString("$$")
			i++
		case s[i] == '$' && !inBlock:
			inInline = !inInline
			out.WriteByte('$')
		case s[i] == '\t' && (inBlock || inInline):
			out.WriteString(`\t`)
		default:
			out.WriteByte(s[i])
		}
	}

	return out.String()
}

// breakBeforeNonLatinLetters treats a backslash directly before a
// non-Latin letter as an intended line break: upstream models write \n
// before e.g. Cyrillic text and the JSON decoder absorbs the n.
func breakBeforeNonLatinLetters(s string) string {
	runes := []rune(s)
	var out []rune
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			next := runes[i+1]
			if unicode.IsLetter(next) && !unicode.Is(unicode.Latin, next) {
				out = append(out, '\n')
				continue
			}
		}
		out = append(out, runes[i])
	}
	return string(out)
}

// balanceInlineDollars drops the last unescaped single $ on any line
// holding an odd number of them. Complete $$ pairs on the line are not
// counted; display-math open/close state is tracked across lines so
// multi-line $$ blocks and the lines that toggle them are never touched
// by this line-local pass.
func balanceInlineDollars(s string) string {
	lines := strings.Split(s, "\n")
	inBlock := false

	for i, line := range lines {
		toggles := strings.Count(line, "$$")

		if !inBlock && toggles%2 == 0 {
			lines[i] = dropLastUnescapedDollarIfOdd(line)
		}

		if toggles%2 == 1 {
			inBlock = !inBlock
		}
	}

	return strings.Join(lines, "\n")
}

func dropLastUnescapedDollarIfOdd(line string) string {
	var singles []int
	for i := 0; i < len(line); i++ {
		if line[i] != '$' || (i > 0 && line[i-1] == '\\') {
			continue
		}
		if i+1 < len(line) && line[i+1] == '$' {
			// Complete display pair, not an inline delimiter.
			i++
			continue
		}
		singles = append(singles, i)
	}

	if len(singles)%2 == 0 {
		return line
	}

	last := singles[len(singles)-1]
	return line[:last] + line[last+1:]
}
