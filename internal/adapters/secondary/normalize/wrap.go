package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// mathCommands is the fixed whitelist of backslash commands that count
// as a math signal. Candidates without a recognized signal are never
// wrapped: the policy is to do nothing rather than guess.
var mathCommands = []string{
	"frac", "dfrac", "tfrac", "sqrt", "sum", "int", "prod", "lim",
	"log", "ln", "sin", "cos", "tan",
	"cdot", "times", "div", "pm", "mp",
	"le", "ge", "leq", "geq", "neq", "ne", "approx", "equiv", "sim",
	"infty", "partial", "nabla",
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta",
	"theta", "lambda", "mu", "nu", "xi", "pi", "rho", "sigma", "tau",
	"phi", "chi", "psi", "omega", "Gamma", "Delta", "Theta", "Lambda",
	"Pi", "Sigma", "Phi", "Psi", "Omega",
	"text", "mathbf", "mathrm", "mathit", "operatorname",
	"overline", "underline", "vec", "hat", "bar", "dot",
	"binom", "begin", "end", "left", "right",
	"rightarrow", "leftarrow", "Rightarrow", "Leftarrow",
	"leftrightarrow", "Leftrightarrow", "to", "mapsto",
}

var mathCommandRe = regexp.MustCompile(`\\(?:` + strings.Join(mathCommands, "|") + `)\b`)

// HasMathSignal reports whether text carries a recognized math signal: a
// whitelisted backslash command, subscript/superscript syntax, or a
// comparison operator.
func HasMathSignal(text string) bool {
	if strings.ContainsAny(text, "^_") {
		return true
	}
	if strings.ContainsAny(text, "<>=") {
		return true
	}
	return mathCommandRe.MatchString(text)
}

// AutoWrap finds un-delimited runs of text that are obviously
// mathematical and wraps them in $ delimiters ($$ when the run spans
// multiple lines or exceeds threshold runes). Contiguous non-Latin
// prose is flushed immediately and never wrapped; backslash commands
// consume their brace-delimited argument with full depth tracking so
// nested braces survive verbatim.
func AutoWrap(text string, threshold int) string {
	var out strings.Builder
	out.Grow(len(text))

	var buf []rune
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			flushCandidate(&out, &buf, threshold)
			out.WriteRune(r)
			continue
		}

		if r == '\\' {
			j := i + 1
			for j < len(runes) && isASCIILetter(runes[j]) {
				j++
			}
			// Consume the brace argument, if any, tracking depth.
			if j < len(runes) && runes[j] == '{' {
				depth := 0
				for j < len(runes) {
					if runes[j] == '{' {
						depth++
					} else if runes[j] == '}' {
						depth--
						if depth == 0 {
							j++
							break
						}
					}
					j++
				}
			}
			buf = append(buf, runes[i:j]...)
			i = j - 1
			continue
		}

		buf = append(buf, r)
	}

	flushCandidate(&out, &buf, threshold)
	return out.String()
}

func flushCandidate(out *strings.Builder, buf *[]rune, threshold int) {
	s := string(*buf)
	*buf = (*buf)[:0]
	if s == "" {
		return
	}

	stripped := strings.TrimLeftFunc(s, unicode.IsSpace)
	lead := s[:len(s)-len(stripped)]
	core := strings.TrimRightFunc(stripped, unicode.IsSpace)
	trail := stripped[len(core):]

	if core == "" || strings.Contains(core, "$") || !HasMathSignal(core) {
		out.WriteString(s)
		return
	}

	out.WriteString(lead)
	if strings.Contains(core, "\n") || utf8.RuneCountInString(core) > threshold {
		out.WriteString("$$" + core + "$$")
	} else {
		out.WriteString("$" + core + "$")
	}
	out.WriteString(trail)
}

// WrapBare wraps the entire string once when it contains no $ delimiter
// anywhere but does carry a math signal. Block vs inline is chosen by
// newline presence.
func WrapBare(text string) string {
	if strings.Contains(text, "$") {
		return text
	}

	core := strings.TrimSpace(text)
	if core == "" || !HasMathSignal(core) {
		return text
	}

	if strings.Contains(core, "\n") {
		return "$$\n" + core + "\n$$"
	}
	return "$" + core + "$"
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
