package normalize

import (
	"regexp"
	"strings"
)

// arrowTokens maps ASCII arrow spellings to their LaTeX commands.
// Longest tokens first so "<=>" is not consumed as "<=" + ">".
var arrowTokens = []struct {
	ascii string
	latex string
}{
	{"<=>", `\Leftrightarrow`},
	{"<->", `\leftrightarrow`},
	{"=>", `\Rightarrow`},
	{"<=", `\Leftarrow`},
	{"->", `\rightarrow`},
	{"<-", `\leftarrow`},
}

var listItemRe = regexp.MustCompile(`^\s*(?:[-*+]\s|\d+[.)]\s)`)

// ArrowSchemes rewrites runs of consecutive lines built around ASCII
// arrow notation ("a -> b") into a single display-math aligned block.
// List items and lines that already look mathy are left alone.
func ArrowSchemes(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	var run []string

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, renderArrowBlock(run))
		run = nil
	}

	for _, line := range lines {
		if isArrowLine(line) {
			run = append(run, line)
			continue
		}
		flushRun()
		out = append(out, line)
	}
	flushRun()

	return strings.Join(out, "\n")
}

func isArrowLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if listItemRe.MatchString(line) {
		return false
	}
	if strings.ContainsAny(trimmed, "$\\") {
		return false
	}
	for _, a := range arrowTokens {
		if strings.Contains(trimmed, a.ascii) {
			return true
		}
	}
	return false
}

// renderArrowBlock turns a run of arrow lines into one aligned block:
// each line becomes a row with the alignment point at its first arrow.
func renderArrowBlock(lines []string) string {
	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[i] = renderArrowRow(strings.TrimSpace(line))
	}

	var b strings.Builder
	b.WriteString("$$\n\\begin{aligned}\n")
	b.WriteString(strings.Join(rows, " \\\\\n"))
	b.WriteString("\n\\end{aligned}\n$$")
	return b.String()
}

func renderArrowRow(line string) string {
	var parts []string
	firstArrow := true

	rest := line
	for rest != "" {
		idx, tok := nextArrow(rest)
		if idx < 0 {
			if seg := renderArrowText(rest); seg != "" {
				parts = append(parts, seg)
			}
			break
		}

		if seg := renderArrowText(rest[:idx]); seg != "" {
			parts = append(parts, seg)
		}

		cmd := tok.latex
		if firstArrow {
			cmd = "&" + cmd
			firstArrow = false
		}
		parts = append(parts, cmd)

		rest = rest[idx+len(tok.ascii):]
	}

	return strings.Join(parts, " ")
}

func nextArrow(s string) (int, struct{ ascii, latex string }) {
	best := -1
	var bestTok struct{ ascii, latex string }

	for _, a := range arrowTokens {
		idx := strings.Index(s, a.ascii)
		if idx < 0 {
			continue
		}
		// Prefer the earliest occurrence; at equal positions the longer
		// token already won because the list is ordered longest first.
		if best < 0 || idx < best {
			best = idx
			bestTok = struct{ ascii, latex string }{a.ascii, a.latex}
		}
	}

	return best, bestTok
}

var latexSpecials = strings.NewReplacer(
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\~{}`,
	`^`, `\^{}`,
)

// renderArrowText escapes LaTeX-special characters in a non-arrow
// segment and sets it in text mode.
func renderArrowText(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return ""
	}
	return `\text{` + latexSpecials.Replace(segment) + `}`
}
