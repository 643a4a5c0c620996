package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrowSchemes(t *testing.T) {
	t.Run("single arrow line becomes aligned block", func(t *testing.T) {
		got := ArrowSchemes("A -> B")

		expected := "$$\n\\begin{aligned}\n\\text{A} &\\rightarrow \\text{B}\n\\end{aligned}\n$$"
		assert.Equal(t, expected, got)
	})

	t.Run("consecutive arrow lines collapse into one block", func(t *testing.T) {
		input := "Water -> Steam\nSteam -> Energy"
		got := ArrowSchemes(input)

		assert.Equal(t, 1, strings.Count(got, `\begin{aligned}`))
		assert.Equal(t, 2, strings.Count(got, `\rightarrow`))
		assert.Contains(t, got, `\text{Water} &\rightarrow \text{Steam} \\`)
		assert.Contains(t, got, `\text{Steam} &\rightarrow \text{Energy}`)
	})

	t.Run("separated runs become separate blocks", func(t *testing.T) {
		input := "A -> B\n\nC -> D"
		got := ArrowSchemes(input)

		assert.Equal(t, 2, strings.Count(got, `\begin{aligned}`))
	})

	t.Run("double and bidirectional arrows", func(t *testing.T) {
		tests := []struct {
			input    string
			expected string
		}{
			{"A => B", `\Rightarrow`},
			{"A <=> B", `\Leftrightarrow`},
			{"A <-> B", `\leftrightarrow`},
			{"A <- B", `\leftarrow`},
		}
		for _, tt := range tests {
			got := ArrowSchemes(tt.input)
			assert.Contains(t, got, tt.expected, "input %q", tt.input)
		}
	})

	t.Run("longest arrow wins at same position", func(t *testing.T) {
		got := ArrowSchemes("A <=> B")

		assert.NotContains(t, got, `\Leftarrow`)
		assert.Contains(t, got, `\Leftrightarrow`)
	})

	t.Run("only the first arrow per row carries the alignment point", func(t *testing.T) {
		got := ArrowSchemes("A -> B -> C")

		assert.Equal(t, 1, strings.Count(got, "&"))
		assert.Equal(t, 2, strings.Count(got, `\rightarrow`))
	})

	t.Run("list items are left alone", func(t *testing.T) {
		input := "- step one -> step two"
		assert.Equal(t, input, ArrowSchemes(input))

		input = "1. first -> second"
		assert.Equal(t, input, ArrowSchemes(input))
	})

	t.Run("mathy lines are left alone", func(t *testing.T) {
		input := "$f$ -> g"
		assert.Equal(t, input, ArrowSchemes(input))

		input = `\alpha -> \beta`
		assert.Equal(t, input, ArrowSchemes(input))
	})

	t.Run("latex specials are escaped in text segments", func(t *testing.T) {
		got := ArrowSchemes("100% H_2 -> out")

		assert.Contains(t, got, `\%`)
		assert.Contains(t, got, `\_`)
	})

	t.Run("prose without arrows is untouched", func(t *testing.T) {
		input := "nothing to see here\nor here"
		assert.Equal(t, input, ArrowSchemes(input))
	})
}
