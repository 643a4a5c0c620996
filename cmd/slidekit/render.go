package main

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slidekit/slidekit/internal/adapters/secondary/contentpath"
	"github.com/slidekit/slidekit/internal/adapters/secondary/renderer"
	"github.com/slidekit/slidekit/internal/domain/services"
)

var renderOutput string

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render [deck]",
	Short: "Render a deck file to a static HTML document",
	Long: `Render every slide of a deck file through the full normalization
pipeline and write the result as one standalone HTML document.

Example:
  slidekit render deck.json
  slidekit render slides.yaml -o slides.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default: stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	deckPath := args[0]

	finalConfig, err := loadAndMergeConfig(cmd, deckPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newSlogLogger(finalConfig.Logging)
	resolver := contentpath.NewResolver()
	textRenderer := renderer.NewMarkdownRenderer(finalConfig.Renderer)
	deckService := services.NewDeckService(textRenderer, resolver, logger)

	ctx := cmd.Context()

	deck, err := deckService.LoadDeck(ctx, deckPath)
	if err != nil {
		return fmt.Errorf("loading deck %s: %w", deckPath, err)
	}

	rendered, err := deckService.RenderDeck(ctx, deck)
	if err != nil {
		return fmt.Errorf("rendering deck: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(deck.DisplayTitle()))
	b.WriteString("</head>\n<body>\n")
	for _, slide := range rendered {
		fmt.Fprintf(&b, "<section class=\"slide\" id=%q>\n", slide.ID)
		for _, leaf := range slide.Leaves {
			fmt.Fprintf(&b, "<div class=\"fragment\" data-path=%q>%s</div>\n", leaf.Path, leaf.HTML)
		}
		b.WriteString("</section>\n")
	}
	b.WriteString("</body>\n</html>\n")

	if renderOutput == "" {
		fmt.Print(b.String())
		return nil
	}

	if err := os.WriteFile(renderOutput, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOutput, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", renderOutput)
	return nil
}
