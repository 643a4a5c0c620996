package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	httpserver "github.com/slidekit/slidekit/internal/adapters/primary/http"
	"github.com/slidekit/slidekit/internal/adapters/secondary/config"
	"github.com/slidekit/slidekit/internal/adapters/secondary/contentpath"
	"github.com/slidekit/slidekit/internal/adapters/secondary/renderer"
	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/services"
)

var (
	// Serve command flags
	port           int
	host           string
	noMathWrap     bool
	noArrowSchemes bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [deck]",
	Short: "Serve a deck file for editing",
	Long: `Start a local HTTP server for the given deck file. The API exposes
the rendered deck, a render preview endpoint for the edit overlay,
edit begin/commit, style overrides, and a websocket change feed.

Example:
  slidekit serve deck.json
  slidekit serve slides.yaml --port 8080`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Defaults come from config; flags override when set
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&noMathWrap, "no-math-wrap", false, "Disable math auto-wrapping (overrides config)")
	serveCmd.Flags().BoolVar(&noArrowSchemes, "no-arrow-schemes", false, "Disable arrow scheme blocks (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	deckPath := args[0]

	finalConfig, err := loadAndMergeConfig(cmd, deckPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := finalConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateServeConfig(finalConfig); err != nil {
		return err
	}

	logger := newSlogLogger(finalConfig.Logging)

	// Wire the service graph
	resolver := contentpath.NewResolver()
	textRenderer := renderer.NewMarkdownRenderer(finalConfig.Renderer)
	deckService := services.NewDeckService(textRenderer, resolver, logger)
	editingService := services.NewEditingService(resolver, nil, logger)

	server := httpserver.NewServer(
		deckService,
		editingService,
		editingService,
		textRenderer,
		&finalConfig.Server,
		&finalConfig.Logging,
	)
	editingService.SetNotifier(server)

	ctx := cmd.Context()

	deck, err := deckService.LoadDeck(ctx, deckPath)
	if err != nil {
		return fmt.Errorf("loading deck %s: %w", deckPath, err)
	}
	server.SetDeck(deck)

	logger.Info("serving deck",
		slog.String("file", deckPath),
		slog.String("title", deck.DisplayTitle()),
		slog.Int("slides", len(deck.Slides)),
	)

	if err := server.Start(ctx, finalConfig.Server.Port, finalConfig.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	fmt.Printf("Editing %s at http://%s:%d\n", filepath.Base(deckPath), finalConfig.Server.Host, finalConfig.Server.Port)

	<-ctx.Done()

	return server.Stop(context.Background())
}

// validateServeConfig applies serve-specific validation after merge
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	if strings.Contains(config.Server.Host, " ") || strings.Contains(config.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

// loadAndMergeConfig loads configuration with proper precedence:
// CLI flags > environment > local config > global config > defaults
func loadAndMergeConfig(cmd *cobra.Command, deckPath string) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	merger := config.NewConfigMerger()
	ctx := cmd.Context()

	global, err := loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	local, err := loader.LoadLocal(ctx, filepath.Dir(deckPath))
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}

	merged := merger.Merge(config.GetDefaultConfig(), global, local)
	merged = merger.ApplyEnvVars(merged)

	flags := map[string]interface{}{}
	if cmd.Flags().Changed("port") {
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = host
	}
	if cmd.Flags().Changed("no-math-wrap") {
		flags["no-math-wrap"] = noMathWrap
	}
	if cmd.Flags().Changed("no-arrow-schemes") {
		flags["no-arrow-schemes"] = noArrowSchemes
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags["verbose"] = true
	}

	return merger.ApplyFlags(merged, flags), nil
}

// newSlogLogger builds the service logger from logging config
func newSlogLogger(cfg entities.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
