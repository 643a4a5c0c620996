package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// TOMLLoader reads editor configuration from TOML files: a per-user
// global file plus an optional per-deck file sitting next to the deck.
type TOMLLoader struct {
	globalPath string
	localName  string
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)

// NewTOMLLoader creates a loader rooted at the user's config directory.
func NewTOMLLoader() *TOMLLoader {
	home, _ := os.UserHomeDir()
	return &TOMLLoader{
		globalPath: filepath.Join(home, ".config", "slidekit", "config.toml"),
		localName:  "slidekit.toml",
	}
}

// LoadGlobal loads the per-user config. On first run the defaults are
// persisted so the user has a file to edit, and returned directly.
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if _, err := os.Stat(l.globalPath); os.IsNotExist(err) {
		defaults := GetDefaultConfig()
		if err := l.persistDefaults(defaults); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		return defaults, nil
	}

	return l.read(l.globalPath)
}

// LoadLocal loads the per-deck config from dir. A missing file is not
// an error: most decks rely on the global config alone.
func (l *TOMLLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	path := filepath.Join(dir, l.localName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	return l.read(path)
}

func (l *TOMLLoader) read(path string) (*entities.Config, error) {
	var cfg entities.Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return &cfg, nil
}

func (l *TOMLLoader) persistDefaults(cfg *entities.Config) error {
	if err := os.MkdirAll(filepath.Dir(l.globalPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}

	return os.WriteFile(l.globalPath, data, 0o600)
}
