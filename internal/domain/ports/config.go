package ports

import (
	"context"

	"github.com/slidekit/slidekit/internal/domain/entities"
)

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// LoadGlobal loads the global config, creating defaults on first run.
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads the optional per-project config from dir. A nil
	// config with nil error means no local config exists.
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)
}

// ConfigMerger combines configuration layers.
type ConfigMerger interface {
	// Merge merges configs with later entries taking precedence.
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyFlags applies CLI flag overrides.
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config

	// ApplyEnvVars applies environment variable overrides.
	ApplyEnvVars(config *entities.Config) *entities.Config
}
