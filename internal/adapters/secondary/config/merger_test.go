package config

import (
	"os"
	"testing"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestConfigMerger_Merge(t *testing.T) {
	merger := NewConfigMerger()

	t.Run("empty input returns defaults", func(t *testing.T) {
		result := merger.Merge()
		assert.NotNil(t, result)
		assert.Equal(t, "localhost", result.Server.Host)
	})

	t.Run("later configs take precedence", func(t *testing.T) {
		base := &entities.Config{
			Server: entities.ServerConfig{Host: "localhost", Port: 4810},
			Renderer: entities.RendererConfig{
				AutoWrapMath:       true,
				BlockWrapThreshold: 80,
			},
		}
		local := &entities.Config{
			Server:   entities.ServerConfig{Port: 9000},
			Renderer: entities.RendererConfig{AutoWrapMath: true, BlockWrapThreshold: 120},
			Editor:   entities.EditorConfig{DefaultFontFamily: "Inter"},
		}

		result := merger.Merge(base, local)

		assert.Equal(t, "localhost", result.Server.Host) // kept from base
		assert.Equal(t, 9000, result.Server.Port)        // overridden
		assert.Equal(t, 120, result.Renderer.BlockWrapThreshold)
		assert.Equal(t, "Inter", result.Editor.DefaultFontFamily)
	})

	t.Run("nil configs are skipped", func(t *testing.T) {
		base := &entities.Config{
			Server: entities.ServerConfig{Host: "example.com", Port: 4810},
		}

		result := merger.Merge(base, nil, nil)
		assert.Equal(t, "example.com", result.Server.Host)
		assert.Equal(t, 4810, result.Server.Port)
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		base := &entities.Config{
			Server: entities.ServerConfig{Port: 4810, CORSOrigins: []string{"http://localhost:3000"}},
		}
		local := &entities.Config{
			Server: entities.ServerConfig{Port: 9000, CORSOrigins: []string{"http://localhost:5173"}},
		}

		result := merger.Merge(base, local)
		result.Server.CORSOrigins[0] = "http://evil.example"

		assert.Equal(t, 4810, base.Server.Port)
		assert.Equal(t, "http://localhost:3000", base.Server.CORSOrigins[0])
		assert.Equal(t, "http://localhost:5173", local.Server.CORSOrigins[0])
	})
}

func TestConfigMerger_ApplyFlags(t *testing.T) {
	merger := NewConfigMerger()

	base := &entities.Config{
		Server:   entities.ServerConfig{Host: "localhost", Port: 4810},
		Renderer: entities.RendererConfig{AutoWrapMath: true, ArrowSchemes: true},
	}

	t.Run("port and host flags", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"port": 8080,
			"host": "0.0.0.0",
		})

		assert.Equal(t, 8080, result.Server.Port)
		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 4810, base.Server.Port) // original untouched
	})

	t.Run("renderer toggles", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{
			"no-math-wrap":     true,
			"no-arrow-schemes": true,
		})

		assert.False(t, result.Renderer.AutoWrapMath)
		assert.False(t, result.Renderer.ArrowSchemes)
	})

	t.Run("verbose flag raises log level", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{"verbose": true})

		assert.True(t, result.Logging.Verbose)
		assert.Equal(t, string(entities.LogLevelDebug), result.Logging.Level)
	})

	t.Run("zero port is ignored", func(t *testing.T) {
		result := merger.ApplyFlags(base, map[string]interface{}{"port": 0})
		assert.Equal(t, 4810, result.Server.Port)
	})
}

func TestConfigMerger_ApplyEnvVars(t *testing.T) {
	merger := NewConfigMerger()

	base := &entities.Config{
		Server:   entities.ServerConfig{Host: "localhost", Port: 4810},
		Renderer: entities.RendererConfig{AutoWrapMath: true, BlockWrapThreshold: 80},
	}

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("SLIDEKIT_HOST", "0.0.0.0")
		t.Setenv("SLIDEKIT_PORT", "9000")
		t.Setenv("SLIDEKIT_AUTO_WRAP_MATH", "false")
		t.Setenv("SLIDEKIT_BLOCK_WRAP_THRESHOLD", "150")

		result := merger.ApplyEnvVars(base)

		assert.Equal(t, "0.0.0.0", result.Server.Host)
		assert.Equal(t, 9000, result.Server.Port)
		assert.False(t, result.Renderer.AutoWrapMath)
		assert.Equal(t, 150, result.Renderer.BlockWrapThreshold)
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Setenv("SLIDEKIT_PORT", "not-a-number")
		t.Setenv("SLIDEKIT_AUTO_WRAP_MATH", "maybe")

		result := merger.ApplyEnvVars(base)

		assert.Equal(t, 4810, result.Server.Port)
		assert.True(t, result.Renderer.AutoWrapMath)
	})

	t.Run("no environment leaves config unchanged", func(t *testing.T) {
		os.Unsetenv("SLIDEKIT_HOST")
		os.Unsetenv("SLIDEKIT_PORT")

		result := merger.ApplyEnvVars(base)
		assert.Equal(t, base.Server, result.Server)
	})
}
