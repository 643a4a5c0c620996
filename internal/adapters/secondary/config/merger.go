package config

import (
	"os"
	"strconv"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noMath, ok := flags["no-math-wrap"].(bool); ok {
		result.Renderer.AutoWrapMath = !noMath
	}

	if noArrows, ok := flags["no-arrow-schemes"].(bool); ok {
		result.Renderer.ArrowSchemes = !noArrows
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("SLIDEKIT_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("SLIDEKIT_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if wrapStr := os.Getenv("SLIDEKIT_AUTO_WRAP_MATH"); wrapStr != "" {
		if wrap, err := strconv.ParseBool(wrapStr); err == nil {
			result.Renderer.AutoWrapMath = wrap
		}
	}

	if arrowsStr := os.Getenv("SLIDEKIT_ARROW_SCHEMES"); arrowsStr != "" {
		if arrows, err := strconv.ParseBool(arrowsStr); err == nil {
			result.Renderer.ArrowSchemes = arrows
		}
	}

	if thresholdStr := os.Getenv("SLIDEKIT_BLOCK_WRAP_THRESHOLD"); thresholdStr != "" {
		if threshold, err := strconv.Atoi(thresholdStr); err == nil && threshold > 0 {
			result.Renderer.BlockWrapThreshold = threshold
		}
	}

	if family := os.Getenv("SLIDEKIT_FONT_FAMILY"); family != "" {
		result.Editor.DefaultFontFamily = family
	}

	if sizeStr := os.Getenv("SLIDEKIT_FONT_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			result.Editor.DefaultFontSize = size
		}
	}

	if level := os.Getenv("SLIDEKIT_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = make([]string, len(source.Server.CORSOrigins))
		copy(target.Server.CORSOrigins, source.Server.CORSOrigins)
	}

	// Renderer config. Booleans always merge: TOML cannot distinguish
	// false from unset.
	target.Renderer.AutoWrapMath = source.Renderer.AutoWrapMath
	target.Renderer.ArrowSchemes = source.Renderer.ArrowSchemes
	if source.Renderer.BlockWrapThreshold != 0 {
		target.Renderer.BlockWrapThreshold = source.Renderer.BlockWrapThreshold
	}

	// Editor config
	if source.Editor.DefaultFontFamily != "" {
		target.Editor.DefaultFontFamily = source.Editor.DefaultFontFamily
	}
	if source.Editor.DefaultFontSize != 0 {
		target.Editor.DefaultFontSize = source.Editor.DefaultFontSize
	}

	// Logging config
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	target.Logging.Verbose = source.Logging.Verbose
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := &entities.Config{
		Server: entities.ServerConfig{
			Host:            src.Server.Host,
			Port:            src.Server.Port,
			ReadTimeout:     src.Server.ReadTimeout,
			WriteTimeout:    src.Server.WriteTimeout,
			ShutdownTimeout: src.Server.ShutdownTimeout,
		},
		Renderer: src.Renderer,
		Editor:   src.Editor,
		Logging:  src.Logging,
	}

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = make([]string, len(src.Server.CORSOrigins))
		copy(dst.Server.CORSOrigins, src.Server.CORSOrigins)
	}

	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
