package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/slidekit/slidekit/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("SLIDEKIT_HOST", "localhost"),
			Port:            getEnvIntOrDefault("SLIDEKIT_PORT", 4810),
			ReadTimeout:     getEnvIntOrDefault("SLIDEKIT_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("SLIDEKIT_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SLIDEKIT_SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault("SLIDEKIT_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:4810",
				"http://127.0.0.1:4810",
			}),
		},
		Renderer: entities.RendererConfig{
			AutoWrapMath:       getEnvBoolOrDefault("SLIDEKIT_AUTO_WRAP_MATH", true),
			ArrowSchemes:       getEnvBoolOrDefault("SLIDEKIT_ARROW_SCHEMES", true),
			BlockWrapThreshold: getEnvIntOrDefault("SLIDEKIT_BLOCK_WRAP_THRESHOLD", 80),
		},
		Editor: entities.EditorConfig{
			DefaultFontFamily: getEnvOrDefault("SLIDEKIT_FONT_FAMILY", ""),
			DefaultFontSize:   getEnvIntOrDefault("SLIDEKIT_FONT_SIZE", 0),
		},
		Logging: entities.LoggingConfig{
			Level:   getEnvOrDefault("SLIDEKIT_LOG_LEVEL", "info"),
			Verbose: getEnvBoolOrDefault("SLIDEKIT_LOG_VERBOSE", false),
		},
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
