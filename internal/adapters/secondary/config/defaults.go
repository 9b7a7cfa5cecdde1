package config

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

// DefaultPort is the page bridge port
const DefaultPort = 7433

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Navigation: entities.NavigationConfig{
			CooldownMs:          500,
			WheelNoiseThreshold: 20,
			TouchMaxDurationMs:  300,
			TouchMinDistance:    50,
			Layout:              entities.LayoutAuto,
			PageKeys:            false,
		},
		Discovery: entities.DiscoveryConfig{
			RetryIntervalMs: 1000,
			MaxAttempts:     0,
			InitialDelayMs:  0,
		},
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("SLIDESTEP_HOST", "localhost"),
			Port:            getEnvIntOrDefault("SLIDESTEP_PORT", DefaultPort),
			ReadTimeout:     getEnvIntOrDefault("SLIDESTEP_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("SLIDESTEP_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("SLIDESTEP_SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("SLIDESTEP_ENV", "development"),
			CORSOrigins: getEnvSliceOrDefault("SLIDESTEP_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Watcher: entities.WatcherConfig{
			Mode:       entities.WatcherModeFSNotify,
			IntervalMs: 200,
			DebounceMs: 150,
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault("SLIDESTEP_LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault("SLIDESTEP_LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault("SLIDESTEP_LOG_JSON", false),
			File:       getEnvOrDefault("SLIDESTEP_LOG_FILE", ""),
		},
	}
}

// Encode writes config as indented TOML
func Encode(w io.Writer, config *entities.Config) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(config)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault splits a comma separated variable
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
