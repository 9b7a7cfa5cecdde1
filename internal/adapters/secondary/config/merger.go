package config

import (
	"os"
	"strconv"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
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
	if result == nil {
		result = &entities.Config{}
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags ports.FlagOverrides) *entities.Config {
	result := deepCopy(config)

	if flags.Port > 0 {
		result.Server.Port = flags.Port
	}
	if flags.Host != "" {
		result.Server.Host = flags.Host
	}
	if flags.CooldownMs > 0 {
		result.Navigation.CooldownMs = flags.CooldownMs
	}
	if flags.Layout != "" {
		result.Navigation.Layout = flags.Layout
	}
	if flags.LogLevel != "" {
		result.Logging.Level = flags.LogLevel
	}
	if flags.Verbose {
		result.Logging.Verbose = true
		result.Logging.Level = string(entities.LogLevelDebug)
	}

	return result
}

// ApplyEnvVars applies SLIDESTEP_* environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("SLIDESTEP_HOST"); host != "" {
		result.Server.Host = host
	}
	if port, ok := envInt("SLIDESTEP_PORT"); ok && port > 0 {
		result.Server.Port = port
	}

	if cooldown, ok := envInt("SLIDESTEP_COOLDOWN_MS"); ok && cooldown > 0 {
		result.Navigation.CooldownMs = cooldown
	}
	if threshold := os.Getenv("SLIDESTEP_WHEEL_THRESHOLD"); threshold != "" {
		if value, err := strconv.ParseFloat(threshold, 64); err == nil && value >= 0 {
			result.Navigation.WheelNoiseThreshold = value
		}
	}
	if layout := os.Getenv("SLIDESTEP_LAYOUT"); layout != "" {
		result.Navigation.Layout = entities.Layout(layout)
	}
	if pageKeys := os.Getenv("SLIDESTEP_PAGE_KEYS"); pageKeys != "" {
		if value, err := strconv.ParseBool(pageKeys); err == nil {
			result.Navigation.PageKeys = value
		}
	}

	if interval, ok := envInt("SLIDESTEP_RETRY_INTERVAL_MS"); ok && interval > 0 {
		result.Discovery.RetryIntervalMs = interval
	}
	if attempts, ok := envInt("SLIDESTEP_MAX_ATTEMPTS"); ok && attempts >= 0 {
		result.Discovery.MaxAttempts = attempts
	}

	if mode := os.Getenv("SLIDESTEP_WATCH_MODE"); mode != "" {
		result.Watcher.Mode = entities.WatcherMode(mode)
	}
	if interval, ok := envInt("SLIDESTEP_WATCH_INTERVAL"); ok && interval > 0 {
		result.Watcher.IntervalMs = interval
	}
	if debounce, ok := envInt("SLIDESTEP_WATCH_DEBOUNCE"); ok && debounce >= 0 {
		result.Watcher.DebounceMs = debounce
	}

	if level := os.Getenv("SLIDESTEP_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}
	if jsonFormat := os.Getenv("SLIDESTEP_LOG_JSON"); jsonFormat != "" {
		if value, err := strconv.ParseBool(jsonFormat); err == nil {
			result.Logging.JSONFormat = value
		}
	}
	if file := os.Getenv("SLIDESTEP_LOG_FILE"); file != "" {
		result.Logging.File = file
	}

	return result
}

// mergeInto merges source configuration into target configuration.
// TOML cannot tell false from unset, so booleans only ever switch on.
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	nav := source.Navigation
	if nav.CooldownMs != 0 {
		target.Navigation.CooldownMs = nav.CooldownMs
	}
	if nav.WheelNoiseThreshold != 0 {
		target.Navigation.WheelNoiseThreshold = nav.WheelNoiseThreshold
	}
	if nav.TouchMaxDurationMs != 0 {
		target.Navigation.TouchMaxDurationMs = nav.TouchMaxDurationMs
	}
	if nav.TouchMinDistance != 0 {
		target.Navigation.TouchMinDistance = nav.TouchMinDistance
	}
	if nav.Layout != "" {
		target.Navigation.Layout = nav.Layout
	}
	if nav.PageKeys {
		target.Navigation.PageKeys = true
	}

	if source.Discovery.RetryIntervalMs != 0 {
		target.Discovery.RetryIntervalMs = source.Discovery.RetryIntervalMs
	}
	if source.Discovery.MaxAttempts != 0 {
		target.Discovery.MaxAttempts = source.Discovery.MaxAttempts
	}
	if source.Discovery.InitialDelayMs != 0 {
		target.Discovery.InitialDelayMs = source.Discovery.InitialDelayMs
	}

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
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string(nil), source.Server.CORSOrigins...)
	}

	if source.Watcher.Mode != "" {
		target.Watcher.Mode = source.Watcher.Mode
	}
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
}

func envInt(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}
	return &dst
}

var _ ports.ConfigMerger = (*ConfigMerger)(nil)
