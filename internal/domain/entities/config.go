package entities

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the slidestep.toml document
type Config struct {
	Navigation NavigationConfig `toml:"navigation"`
	Discovery  DiscoveryConfig  `toml:"discovery"`
	Server     ServerConfig     `toml:"server"`
	Watcher    WatcherConfig    `toml:"watcher"`
	Logging    LoggingConfig    `toml:"logging"`
}

// Validate checks every section and names the first one that fails
func (c *Config) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"navigation", c.Navigation.Validate},
		{"discovery", c.Discovery.Validate},
		{"server", c.Server.Validate},
		{"watcher", c.Watcher.Validate},
		{"logging", c.Logging.Validate},
	}

	for _, section := range sections {
		if err := section.validate(); err != nil {
			return fmt.Errorf("%s config: %w", section.name, err)
		}
	}
	return nil
}

// NavigationConfig contains the controller's timing and gating values
type NavigationConfig struct {
	CooldownMs          int     `toml:"cooldown_ms"`
	WheelNoiseThreshold float64 `toml:"wheel_noise_threshold"`
	TouchMaxDurationMs  int     `toml:"touch_max_duration_ms"`
	TouchMinDistance    float64 `toml:"touch_min_distance"`
	Layout              Layout  `toml:"layout"`
	PageKeys            bool    `toml:"page_keys"`
}

// Validate validates navigation configuration
func (n NavigationConfig) Validate() error {
	if n.CooldownMs != 0 && (n.CooldownMs < 100 || n.CooldownMs > 2000) {
		return fmt.Errorf("cooldown must be between 100ms and 2000ms, got %dms", n.CooldownMs)
	}

	if n.WheelNoiseThreshold < 0 {
		return errors.New("wheel noise threshold must be non-negative")
	}

	if n.TouchMaxDurationMs < 0 {
		return errors.New("touch max duration must be non-negative")
	}

	if n.TouchMinDistance < 0 {
		return errors.New("touch min distance must be non-negative")
	}

	return n.Layout.Validate()
}

// GetCooldown returns the cooldown as a duration
func (n NavigationConfig) GetCooldown() time.Duration {
	return millisOr(n.CooldownMs, 500*time.Millisecond)
}

// GetThresholds returns the input gating values with defaults applied
func (n NavigationConfig) GetThresholds() Thresholds {
	th := DefaultThresholds()
	if n.WheelNoiseThreshold > 0 {
		th.WheelNoise = n.WheelNoiseThreshold
	}
	if n.TouchMaxDurationMs > 0 {
		th.TouchMaxDuration = time.Duration(n.TouchMaxDurationMs) * time.Millisecond
	}
	if n.TouchMinDistance > 0 {
		th.TouchMinDistance = n.TouchMinDistance
	}
	th.PageKeys = n.PageKeys
	return th
}

// DiscoveryConfig controls how often the controller retries locating the feed
type DiscoveryConfig struct {
	RetryIntervalMs int `toml:"retry_interval_ms"`
	MaxAttempts     int `toml:"max_attempts"`
	InitialDelayMs  int `toml:"initial_delay_ms"`
}

// Validate validates discovery configuration
func (d DiscoveryConfig) Validate() error {
	if d.RetryIntervalMs < 0 {
		return errors.New("retry interval must be non-negative")
	}

	if d.MaxAttempts < 0 {
		return errors.New("max attempts must be non-negative")
	}

	if d.InitialDelayMs < 0 {
		return errors.New("initial delay must be non-negative")
	}

	return nil
}

// GetRetryInterval returns the retry interval as a duration
func (d DiscoveryConfig) GetRetryInterval() time.Duration {
	return millisOr(d.RetryIntervalMs, time.Second)
}

// GetInitialDelay returns the delay before the first attach attempt
func (d DiscoveryConfig) GetInitialDelay() time.Duration {
	return time.Duration(d.InitialDelayMs) * time.Millisecond
}

// ServerConfig is the page bridge listener. Timeouts are whole seconds.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// defaultPageOrigins are the dev servers a host page is usually served from
var defaultPageOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
}

func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && net.ParseIP(s.Host) == nil {
		if _, err := net.LookupHost(s.Host); err != nil {
			return fmt.Errorf("invalid host: %w", err)
		}
	}

	for name, seconds := range map[string]int{
		"read timeout":     s.ReadTimeout,
		"write timeout":    s.WriteTimeout,
		"shutdown timeout": s.ShutdownTimeout,
	} {
		if seconds < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}

	for _, origin := range s.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}
	return nil
}

// validateOrigin accepts "*" or an http(s) origin the page may connect from
func validateOrigin(origin string) error {
	switch {
	case origin == "":
		return errors.New("CORS origin cannot be empty")
	case origin == "*":
		return nil
	}

	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
	}
	return nil
}

func (s ServerConfig) GetReadTimeout() time.Duration {
	return secondsOr(s.ReadTimeout, 30*time.Second)
}

func (s ServerConfig) GetWriteTimeout() time.Duration {
	return secondsOr(s.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout bounds how long open page sockets get to close
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	return secondsOr(s.ShutdownTimeout, 5*time.Second)
}

// GetCORSOrigins returns the configured origins, or the local dev servers
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return append([]string(nil), defaultPageOrigins...)
	}
	return s.CORSOrigins
}

// IsDevelopment relaxes the websocket origin check
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development"
}

func secondsOr(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// WatcherMode selects the change detection backend
type WatcherMode string

const (
	WatcherModeFSNotify WatcherMode = "fsnotify"
	WatcherModePolling  WatcherMode = "polling"
)

// WatcherConfig tunes manifest change detection
type WatcherConfig struct {
	Mode       WatcherMode `toml:"mode"`
	IntervalMs int         `toml:"interval_ms"` // polling only
	DebounceMs int         `toml:"debounce_ms"`
}

func (w WatcherConfig) Validate() error {
	if w.Mode != "" && w.Mode != WatcherModeFSNotify && w.Mode != WatcherModePolling {
		return fmt.Errorf("invalid watcher mode: %s (must be fsnotify or polling)", w.Mode)
	}
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}
	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}
	return nil
}

func (w WatcherConfig) GetMode() WatcherMode {
	if w.Mode == "" {
		return WatcherModeFSNotify
	}
	return w.Mode
}

func (w WatcherConfig) GetInterval() time.Duration {
	return millisOr(w.IntervalMs, 200*time.Millisecond)
}

// GetDebounce is how long a burst of writes is coalesced into one reload
func (w WatcherConfig) GetDebounce() time.Duration {
	return millisOr(w.DebounceMs, 150*time.Millisecond)
}

func millisOr(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

// LogLevel names a slog level in config files
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig selects where navigation logs go and how much is kept
type LoggingConfig struct {
	Level      string `toml:"level"`
	Verbose    bool   `toml:"verbose"`
	JSONFormat bool   `toml:"json_format"`
	// File, when set, must be an absolute path in an existing directory
	File       string `toml:"file"`
}

func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File == "" {
		return nil
	}
	if !filepath.IsAbs(l.File) {
		return errors.New("log file path must be absolute")
	}
	if dir := filepath.Dir(l.File); !dirExists(dir) {
		return fmt.Errorf("log file directory does not exist: %s", dir)
	}
	return nil
}

// GetLevel applies the info default; verbose lifts info to debug
func (l LoggingConfig) GetLevel() LogLevel {
	level := LogLevel(l.Level)
	switch {
	case level == "":
		return LogLevelInfo
	case l.Verbose && level == LogLevelInfo:
		return LogLevelDebug
	}
	return level
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
