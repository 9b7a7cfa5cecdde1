package entities

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Navigation: NavigationConfig{
			CooldownMs:          500,
			WheelNoiseThreshold: 20,
			TouchMaxDurationMs:  300,
			TouchMinDistance:    50,
			Layout:              LayoutAuto,
		},
		Discovery: DiscoveryConfig{RetryIntervalMs: 1000},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            7433,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
		},
		Watcher: WatcherConfig{Mode: WatcherModeFSNotify, IntervalMs: 200, DebounceMs: 150},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("zero config is valid", func(t *testing.T) {
		config := &Config{}
		require.NoError(t, config.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(c *Config)
		section string
	}{
		{"navigation", func(c *Config) { c.Navigation.CooldownMs = 50 }, "navigation config"},
		{"discovery", func(c *Config) { c.Discovery.MaxAttempts = -1 }, "discovery config"},
		{"server", func(c *Config) { c.Server.Port = -1 }, "server config"},
		{"watcher", func(c *Config) { c.Watcher.Mode = "inotify" }, "watcher config"},
		{"logging", func(c *Config) { c.Logging.Level = "trace" }, "logging config"},
	}

	for _, tt := range tests {
		t.Run("invalid "+tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.section)
		})
	}
}

func TestNavigationConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  NavigationConfig
		wantErr string
	}{
		{name: "defaults", config: NavigationConfig{}},
		{name: "cooldown lower bound", config: NavigationConfig{CooldownMs: 100}},
		{name: "cooldown upper bound", config: NavigationConfig{CooldownMs: 2000}},
		{name: "cooldown too short", config: NavigationConfig{CooldownMs: 99}, wantErr: "cooldown must be between"},
		{name: "cooldown too long", config: NavigationConfig{CooldownMs: 2001}, wantErr: "cooldown must be between"},
		{name: "negative wheel threshold", config: NavigationConfig{WheelNoiseThreshold: -1}, wantErr: "wheel noise threshold"},
		{name: "negative touch duration", config: NavigationConfig{TouchMaxDurationMs: -1}, wantErr: "touch max duration"},
		{name: "negative touch distance", config: NavigationConfig{TouchMinDistance: -1}, wantErr: "touch min distance"},
		{name: "unknown layout", config: NavigationConfig{Layout: "grid"}, wantErr: "invalid layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNavigationConfig_Getters(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config := NavigationConfig{}

		assert.Equal(t, 500*time.Millisecond, config.GetCooldown())
		assert.Equal(t, DefaultThresholds(), config.GetThresholds())
	})

	t.Run("custom values", func(t *testing.T) {
		config := NavigationConfig{
			CooldownMs:          800,
			WheelNoiseThreshold: 5,
			TouchMaxDurationMs:  250,
			TouchMinDistance:    30,
			PageKeys:            true,
		}

		assert.Equal(t, 800*time.Millisecond, config.GetCooldown())
		assert.Equal(t, Thresholds{
			WheelNoise:       5,
			TouchMaxDuration: 250 * time.Millisecond,
			TouchMinDistance: 30,
			PageKeys:         true,
		}, config.GetThresholds())
	})
}

func TestDiscoveryConfig(t *testing.T) {
	t.Run("durations", func(t *testing.T) {
		assert.Equal(t, time.Second, DiscoveryConfig{}.GetRetryInterval())
		assert.Equal(t, 250*time.Millisecond, DiscoveryConfig{RetryIntervalMs: 250}.GetRetryInterval())
		assert.Equal(t, 2*time.Second, DiscoveryConfig{InitialDelayMs: 2000}.GetInitialDelay())
	})

	t.Run("negative values", func(t *testing.T) {
		for _, config := range []DiscoveryConfig{
			{RetryIntervalMs: -1},
			{MaxAttempts: -1},
			{InitialDelayMs: -1},
		} {
			assert.Error(t, config.Validate())
		}
	})
}

func TestServerConfig_Validate(t *testing.T) {
	t.Run("valid server config", func(t *testing.T) {
		assert.NoError(t, validConfig().Server.Validate())
	})

	t.Run("valid port range", func(t *testing.T) {
		for _, port := range []int{0, 1, 3000, 7433, 65535} {
			config := ServerConfig{Port: port}
			assert.NoError(t, config.Validate(), "port %d should be valid", port)
		}
	})

	tests := []struct {
		name    string
		config  ServerConfig
		wantErr string
	}{
		{"negative port", ServerConfig{Port: -1}, "port must be between 0 and 65535"},
		{"port too high", ServerConfig{Port: 70000}, "port must be between 0 and 65535"},
		{"negative read timeout", ServerConfig{ReadTimeout: -1}, "read timeout"},
		{"negative write timeout", ServerConfig{WriteTimeout: -1}, "write timeout"},
		{"negative shutdown timeout", ServerConfig{ShutdownTimeout: -1}, "shutdown timeout"},
		{"empty CORS origin", ServerConfig{CORSOrigins: []string{""}}, "CORS origin cannot be empty"},
		{"CORS origin without scheme", ServerConfig{CORSOrigins: []string{"example.com"}}, "invalid CORS origin format"},
		{"CORS origin with other scheme", ServerConfig{CORSOrigins: []string{"ftp://example.com"}}, "invalid CORS origin format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("CORS origins", func(t *testing.T) {
		config := ServerConfig{
			CORSOrigins: []string{"*", "http://localhost:3000", "https://example.com"},
		}
		assert.NoError(t, config.Validate())
	})
}

func TestServerConfig_Getters(t *testing.T) {
	t.Run("custom timeouts", func(t *testing.T) {
		config := ServerConfig{ReadTimeout: 45, WriteTimeout: 60, ShutdownTimeout: 10}

		assert.Equal(t, 45*time.Second, config.GetReadTimeout())
		assert.Equal(t, 60*time.Second, config.GetWriteTimeout())
		assert.Equal(t, 10*time.Second, config.GetShutdownTimeout())
	})

	t.Run("non-positive timeouts use defaults", func(t *testing.T) {
		config := ServerConfig{ReadTimeout: -5, ShutdownTimeout: 0}

		assert.Equal(t, 30*time.Second, config.GetReadTimeout())
		assert.Equal(t, 30*time.Second, config.GetWriteTimeout())
		assert.Equal(t, 5*time.Second, config.GetShutdownTimeout())
	})

	t.Run("CORS defaults", func(t *testing.T) {
		assert.Equal(t, []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}, ServerConfig{}.GetCORSOrigins())

		custom := []string{"https://example.com"}
		assert.Equal(t, custom, ServerConfig{CORSOrigins: custom}.GetCORSOrigins())
	})

	t.Run("environment", func(t *testing.T) {
		assert.True(t, ServerConfig{}.IsDevelopment())
		assert.True(t, ServerConfig{Environment: "development"}.IsDevelopment())
		assert.False(t, ServerConfig{Environment: "production"}.IsDevelopment())
	})
}

func TestWatcherConfig(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, WatcherConfig{Mode: WatcherModePolling, IntervalMs: 50}.Validate())
		assert.ErrorContains(t, WatcherConfig{Mode: "kqueue"}.Validate(), "invalid watcher mode")
		assert.ErrorContains(t, WatcherConfig{IntervalMs: 25}.Validate(), "at least 50ms")
		assert.ErrorContains(t, WatcherConfig{DebounceMs: -1}.Validate(), "debounce")
	})

	t.Run("defaults", func(t *testing.T) {
		config := WatcherConfig{}

		assert.Equal(t, WatcherModeFSNotify, config.GetMode())
		assert.Equal(t, 200*time.Millisecond, config.GetInterval())
		assert.Equal(t, 150*time.Millisecond, config.GetDebounce())
	})

	t.Run("custom durations", func(t *testing.T) {
		config := WatcherConfig{Mode: WatcherModePolling, IntervalMs: 300, DebounceMs: 750}

		assert.Equal(t, WatcherModePolling, config.GetMode())
		assert.Equal(t, 300*time.Millisecond, config.GetInterval())
		assert.Equal(t, 750*time.Millisecond, config.GetDebounce())
	})
}

func TestLoggingConfig(t *testing.T) {
	t.Run("levels", func(t *testing.T) {
		for _, level := range []string{"", "debug", "info", "warn", "error"} {
			assert.NoError(t, LoggingConfig{Level: level}.Validate(), level)
		}
		assert.ErrorContains(t, LoggingConfig{Level: "verbose"}.Validate(), "invalid log level")
	})

	t.Run("log file must be absolute", func(t *testing.T) {
		assert.ErrorContains(t, LoggingConfig{File: "slidestep.log"}.Validate(), "must be absolute")
	})

	t.Run("log file directory must exist", func(t *testing.T) {
		dir := t.TempDir()
		assert.NoError(t, LoggingConfig{File: filepath.Join(dir, "slidestep.log")}.Validate())

		missing := filepath.Join(dir, "missing", "slidestep.log")
		assert.ErrorContains(t, LoggingConfig{File: missing}.Validate(), "does not exist")
	})

	t.Run("get level", func(t *testing.T) {
		assert.Equal(t, LogLevelInfo, LoggingConfig{}.GetLevel())
		assert.Equal(t, LogLevelDebug, LoggingConfig{Level: "info", Verbose: true}.GetLevel())
		assert.Equal(t, LogLevelWarn, LoggingConfig{Level: "warn", Verbose: true}.GetLevel())
	})
}

func TestLayout(t *testing.T) {
	assert.Equal(t, LayoutAuto, Layout("").OrDefault())
	assert.Equal(t, LayoutNearestCenter, LayoutNearestCenter.OrDefault())
	assert.NoError(t, LayoutUniform.Validate())
	assert.ErrorContains(t, Layout("masonry").Validate(), "invalid layout")
}
