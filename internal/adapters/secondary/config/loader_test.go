package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	t.Run("creates config on first run", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "nested", "config.toml")
		loader := NewTOMLLoaderWithPaths(globalPath, "slidestep.toml")

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)
		require.NotNil(t, config)

		_, err = os.Stat(globalPath)
		assert.NoError(t, err)

		assert.Equal(t, 500, config.Navigation.CooldownMs)
		assert.Equal(t, 20.0, config.Navigation.WheelNoiseThreshold)
		assert.Equal(t, entities.LayoutAuto, config.Navigation.Layout)
		assert.Equal(t, 1000, config.Discovery.RetryIntervalMs)
		assert.Equal(t, entities.WatcherModeFSNotify, config.Watcher.Mode)
	})

	t.Run("loads existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")

		configContent := `
[navigation]
cooldown_ms = 450
layout = "nearest_center"
page_keys = true

[discovery]
retry_interval_ms = 250
max_attempts = 20
initial_delay_ms = 2000

[server]
host = "127.0.0.1"
port = 8080

[watcher]
mode = "polling"
interval_ms = 100
`
		require.NoError(t, os.WriteFile(globalPath, []byte(configContent), 0644))

		loader := NewTOMLLoaderWithPaths(globalPath, "slidestep.toml")
		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 450, config.Navigation.CooldownMs)
		assert.Equal(t, entities.LayoutNearestCenter, config.Navigation.Layout)
		assert.True(t, config.Navigation.PageKeys)
		assert.Equal(t, 20, config.Discovery.MaxAttempts)
		assert.Equal(t, 2000, config.Discovery.InitialDelayMs)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, entities.WatcherModePolling, config.Watcher.Mode)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[navigation]\ncooldown_ms = 5\n"), 0644))

		loader := NewTOMLLoaderWithPaths(globalPath, "slidestep.toml")
		_, err := loader.LoadGlobal(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[navigation]\ncooldwn_ms = 500\n"), 0644))

		loader := NewTOMLLoaderWithPaths(globalPath, "slidestep.toml")
		_, err := loader.LoadGlobal(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "navigation.cooldwn_ms")
	})

	t.Run("reports malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		globalPath := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(globalPath, []byte("[navigation\n"), 0644))

		loader := NewTOMLLoaderWithPaths(globalPath, "slidestep.toml")
		_, err := loader.LoadGlobal(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	t.Run("missing local config is not an error", func(t *testing.T) {
		loader := NewTOMLLoaderWithPaths(filepath.Join(t.TempDir(), "config.toml"), "slidestep.toml")

		config, err := loader.LoadLocal(context.Background(), t.TempDir())
		assert.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("loads local config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "slidestep.toml"), []byte("[navigation]\nwheel_noise_threshold = 35.5\n"), 0644))

		loader := NewTOMLLoaderWithPaths(filepath.Join(t.TempDir(), "config.toml"), "slidestep.toml")
		config, err := loader.LoadLocal(context.Background(), dir)

		require.NoError(t, err)
		assert.Equal(t, 35.5, config.Navigation.WheelNoiseThreshold)
	})
}

func TestTOMLLoader_LoadFile(t *testing.T) {
	loader := NewTOMLLoaderWithPaths(filepath.Join(t.TempDir(), "config.toml"), "slidestep.toml")

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := loader.LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.toml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config")
	})

	t.Run("loads explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.toml")
		require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0644))

		config, err := loader.LoadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "debug", config.Logging.Level)
	})
}

func TestTOMLLoader_Paths(t *testing.T) {
	loader := NewTOMLLoaderWithPaths("/etc/slidestep/config.toml", "slidestep.toml")

	assert.Equal(t, "/etc/slidestep/config.toml", loader.GetGlobalPath())
	assert.Equal(t, filepath.Join("/work", "slidestep.toml"), loader.GetLocalPath("/work"))
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, GetDefaultConfig()))

	out := buf.String()
	assert.Contains(t, out, "[navigation]")
	assert.Contains(t, out, "cooldown_ms = 500")
	assert.Contains(t, out, "[discovery]")
	assert.Contains(t, out, "[watcher]")
}
