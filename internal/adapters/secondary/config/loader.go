package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// TOMLLoader reads slidestep.toml files
type TOMLLoader struct {
	globalPath string
	localName  string
}

// NewTOMLLoader creates a loader for ~/.config/slidestep/config.toml and ./slidestep.toml
func NewTOMLLoader() *TOMLLoader {
	homeDir, _ := os.UserHomeDir()
	return NewTOMLLoaderWithPaths(filepath.Join(homeDir, ".config", "slidestep", "config.toml"), "slidestep.toml")
}

func NewTOMLLoaderWithPaths(globalPath, localName string) *TOMLLoader {
	return &TOMLLoader{
		globalPath: globalPath,
		localName:  localName,
	}
}

// LoadGlobal reads the per-user file, writing the defaults there on first run
func (l *TOMLLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	if !exists(l.globalPath) {
		if err := l.CreateDefaults(ctx, l.globalPath); err != nil {
			return nil, fmt.Errorf("creating defaults: %w", err)
		}
	}
	return decodeFile(l.globalPath)
}

// LoadLocal reads slidestep.toml next to the feed; most projects have none
func (l *TOMLLoader) LoadLocal(_ context.Context, dir string) (*entities.Config, error) {
	path := l.GetLocalPath(dir)
	if !exists(path) {
		return nil, nil
	}
	return decodeFile(path)
}

func (l *TOMLLoader) LoadFile(_ context.Context, path string) (*entities.Config, error) {
	return decodeFile(path)
}

func (l *TOMLLoader) CreateDefaults(_ context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 - the global config path or one named by config init
	if err != nil {
		return fmt.Errorf("creating config file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := Encode(f, GetDefaultConfig()); err != nil {
		return fmt.Errorf("encoding config to %s: %w", path, err)
	}
	return nil
}

func (l *TOMLLoader) GetGlobalPath() string {
	return l.globalPath
}

func (l *TOMLLoader) GetLocalPath(dir string) string {
	return filepath.Join(dir, l.localName)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// decodeFile parses and validates one file. Unknown keys are rejected so a
// misspelled cooldown_ms does not silently fall back to the default.
func decodeFile(path string) (*entities.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is from controlled sources
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var config entities.Config
	meta, err := toml.Decode(string(data), &config)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML from %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}

	return &config, nil
}

var _ ports.ConfigLoader = (*TOMLLoader)(nil)
