package ports

import (
	"context"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

// FlagOverrides carries CLI flags that take precedence over every config file.
// Zero values mean "not set".
type FlagOverrides struct {
	Host       string
	Port       int
	CooldownMs int
	Layout     entities.Layout
	LogLevel   string
	Verbose    bool
}

// ConfigLoader reads slidestep.toml files. A missing file is not an error and
// yields a nil config.
type ConfigLoader interface {
	// LoadGlobal reads the per-user file under the user config dir
	LoadGlobal(ctx context.Context) (*entities.Config, error)
	// LoadLocal reads slidestep.toml in dir
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)
	// LoadFile reads a file named with --config; here a missing file is an error
	LoadFile(ctx context.Context, path string) (*entities.Config, error)
	// CreateDefaults writes the built-in defaults to path, creating parent dirs
	CreateDefaults(ctx context.Context, path string) error

	GetGlobalPath() string
	GetLocalPath(dir string) string
}

// ConfigMerger layers configs: later non-zero fields win
type ConfigMerger interface {
	Merge(configs ...*entities.Config) *entities.Config
	ApplyFlags(config *entities.Config, flags FlagOverrides) *entities.Config
	// ApplyEnvVars reads SLIDESTEP_* variables
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService resolves the effective config for a command
type ConfigService interface {
	// LoadConfig layers defaults, global, local (or explicitPath), env and flags,
	// and validates the result
	LoadConfig(ctx context.Context, workingDir, explicitPath string, flags FlagOverrides) (*entities.Config, error)
	GetDefaultConfig() *entities.Config
	ValidateConfig(config *entities.Config) error
	CreateGlobalConfig(ctx context.Context) error
}
