package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// ConfigService builds the effective configuration from its layers
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{loader: loader, merger: merger}
}

// LoadConfig layers, lowest first: defaults, the global file, the explicit file
// or else the local one, SLIDESTEP_* variables, CLI flags.
func (s *ConfigService) LoadConfig(ctx context.Context, workingDir, explicitPath string, flags ports.FlagOverrides) (*entities.Config, error) {
	global, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := s.loadProject(ctx, workingDir, explicitPath)
	if err != nil {
		return nil, err
	}

	layers := []*entities.Config{s.GetDefaultConfig()}
	for _, layer := range []*entities.Config{global, project} {
		if layer != nil {
			layers = append(layers, layer)
		}
	}

	cfg := s.merger.ApplyFlags(s.merger.ApplyEnvVars(s.merger.Merge(layers...)), flags)
	if err := s.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("final config validation: %w", err)
	}
	return cfg, nil
}

func (s *ConfigService) loadProject(ctx context.Context, workingDir, explicitPath string) (*entities.Config, error) {
	if explicitPath == "" {
		cfg, err := s.loader.LoadLocal(ctx, workingDir)
		if err != nil {
			return nil, fmt.Errorf("loading local config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := s.loader.LoadFile(ctx, explicitPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", explicitPath, err)
	}
	return cfg, nil
}

// GetDefaultConfig returns the built-in defaults; an empty merge yields them
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Merge()
}

func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}

// CreateGlobalConfig writes the defaults to the global path
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

var _ ports.ConfigService = (*ConfigService)(nil)
