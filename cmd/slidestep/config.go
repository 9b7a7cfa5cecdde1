package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

var (
	configInitLocal bool
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slidestep configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration to ~/.config/slidestep/config.toml,
or to ./slidestep.toml with --local.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVar(&configInitLocal, "local", false, "Write ./slidestep.toml instead of the global file")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
}

// newConfigService wires the TOML loader and merger
func newConfigService() (*services.ConfigService, *config.TOMLLoader) {
	loader := config.NewTOMLLoader()
	return services.NewConfigService(loader, config.NewConfigMerger()), loader
}

// loadConfig resolves defaults, config files, environment and flags.
// The persistent --verbose and --config flags are read here.
func loadConfig(cmd *cobra.Command, flags ports.FlagOverrides) (*entities.Config, error) {
	explicitPath, _ := cmd.Flags().GetString("config")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags.Verbose = true
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	service, _ := newConfigService()
	cfg, err := service.LoadConfig(cmd.Context(), workingDir, explicitPath, flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section
func newLogger(cfg *entities.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With("version", Version), closer, nil
}

// newFileLogger is newLogger without console output
func newFileLogger(cfg *entities.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.NewWithWriter(cfg.Logging, io.Discard)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger.With("version", Version), closer, nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	service, loader := newConfigService()

	path := loader.GetGlobalPath()
	if configInitLocal {
		workingDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		path = loader.GetLocalPath(workingDir)
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if configInitLocal {
		if err := loader.CreateDefaults(cmd.Context(), path); err != nil {
			return err
		}
	} else if err := service.CreateGlobalConfig(cmd.Context()); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ports.FlagOverrides{})
	if err != nil {
		return err
	}
	return config.Encode(cmd.OutOrStdout(), cfg)
}
