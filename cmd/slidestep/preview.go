package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidestep/internal/adapters/primary/tui"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/manifest"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

var (
	previewSlides   int
	previewNoWatch  bool
	previewCooldown int
	previewLayout   string
)

var previewCmd = &cobra.Command{
	Use:   "preview [manifest]",
	Short: "Navigate a slide feed in the terminal",
	Long: `Open an interactive terminal preview of a slide feed. The feed comes from a
manifest (.yaml, .toml or .md) which is reloaded when it changes, or from
--slides uniform slides.

Example:
  slidestep preview deck.yaml
  slidestep preview talk.md --layout nearest_center
  slidestep preview --slides 12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntVar(&previewSlides, "slides", 5, "Number of uniform slides when no manifest is given")
	previewCmd.Flags().BoolVar(&previewNoWatch, "no-watch", false, "Don't reload the manifest when it changes")
	previewCmd.Flags().IntVar(&previewCooldown, "cooldown", 0, "Cooldown in milliseconds (overrides config)")
	previewCmd.Flags().StringVar(&previewLayout, "layout", "", "Layout: uniform, nearest_center or auto (overrides config)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ports.FlagOverrides{
		CooldownMs: previewCooldown,
		Layout:     entities.Layout(previewLayout),
	})
	if err != nil {
		return err
	}

	// the terminal belongs to the preview, so logs only go to the configured file
	logger, closer, err := newFileLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := cmd.Context()
	opts := tui.Options{
		Controller: services.OptionsFromConfig(cfg.Navigation),
		Retry:      services.RetryPolicyFromConfig(cfg.Discovery),
		Logger:     logger,
	}

	if len(args) == 0 {
		if previewSlides <= 0 {
			return errors.New("slides must be positive")
		}
		opts.Feed = memory.NewFeed(manifest.DefaultViewport, memory.UniformItems(previewSlides)...)
		opts.Title = fmt.Sprintf("%d slides", previewSlides)
		return tui.Run(ctx, opts)
	}

	source, err := manifest.Open(args[0], logger)
	if err != nil {
		return err
	}
	opts.Feed = source.Feed()
	opts.Title = filepath.Base(source.Path())

	if !previewNoWatch {
		reload := services.NewLiveReloadService(watcher.New(cfg.Watcher, logger), source, logger)
		if err := reload.Start(ctx); err != nil {
			return fmt.Errorf("watching manifest: %w", err)
		}
		defer func() { _ = reload.Stop() }()
	}

	return tui.Run(ctx, opts)
}
