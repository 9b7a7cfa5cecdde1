package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	httpbridge "github.com/fredcamaral/slidestep/internal/adapters/primary/http"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

var (
	// Serve command flags
	servePort     int
	serveHost     string
	serveCooldown int
	serveLayout   string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the page bridge",
	Long: `Start the websocket bridge. Each connected page reports its layout and
input, and receives scroll commands from its own navigation controller.

Example:
  slidestep serve
  slidestep serve --port 8080 --cooldown 600 --layout nearest_center`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().IntVar(&serveCooldown, "cooldown", 0, "Cooldown in milliseconds (overrides config)")
	serveCmd.Flags().StringVar(&serveLayout, "layout", "", "Layout: uniform, nearest_center or auto (overrides config)")
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(config *entities.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Server.Port)
	}

	if strings.Contains(config.Server.Host, " ") || strings.Contains(config.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", config.Server.Host)
	}

	return nil
}

func serveFlags() ports.FlagOverrides {
	return ports.FlagOverrides{
		Host:       serveHost,
		Port:       servePort,
		CooldownMs: serveCooldown,
		Layout:     entities.Layout(serveLayout),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, serveFlags())
	if err != nil {
		return err
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := cmd.Context()

	monitor := monitoring.NewNavigationMonitor()
	monitor.Start(ctx)
	defer monitor.Stop()

	server := httpbridge.NewServer(httpbridge.ServerOptions{
		Server:     cfg.Server,
		Navigation: cfg.Navigation,
		Discovery:  cfg.Discovery,
		Monitor:    monitor,
		Logger:     logger,
		Version:    Version,
	})

	if err := server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting page bridge: %w", err)
	}

	logger.Info("Page bridge running",
		slog.String("url", fmt.Sprintf("ws://%s/ws", server.Addr())),
		slog.Int("cooldown_ms", int(cfg.Navigation.GetCooldown().Milliseconds())),
		slog.String("layout", string(cfg.Navigation.Layout.OrDefault())),
	)

	<-ctx.Done()
	logger.Info("Shutting down page bridge", slog.Int("sessions", server.SessionCount()))

	// the command context is already cancelled
	if err := server.Stop(context.Background()); err != nil {
		logger.Error("Error during shutdown", slog.String("error", err.Error()))
	}
	return nil
}
