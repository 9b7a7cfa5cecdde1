package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to stderr and, when configured, to a log file.
// The returned closer releases the file.
func New(cfg entities.LoggingConfig) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer
func NewWithWriter(cfg entities.LoggingConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	out := console
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}

		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 - path from config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}

		out = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(string(cfg.GetLevel())),
	}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
