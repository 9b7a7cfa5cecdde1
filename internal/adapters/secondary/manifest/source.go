package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// Source keeps an in-memory feed in sync with a manifest file.
// The feed is the discovery and change notifier handed to the controller.
type Source struct {
	path   string
	feed   *memory.Feed
	logger *slog.Logger

	mu   sync.Mutex
	last *Manifest
}

// Open loads the manifest at path and builds its feed
func Open(path string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}

	m, err := Load(absPath)
	if err != nil {
		return nil, err
	}

	return &Source{
		path:   absPath,
		feed:   memory.NewFeed(m.GetViewport(), m.Slides...),
		logger: logger.With("service", "manifest"),
		last:   m,
	}, nil
}

// Feed returns the feed backing this manifest
func (s *Source) Feed() *memory.Feed {
	return s.feed
}

// Path implements ports.SlideSource
func (s *Source) Path() string {
	return s.path
}

// Reload implements ports.SlideSource. An unchanged manifest publishes nothing;
// a manifest that fails to parse leaves the feed as it was.
func (s *Source) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("reloading manifest: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last != nil && s.last.GetViewport() == m.GetViewport() && slices.Equal(s.last.Slides, m.Slides) {
		s.logger.Debug("Manifest unchanged", slog.String("path", s.path))
		return nil
	}

	if s.last == nil || s.last.GetViewport() != m.GetViewport() {
		s.feed.SetExtent(m.GetViewport())
	}
	s.feed.SetItems(m.Slides)
	s.last = m

	s.logger.Info("Manifest reloaded",
		slog.String("path", s.path),
		slog.Int("slides", len(m.Slides)),
		slog.Float64("viewport", m.GetViewport()),
	)
	return nil
}

var _ ports.SlideSource = (*Source)(nil)
