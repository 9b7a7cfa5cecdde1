package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// LiveReloadService reloads a slide source whenever its manifest changes.
// The source publishes the structural change, which reaches controllers as a recheck.
type LiveReloadService struct {
	watcher ports.ManifestWatcher
	source  ports.SlideSource
	logger  *slog.Logger
	reloads *atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc // nil when idle
	done   chan struct{}
}

func NewLiveReloadService(watcher ports.ManifestWatcher, source ports.SlideSource, logger *slog.Logger) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher: watcher,
		source:  source,
		logger:  logger.With("service", "live_reload"),
		reloads: atomic.NewInt64(0),
	}
}

// Start watches the source's path until ctx ends or Stop is called
func (s *LiveReloadService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, s.source.Path())
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	go s.handleEvents(watchCtx, events, s.done)

	return nil
}

// Stop cancels the watch and waits for an in-flight reload to finish
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	if err := s.watcher.Stop(); err != nil {
		return fmt.Errorf("stopping watcher: %w", err)
	}
	return nil
}

func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// ReloadCount returns how many reloads succeeded
func (s *LiveReloadService) ReloadCount() int {
	return int(s.reloads.Load())
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.ManifestChange, done chan struct{}) {
	defer close(done)

	for {
		var change ports.ManifestChange
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			change = ev
		}

		log := s.logger.With(slog.String("path", change.Path), slog.String("change", change.Kind.String()))

		// a deleted manifest keeps the feed as last loaded; an editor's
		// rename-and-replace is followed by a create
		if change.Kind == ports.ManifestDeleted {
			log.Warn("Manifest removed, keeping current slides")
			continue
		}

		if err := s.source.Reload(ctx); err != nil {
			log.Error("Failed to reload slide source", slog.String("error", err.Error()))
			continue
		}

		s.reloads.Inc()
		log.Info("Slide source reloaded", slog.Time("changed_at", change.Timestamp))
	}
}
