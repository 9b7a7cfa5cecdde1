package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// FSWatcher watches a manifest through OS file notifications.
// It watches the parent directory so editors that save by rename are still seen.
type FSWatcher struct {
	emitter *emitter
	logger  *slog.Logger
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewFSWatcher creates an fsnotify-backed watcher
func NewFSWatcher(debounce time.Duration, logger *slog.Logger) *FSWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &FSWatcher{
		emitter: newEmitter(debounce),
		logger:  logger.With("service", "fs_watcher"),
	}
}

// Watch starts watching path
func (w *FSWatcher) Watch(ctx context.Context, path string) (<-chan ports.ManifestChange, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, fw, absPath)
	}()

	return w.emitter.events, nil
}

// Stop closes the OS watcher and the events channel
func (w *FSWatcher) Stop() error {
	w.mu.Lock()
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	var err error
	if fw != nil {
		err = fw.Close()
	}

	w.emitter.close()
	w.wg.Wait()

	if err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	return nil
}

func (w *FSWatcher) run(ctx context.Context, fw *fsnotify.Watcher, path string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.emitter.done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}

			kind, relevant := mapOp(event.Op)
			if !relevant {
				continue
			}

			w.logger.Debug("File event",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)
			w.emitter.notify(ports.ManifestChange{
				Path:      path,
				Kind:      kind,
				Timestamp: time.Now(),
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", slog.String("error", err.Error()), slog.String("path", path))
		}
	}
}

func mapOp(op fsnotify.Op) (ports.ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return ports.ManifestDeleted, true
	case op.Has(fsnotify.Rename):
		return ports.ManifestRenamed, true
	case op.Has(fsnotify.Create):
		return ports.ManifestCreated, true
	case op.Has(fsnotify.Write):
		return ports.ManifestModified, true
	default:
		return ports.ManifestModified, false
	}
}

var _ ports.ManifestWatcher = (*FSWatcher)(nil)
