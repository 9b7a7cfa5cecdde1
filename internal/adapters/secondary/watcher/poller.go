package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// PollingWatcher detects manifest changes by polling size, mtime and checksum.
// Used where fsnotify is unavailable, such as some network mounts.
type PollingWatcher struct {
	interval  time.Duration
	emitter   *emitter
	logger    *slog.Logger
	mu        sync.RWMutex
	stamps    map[string]manifestStamp
	wg        sync.WaitGroup
}

// manifestStamp is what one poll remembers about a manifest
type manifestStamp struct {
	size     int64
	modTime  time.Time
	checksum string
}

func stampOf(info os.FileInfo, checksum string) manifestStamp {
	return manifestStamp{size: info.Size(), modTime: info.ModTime(), checksum: checksum}
}

// sameStat reports whether size and mtime still match, in which case the
// content is assumed unchanged and not hashed
func (m manifestStamp) sameStat(info os.FileInfo) bool {
	return m.size == info.Size() && m.modTime.Equal(info.ModTime())
}

func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &PollingWatcher{
		interval:  interval,
		emitter:   newEmitter(debounce),
		logger:    logger.With("service", "polling_watcher"),
		stamps:    make(map[string]manifestStamp),
	}
}

// Watch hashes the manifest once, then polls it every interval until ctx ends or Stop
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.ManifestChange, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := w.scanFile(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	return w.emitter.events, nil
}

func (w *PollingWatcher) Stop() error {
	w.emitter.close()
	w.wg.Wait()
	return nil
}

func (w *PollingWatcher) scanFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	checksum, err := calculateChecksum(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	w.mu.Lock()
	w.stamps[path] = stampOf(info, checksum)
	w.mu.Unlock()
	return nil
}

func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.emitter.done():
			return
		case <-ticker.C:
			kind, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("Watch error", slog.String("error", err.Error()), slog.String("path", path))
				continue
			}

			if changed {
				w.emitter.notify(ports.ManifestChange{
					Path:      path,
					Kind:      kind,
					Timestamp: time.Now(),
				})
			}
		}
	}
}

// checkForChanges compares the manifest against the last poll
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeKind, bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		w.mu.Lock()
		_, existed := w.stamps[path]
		delete(w.stamps, path)
		w.mu.Unlock()
		return ports.ManifestDeleted, existed, nil
	}
	if err != nil {
		return ports.ManifestModified, false, fmt.Errorf("stat file: %w", err)
	}

	w.mu.RLock()
	prev, seen := w.stamps[path]
	w.mu.RUnlock()

	if seen && prev.sameStat(info) {
		return ports.ManifestModified, false, nil
	}

	checksum, err := calculateChecksum(path)
	if err != nil {
		return ports.ManifestModified, false, fmt.Errorf("calculate checksum: %w", err)
	}

	w.mu.Lock()
	w.stamps[path] = stampOf(info, checksum)
	w.mu.Unlock()

	switch {
	case !seen:
		return ports.ManifestCreated, true, nil
	case prev.checksum != checksum:
		return ports.ManifestModified, true, nil
	}
	// touched but identical, e.g. an editor saving without edits
	return ports.ManifestModified, false, nil
}

func calculateChecksum(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - the manifest path given on the command line
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var _ ports.ManifestWatcher = (*PollingWatcher)(nil)
