package watcher

import (
	"log/slog"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// New returns the watcher selected by cfg
func New(cfg entities.WatcherConfig, logger *slog.Logger) ports.ManifestWatcher {
	if cfg.GetMode() == entities.WatcherModePolling {
		return NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger)
	}
	return NewFSWatcher(cfg.GetDebounce(), logger)
}
