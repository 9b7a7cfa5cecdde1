package watcher

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// emitter coalesces bursts of change notifications into one event.
// The last change of a burst wins.
type emitter struct {
	events    chan ports.ManifestChange
	stopCh    chan struct{}
	debounced func(f func())
	mu        sync.RWMutex
	pending   ports.ManifestChange
	closed    bool
	stopOnce  sync.Once
}

func newEmitter(delay time.Duration) *emitter {
	e := &emitter{
		events: make(chan ports.ManifestChange, 10),
		stopCh: make(chan struct{}),
	}
	if delay > 0 {
		e.debounced = debounce.New(delay)
	}
	return e
}

// notify records a change and schedules its delivery
func (e *emitter) notify(event ports.ManifestChange) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pending = event
	e.mu.Unlock()

	if e.debounced == nil {
		e.flush()
		return
	}
	e.debounced(e.flush)
}

func (e *emitter) flush() {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return
	}

	select {
	case e.events <- e.pending:
	case <-e.stopCh:
	}
}

// close stops delivery and closes the events channel
func (e *emitter) close() {
	e.stopOnce.Do(func() {
		close(e.stopCh)

		e.mu.Lock()
		e.closed = true
		close(e.events)
		e.mu.Unlock()
	})
}

func (e *emitter) done() <-chan struct{} {
	return e.stopCh
}
