package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

const defaultLoopBacklog = 256

// EventLoop runs tasks one at a time on a single goroutine.
// It is the scheduler of a NavigationController: timers fire back onto the loop, so
// cooldown expiry never races with input handling.
type EventLoop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
	running  *atomic.Bool
	logger   *slog.Logger
}

// NewEventLoop creates a loop. Tasks posted before Run are queued.
func NewEventLoop(logger *slog.Logger) *EventLoop {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventLoop{
		tasks:   make(chan func(), defaultLoopBacklog),
		done:    make(chan struct{}),
		running: atomic.NewBool(false),
		logger:  logger.With("service", "event_loop"),
	}
}

// Run processes tasks until ctx is cancelled or Stop is called
func (l *EventLoop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("event loop already running")
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case task := <-l.tasks:
			l.execute(task)
		}
	}
}

// Post queues fn. It returns false once the loop is stopped.
func (l *EventLoop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
// It must not be called from a task running on the same loop.
func (l *EventLoop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return entities.ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return entities.ErrClosed
	}
}

// AfterFunc implements ports.Scheduler. fn runs on the loop.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &loopTimer{state: atomic.NewInt32(timerPending)}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
	})
	return t
}

// Stop ends the loop. Queued tasks are dropped.
func (l *EventLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed when the loop stops
func (l *EventLoop) Done() <-chan struct{} {
	return l.done
}

// IsRunning reports whether Run is active
func (l *EventLoop) IsRunning() bool {
	return l.running.Load()
}

func (l *EventLoop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Task panicked", slog.Any("panic", r))
		}
	}()
	task()
}

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

type loopTimer struct {
	timer *time.Timer
	state *atomic.Int32
}

// Stop cancels the callback unless it already ran
func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	t.timer.Stop()
	return true
}
