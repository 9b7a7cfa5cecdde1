package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// SessionOptions configures a Session
type SessionOptions struct {
	Controller ControllerOptions
	Retry      RetryPolicy
	// Notifier delivers structural change signals; nil disables rechecks
	Notifier ports.ChangeNotifier
	Logger   *slog.Logger
}

// Session owns one controller together with its event loop and change subscription.
// Its methods are safe for concurrent use.
type Session struct {
	loop        *EventLoop
	controller  *NavigationController
	notifier    ports.ChangeNotifier
	retry       RetryPolicy
	logger      *slog.Logger
	mu          sync.Mutex
	started     bool
	closed      bool
	cancel      context.CancelFunc
	unsubscribe func()
	loopDone    chan struct{}
}

// NewSession wires a controller to a fresh event loop
func NewSession(discovery ports.Discovery, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Controller.Logger == nil {
		opts.Controller.Logger = opts.Logger
	}

	loop := NewEventLoop(opts.Logger)

	return &Session{
		loop:       loop,
		controller: NewNavigationController(discovery, loop, opts.Controller),
		notifier:   opts.Notifier,
		retry:      opts.Retry,
		logger:     opts.Logger.With("service", "session"),
		loopDone:   make(chan struct{}),
	}
}

// Start runs the event loop and subscribes to structural changes
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return entities.ErrClosed
	}
	if s.started {
		return errors.New("session already started")
	}
	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		defer close(s.loopDone)
		if err := s.loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Event loop stopped", slog.String("error", err.Error()))
		}
	}()

	if s.notifier != nil {
		s.unsubscribe = s.notifier.OnStructuralChange(s.Recheck)
	}

	return nil
}

// Attach blocks until the controller is attached or the retry policy gives up
func (s *Session) Attach(ctx context.Context) error {
	if err := AttachWithRetry(ctx, s.loop, s.controller, s.retry, s.logger); err != nil {
		return fmt.Errorf("attaching session: %w", err)
	}
	return nil
}

// Dispatch delivers an input event and returns its disposition
func (s *Session) Dispatch(ctx context.Context, event entities.InputEvent) (entities.Disposition, error) {
	var disposition entities.Disposition
	if err := s.loop.Call(ctx, func() { disposition = s.controller.HandleInput(event) }); err != nil {
		return entities.Disposition{}, fmt.Errorf("dispatching %s event: %w", event.Source(), err)
	}
	return disposition, nil
}

// NotifyScroll queues a passive scroll notification
func (s *Session) NotifyScroll() {
	s.loop.Post(s.controller.HandleScroll)
}

// Recheck queues a structural change signal
func (s *Session) Recheck() {
	s.loop.Post(s.controller.Recheck)
}

// AdvanceTo requests a transition to target and reports whether one started
func (s *Session) AdvanceTo(ctx context.Context, target int) (bool, error) {
	var started bool
	if err := s.loop.Call(ctx, func() { started = s.controller.AdvanceTo(target) }); err != nil {
		return false, fmt.Errorf("advancing to %d: %w", target, err)
	}
	return started, nil
}

// Run executes fn on the session's loop, for hosts that drive their region on it
func (s *Session) Run(ctx context.Context, fn func()) error {
	return s.loop.Call(ctx, fn)
}

// CurrentIndex returns the published current index
func (s *Session) CurrentIndex() int {
	return s.controller.CurrentIndex()
}

// IsTransitioning reports whether a cooldown is currently running
func (s *Session) IsTransitioning() bool {
	return s.controller.IsTransitioning()
}

// Snapshot returns the navigation state as seen from the loop
func (s *Session) Snapshot(ctx context.Context) (entities.NavigationState, error) {
	var state entities.NavigationState
	if err := s.loop.Call(ctx, func() { state = s.controller.State() }); err != nil {
		return entities.NavigationState{}, fmt.Errorf("reading navigation state: %w", err)
	}
	return state, nil
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	unsubscribe := s.unsubscribe
	cancel := s.cancel
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	if !started {
		s.controller.Close()
		s.loop.Stop()
		return
	}

	err := s.loop.Call(context.Background(), s.controller.Close)
	s.loop.Stop()
	if cancel != nil {
		cancel()
	}
	<-s.loopDone

	// the parent context already stopped the loop; with Run gone nothing
	// else touches the controller, so close it here
	if err != nil {
		s.logger.Debug("Closing controller off the loop", slog.String("reason", err.Error()))
		s.controller.Close()
	}
}
