package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/atomic"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

const (
	timerPending int32 = iota
	timerFired
	timerStopped
)

// runMsg carries a due callback into Update, where the controller lives
type runMsg struct {
	timer *teaTimer
}

// Scheduler implements ports.Scheduler on top of a bubbletea program.
// Due callbacks arrive as messages, so they run on the Update goroutine.
type Scheduler struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewScheduler creates an unbound scheduler; callbacks due before Bind are dropped
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Bind sets the function used to deliver messages, normally (*tea.Program).Send
func (s *Scheduler) Bind(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

// AfterFunc implements ports.Scheduler
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &teaTimer{fn: fn}
	t.inner = time.AfterFunc(d, func() { s.deliver(runMsg{timer: t}) })
	return t
}

func (s *Scheduler) deliver(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()

	if send != nil {
		send(msg)
	}
}

type teaTimer struct {
	fn    func()
	inner *time.Timer
	state atomic.Int32
}

// Stop implements ports.Timer
func (t *teaTimer) Stop() bool {
	t.inner.Stop()
	return t.state.CompareAndSwap(timerPending, timerStopped)
}

// run executes the callback unless the timer was stopped first
func (t *teaTimer) run() {
	if t.state.CompareAndSwap(timerPending, timerFired) {
		t.fn()
	}
}

var _ ports.Scheduler = (*Scheduler)(nil)
