package builders

import (
	"sort"
	"sync"
	"time"

	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// ManualScheduler is a virtual clock and scheduler for deterministic timing tests.
// Callbacks run on the goroutine that calls Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*manualTimer
}

// NewManualScheduler creates a scheduler whose clock starts at a fixed instant
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Now implements ports.Clock
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc implements ports.Scheduler
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &manualTimer{
		scheduler: s,
		deadline:  s.now.Add(d),
		seq:       s.seq,
		fn:        fn,
	}
	s.seq++
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward by d, running every callback that comes due in
// deadline order. Callbacks may schedule further timers.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)

	for {
		sort.Slice(s.pending, func(i, j int) bool {
			if s.pending[i].deadline.Equal(s.pending[j].deadline) {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].deadline.Before(s.pending[j].deadline)
		})

		if len(s.pending) == 0 || s.pending[0].deadline.After(target) {
			break
		}

		next := s.pending[0]
		s.pending = s.pending[1:]
		s.now = next.deadline
		next.fired = true

		s.mu.Unlock()
		next.fn()
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of timers that have not fired or been stopped
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

type manualTimer struct {
	scheduler *ManualScheduler
	deadline  time.Time
	seq       int
	fn        func()
	fired     bool
	stopped   bool
}

func (t *manualTimer) Stop() bool {
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true

	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return true
}
