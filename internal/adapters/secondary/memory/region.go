package memory

import (
	"math"
	"sync"
	"time"
)

// DefaultAnimationDuration is how long a smooth scroll takes to settle
const DefaultAnimationDuration = 300 * time.Millisecond

// ScrollCommand records one ScrollTo call
type ScrollCommand struct {
	Offset   float64
	Animated bool
}

// Region is an in-memory scroll container with eased smooth scrolling.
// Time only advances through Step, so hosts decide the frame rate.
type Region struct {
	mu            sync.Mutex
	offset        float64
	extent        float64
	contentHeight float64
	duration      time.Duration
	animating     bool
	animFrom      float64
	animTo        float64
	animElapsed   time.Duration
	commands      []ScrollCommand
	listeners     map[int]func()
	nextListener  int
}

// NewRegion creates a region with the given viewport extent
func NewRegion(extent float64) *Region {
	return &Region{
		extent:    extent,
		duration:  DefaultAnimationDuration,
		listeners: make(map[int]func()),
	}
}

// ScrollOffset implements ports.Region
func (r *Region) ScrollOffset() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

// ViewportExtent implements ports.Region
func (r *Region) ViewportExtent() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extent
}

// ScrollTo implements ports.Region. Offsets are clamped to the scrollable range.
func (r *Region) ScrollTo(offset float64, animated bool) {
	r.mu.Lock()
	r.commands = append(r.commands, ScrollCommand{Offset: offset, Animated: animated})
	target := r.clampLocked(offset)

	if animated && r.duration > 0 && target != r.offset {
		r.animating = true
		r.animFrom = r.offset
		r.animTo = target
		r.animElapsed = 0
		r.mu.Unlock()
		return
	}

	r.animating = false
	changed := r.offset != target
	r.offset = target
	r.mu.Unlock()

	if changed {
		r.notify()
	}
}

// SetScrollOffset moves the region as a free user scroll would, cancelling any animation
func (r *Region) SetScrollOffset(offset float64) {
	r.mu.Lock()
	r.animating = false
	r.offset = r.clampLocked(offset)
	r.mu.Unlock()

	r.notify()
}

// SetExtent changes the viewport extent; 0 means not laid out
func (r *Region) SetExtent(extent float64) {
	r.mu.Lock()
	r.extent = extent
	r.offset = r.clampLocked(r.offset)
	r.mu.Unlock()
}

// SetAnimationDuration changes how long animated scrolls take. 0 disables easing.
func (r *Region) SetAnimationDuration(d time.Duration) {
	r.mu.Lock()
	r.duration = d
	r.mu.Unlock()
}

// Step advances a running animation by dt and reports whether the offset moved
func (r *Region) Step(dt time.Duration) bool {
	r.mu.Lock()
	if !r.animating {
		r.mu.Unlock()
		return false
	}

	r.animElapsed += dt
	progress := float64(r.animElapsed) / float64(r.duration)
	if progress >= 1 {
		progress = 1
		r.animating = false
	}
	r.offset = r.animFrom + (r.animTo-r.animFrom)*easeInOutCubic(progress)
	r.mu.Unlock()

	r.notify()
	return true
}

// Settle finishes a running animation immediately
func (r *Region) Settle() {
	r.mu.Lock()
	if !r.animating {
		r.mu.Unlock()
		return
	}
	r.animating = false
	r.offset = r.animTo
	r.mu.Unlock()

	r.notify()
}

// IsAnimating reports whether a smooth scroll is in progress
func (r *Region) IsAnimating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.animating
}

// Commands returns every ScrollTo call in order
func (r *Region) Commands() []ScrollCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScrollCommand(nil), r.commands...)
}

// LastCommand returns the most recent ScrollTo call
func (r *Region) LastCommand() (ScrollCommand, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commands) == 0 {
		return ScrollCommand{}, false
	}
	return r.commands[len(r.commands)-1], true
}

// OnScroll registers fn for every offset change and returns a function that removes it
func (r *Region) OnScroll(fn func()) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Region) setContentHeight(height float64) {
	r.mu.Lock()
	r.contentHeight = height
	r.offset = r.clampLocked(r.offset)
	if r.animating {
		r.animTo = r.clampLocked(r.animTo)
	}
	r.mu.Unlock()
}

func (r *Region) clampLocked(offset float64) float64 {
	maxOffset := math.Max(0, r.contentHeight-r.extent)
	return math.Max(0, math.Min(offset, maxOffset))
}

func (r *Region) notify() {
	r.mu.Lock()
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
