package http

import (
	"slices"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// labels come from arbitrary pages and are shown in the diagnostics API
var labelPolicy = bluemonday.StrictPolicy()

// RemoteRegion mirrors a region living in a browser page. The page reports
// geometry over the websocket; scroll commands travel back through scrollTo.
// It implements ports.Region, ports.Discovery and ports.ChangeNotifier.
type RemoteRegion struct {
	mu         sync.Mutex
	rendered   bool
	extent     float64
	offset     float64
	boxes      []entities.Rect // content coordinates, offset independent
	labels     []string
	generation int

	listeners    map[int]func()
	nextListener int

	scrollTo func(offset float64, animated bool)
}

// NewRemoteRegion creates a region that forwards scroll commands to scrollTo
func NewRemoteRegion(scrollTo func(offset float64, animated bool)) *RemoteRegion {
	return &RemoteRegion{
		listeners: make(map[int]func()),
		scrollTo:  scrollTo,
	}
}

// ScrollOffset implements ports.Region
func (r *RemoteRegion) ScrollOffset() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

// ViewportExtent implements ports.Region
func (r *RemoteRegion) ViewportExtent() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extent
}

// ScrollTo implements ports.Region. The offset only changes once the page reports back.
func (r *RemoteRegion) ScrollTo(offset float64, animated bool) {
	if r.scrollTo != nil {
		r.scrollTo(offset, animated)
	}
}

// LocateRegion implements ports.Discovery
func (r *RemoteRegion) LocateRegion() (ports.Region, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.rendered {
		return nil, false
	}
	return r, true
}

// LocateSlides implements ports.Discovery
func (r *RemoteRegion) LocateSlides(ports.Region) []ports.Slide {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.rendered {
		return nil
	}

	slides := make([]ports.Slide, len(r.boxes))
	for i := range r.boxes {
		slides[i] = &remoteSlide{region: r, index: i, generation: r.generation}
	}
	return slides
}

// OnStructuralChange implements ports.ChangeNotifier
func (r *RemoteRegion) OnStructuralChange(fn func()) func() {
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

// ApplyLayout replaces the geometry with a page report and notifies listeners
// when the slide structure changed.
func (r *RemoteRegion) ApplyLayout(layout LayoutPayload) bool {
	boxes := make([]entities.Rect, len(layout.Slides))
	labels := make([]string, len(layout.Slides))
	for i, s := range layout.Slides {
		boxes[i] = entities.Rect{Top: s.Top + layout.Offset, Height: s.Height}
		labels[i] = labelPolicy.Sanitize(s.Label)
	}

	r.mu.Lock()
	changed := r.rendered != layout.IsRendered() ||
		r.extent != layout.Extent ||
		!slices.Equal(r.boxes, boxes)

	// boxes are looked up by index, so only a new slide list invalidates handles
	if len(boxes) != len(r.boxes) || r.rendered != layout.IsRendered() {
		r.generation++
	}

	r.rendered = layout.IsRendered()
	r.extent = layout.Extent
	r.offset = layout.Offset
	r.labels = labels
	r.boxes = boxes
	r.mu.Unlock()

	if changed {
		r.notify()
	}
	return changed
}

// SetOffset records a scroll position reported by the page
func (r *RemoteRegion) SetOffset(offset float64) {
	r.mu.Lock()
	r.offset = offset
	r.mu.Unlock()
}

// Labels returns the sanitized slide labels
func (r *RemoteRegion) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.labels...)
}

// SlideCount returns the number of slides last reported
func (r *RemoteRegion) SlideCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boxes)
}

func (r *RemoteRegion) notify() {
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

type remoteSlide struct {
	region     *RemoteRegion
	index      int
	generation int
}

// BoundingBox implements ports.Slide. Stale handles report an empty box.
func (s *remoteSlide) BoundingBox() entities.Rect {
	s.region.mu.Lock()
	defer s.region.mu.Unlock()

	if s.generation != s.region.generation || s.index >= len(s.region.boxes) {
		return entities.Rect{}
	}

	box := s.region.boxes[s.index]
	box.Top -= s.region.offset
	return box
}
