package memory

import (
	"fmt"
	"sync"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// Item describes one slide of a feed
type Item struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	// Height in pixels, 0 means one viewport
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" toml:"height"`
}

// UniformItems returns count items titled "Slide 1".."Slide N" that fill the viewport
func UniformItems(count int) []Item {
	items := make([]Item, count)
	for i := range items {
		items[i] = Item{Title: fmt.Sprintf("Slide %d", i+1)}
	}
	return items
}

// Feed is an in-memory host document: one region holding a stack of slides.
// It implements ports.Discovery and ports.ChangeNotifier.
type Feed struct {
	mu           sync.Mutex
	region       *Region
	items        []Item
	rendered     bool
	generation   int
	listeners    map[int]func()
	nextListener int
}

// NewFeed creates a rendered feed with the given viewport extent and items
func NewFeed(extent float64, items ...Item) *Feed {
	f := &Feed{
		region:    NewRegion(extent),
		rendered:  true,
		listeners: make(map[int]func()),
	}
	f.items = append([]Item(nil), items...)
	f.region.setContentHeight(f.contentHeightLocked())
	return f
}

// Region returns the feed's scroll region
func (f *Feed) Region() *Region {
	return f.region
}

// LocateRegion implements ports.Discovery
func (f *Feed) LocateRegion() (ports.Region, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.rendered {
		return nil, false
	}
	return f.region, true
}

// LocateSlides implements ports.Discovery
func (f *Feed) LocateSlides(region ports.Region) []ports.Slide {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.rendered || region != ports.Region(f.region) {
		return nil
	}

	slides := make([]ports.Slide, len(f.items))
	for i := range f.items {
		slides[i] = &slide{feed: f, index: i, generation: f.generation}
	}
	return slides
}

// OnStructuralChange implements ports.ChangeNotifier
func (f *Feed) OnStructuralChange(fn func()) func() {
	f.mu.Lock()
	id := f.nextListener
	f.nextListener++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// SetItems replaces every slide. Handles from earlier LocateSlides calls go stale
// when the count changes; otherwise they keep addressing the same positions.
func (f *Feed) SetItems(items []Item) {
	f.mu.Lock()
	if len(items) != len(f.items) {
		f.generation++
	}
	f.items = append([]Item(nil), items...)
	f.region.setContentHeight(f.contentHeightLocked())
	f.mu.Unlock()

	f.notify()
}

// SetCount resizes the feed to count uniform slides, keeping existing titles
func (f *Feed) SetCount(count int) {
	if count < 0 {
		count = 0
	}

	f.mu.Lock()
	items := UniformItems(count)
	copy(items, f.items)
	f.mu.Unlock()

	f.SetItems(items)
}

// Append adds slides to the end, as lazy pagination does
func (f *Feed) Append(items ...Item) {
	f.mu.Lock()
	f.items = append(f.items, items...)
	f.region.setContentHeight(f.contentHeightLocked())
	f.mu.Unlock()

	f.notify()
}

// SetRendered toggles whether discovery can find the region
func (f *Feed) SetRendered(rendered bool) {
	f.mu.Lock()
	changed := f.rendered != rendered
	f.rendered = rendered
	f.mu.Unlock()

	if changed {
		f.notify()
	}
}

// Items returns a copy of the current slides
func (f *Feed) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Item(nil), f.items...)
}

// Len returns the number of slides
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) notify() {
	f.mu.Lock()
	listeners := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (f *Feed) contentHeightLocked() float64 {
	extent := f.region.ViewportExtent()
	total := 0.0
	for _, item := range f.items {
		total += itemHeight(item, extent)
	}
	return total
}

// boxLocked returns the viewport-relative box of item index
func (f *Feed) boxLocked(index int) entities.Rect {
	extent := f.region.ViewportExtent()
	top := 0.0
	for i := 0; i < index; i++ {
		top += itemHeight(f.items[i], extent)
	}

	return entities.Rect{
		Top:    top - f.region.ScrollOffset(),
		Height: itemHeight(f.items[index], extent),
	}
}

func itemHeight(item Item, extent float64) float64 {
	if item.Height > 0 {
		return item.Height
	}
	return extent
}

type slide struct {
	feed       *Feed
	index      int
	generation int
}

// BoundingBox implements ports.Slide. Stale handles report an empty box.
func (s *slide) BoundingBox() entities.Rect {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	if s.generation != s.feed.generation || s.index >= len(s.feed.items) {
		return entities.Rect{}
	}
	return s.feed.boxLocked(s.index)
}

// SetExtent changes the viewport extent and relays out the slides
func (f *Feed) SetExtent(extent float64) {
	f.mu.Lock()
	f.region.SetExtent(extent)
	f.region.setContentHeight(f.contentHeightLocked())
	f.mu.Unlock()
}
