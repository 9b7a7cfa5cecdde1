package ports

import (
	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

//go:generate mockery --name Region --output ../../../test/mocks --outpkg mocks

// Region is the scrollable container that holds every slide
type Region interface {
	// ScrollOffset returns the current scroll position in pixels
	ScrollOffset() float64
	// ViewportExtent returns the visible height in pixels; 0 means not laid out
	ViewportExtent() float64
	// ScrollTo commands the region to move to offset, animating when requested
	ScrollTo(offset float64, animated bool)
}

// Slide is an opaque handle to one rendered slide
type Slide interface {
	// BoundingBox returns the slide's box relative to the top of the visible region
	BoundingBox() entities.Rect
}

// Discovery locates the region and its slides in the host page.
// Both calls may come back empty while the host is still rendering.
type Discovery interface {
	LocateRegion() (Region, bool)
	LocateSlides(region Region) []Slide
}

// ChangeNotifier reports structural changes of the host document
type ChangeNotifier interface {
	// OnStructuralChange registers fn and returns a function that removes it
	OnStructuralChange(fn func()) (unsubscribe func())
}

// NavigationObserver receives notifications about controller activity
type NavigationObserver interface {
	TransitionStarted(from, to int)
	TransitionSettled(commanded, actual int)
	InputSuppressed(source entities.InputSource)
	InputDiscarded(source entities.InputSource)
	SnapshotReplaced(oldCount, newCount int)
	Attached(slideCount int)
}
