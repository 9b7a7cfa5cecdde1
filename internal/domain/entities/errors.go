package entities

import "errors"

// Sentinel errors for missing preconditions. The controller itself never surfaces
// these to input handlers; they are returned by attach and session lifecycle calls.
var (
	// ErrRegionUnavailable indicates discovery has not found a scrollable region yet
	ErrRegionUnavailable = errors.New("scrollable region not available")

	// ErrNoSlides indicates the region was found but holds no slides yet
	ErrNoSlides = errors.New("no slides in region")

	// ErrClosed indicates the controller or session was torn down
	ErrClosed = errors.New("navigation closed")
)

// IsNotReady checks if an error only means the host page has not rendered yet
func IsNotReady(err error) bool {
	return errors.Is(err, ErrRegionUnavailable) || errors.Is(err, ErrNoSlides)
}
