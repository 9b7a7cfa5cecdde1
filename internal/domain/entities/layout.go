package entities

import "fmt"

// Layout selects how the visible slide is derived from the scroll position
type Layout string

const (
	// LayoutUniform projects offset/extent, valid when every slide fills the viewport
	LayoutUniform Layout = "uniform"
	// LayoutNearestCenter picks the slide whose center is closest to the viewport center
	LayoutNearestCenter Layout = "nearest_center"
	// LayoutAuto picks uniform when slide heights match the viewport, nearest-center otherwise
	LayoutAuto Layout = "auto"
)

// Validate validates the layout name
func (l Layout) Validate() error {
	switch l {
	case LayoutUniform, LayoutNearestCenter, LayoutAuto, "":
		return nil
	default:
		return fmt.Errorf("invalid layout: %s (must be uniform, nearest_center, or auto)", l)
	}
}

// OrDefault returns auto for an empty layout
func (l Layout) OrDefault() Layout {
	if l == "" {
		return LayoutAuto
	}
	return l
}
