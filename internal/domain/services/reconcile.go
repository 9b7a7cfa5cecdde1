package services

import (
	"math"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// uniformTolerance is how far a slide height may deviate from the viewport extent
// and still count as a uniform layout
const uniformTolerance = 1.0

// Reconciler derives the visible slide from the region and computes scroll targets
type Reconciler interface {
	// VisibleIndex returns the slide that best matches the current scroll position.
	// It must be read-only. ok is false when the region or its slides are not
	// laid out, in which case index is 0.
	VisibleIndex(region ports.Region, slides []ports.Slide) (index int, ok bool)

	// TargetOffset returns the scroll offset that brings slides[index] into view
	TargetOffset(region ports.Region, slides []ports.Slide, index int) float64

	// Layout names the strategy
	Layout() entities.Layout
}

// UniformProjection assumes every slide is exactly one viewport tall
type UniformProjection struct{}

// VisibleIndex returns clamp(round(offset/extent), 0, len-1)
func (UniformProjection) VisibleIndex(region ports.Region, slides []ports.Slide) (int, bool) {
	if region == nil || len(slides) == 0 {
		return 0, false
	}

	extent := region.ViewportExtent()
	if extent <= 0 {
		return 0, false
	}

	return entities.ClampIndex(int(math.Round(region.ScrollOffset()/extent)), len(slides)), true
}

// TargetOffset returns index * extent
func (UniformProjection) TargetOffset(region ports.Region, _ []ports.Slide, index int) float64 {
	return float64(index) * region.ViewportExtent()
}

// Layout implements Reconciler
func (UniformProjection) Layout() entities.Layout {
	return entities.LayoutUniform
}

// NearestCenter picks the slide whose center is closest to the viewport center.
// Used when slide heights differ from the viewport.
type NearestCenter struct{}

// VisibleIndex returns the index with the smallest center distance, the lowest index on ties.
// Slides with an empty box are skipped; ok is false when none is left.
func (NearestCenter) VisibleIndex(region ports.Region, slides []ports.Slide) (int, bool) {
	if region == nil || len(slides) == 0 {
		return 0, false
	}

	extent := region.ViewportExtent()
	if extent <= 0 {
		return 0, false
	}

	viewportCenter := extent / 2
	best := -1
	bestDistance := math.Inf(1)

	for i, slide := range slides {
		box := slide.BoundingBox()
		if box.IsEmpty() {
			continue
		}
		distance := math.Abs(box.CenterY() - viewportCenter)
		if distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// TargetOffset scrolls so the slide's top edge meets the viewport's top edge
func (NearestCenter) TargetOffset(region ports.Region, slides []ports.Slide, index int) float64 {
	return region.ScrollOffset() + slides[index].BoundingBox().Top
}

// Layout implements Reconciler
func (NearestCenter) Layout() entities.Layout {
	return entities.LayoutNearestCenter
}

// ComputeVisibleIndex is the uniform-height projection of the region's scroll position
func ComputeVisibleIndex(region ports.Region, slides []ports.Slide) int {
	index, _ := UniformProjection{}.VisibleIndex(region, slides)
	return index
}

// SelectReconciler resolves a configured layout to a strategy.
// Auto picks the uniform projection only when every slide fills the viewport.
func SelectReconciler(layout entities.Layout, region ports.Region, slides []ports.Slide) Reconciler {
	switch layout.OrDefault() {
	case entities.LayoutUniform:
		return UniformProjection{}
	case entities.LayoutNearestCenter:
		return NearestCenter{}
	}

	if isUniform(region, slides) {
		return UniformProjection{}
	}
	return NearestCenter{}
}

func isUniform(region ports.Region, slides []ports.Slide) bool {
	if region == nil || len(slides) == 0 {
		return true
	}

	extent := region.ViewportExtent()
	if extent <= 0 {
		return true
	}

	for _, slide := range slides {
		box := slide.BoundingBox()
		// stale or unmeasured slides say nothing about the layout
		if box.IsEmpty() {
			continue
		}
		if math.Abs(box.Height-extent) > uniformTolerance {
			return false
		}
	}

	return true
}
