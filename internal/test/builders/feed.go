package builders

import (
	"time"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
)

// FeedBuilder helps build in-memory feeds for testing
type FeedBuilder struct {
	extent    float64
	items     []memory.Item
	offset    float64
	hidden    bool
	animation time.Duration
	animSet   bool
}

// NewFeedBuilder creates a builder for five uniform slides in an 800px viewport
func NewFeedBuilder() *FeedBuilder {
	return &FeedBuilder{
		extent: 800,
		items:  memory.UniformItems(5),
	}
}

// WithExtent sets the viewport extent
func (b *FeedBuilder) WithExtent(extent float64) *FeedBuilder {
	b.extent = extent
	return b
}

// WithSlideCount replaces the slides with count uniform slides
func (b *FeedBuilder) WithSlideCount(count int) *FeedBuilder {
	b.items = memory.UniformItems(count)
	return b
}

// WithHeights replaces the slides with one slide per height
func (b *FeedBuilder) WithHeights(heights ...float64) *FeedBuilder {
	b.items = memory.UniformItems(len(heights))
	for i, h := range heights {
		b.items[i].Height = h
	}
	return b
}

// WithOffset sets the initial scroll offset
func (b *FeedBuilder) WithOffset(offset float64) *FeedBuilder {
	b.offset = offset
	return b
}

// WithAnimation sets the smooth scroll duration, 0 jumps instantly
func (b *FeedBuilder) WithAnimation(d time.Duration) *FeedBuilder {
	b.animation = d
	b.animSet = true
	return b
}

// Unrendered makes discovery come back empty until SetRendered(true)
func (b *FeedBuilder) Unrendered() *FeedBuilder {
	b.hidden = true
	return b
}

// Build creates the feed
func (b *FeedBuilder) Build() *memory.Feed {
	feed := memory.NewFeed(b.extent, b.items...)
	if b.animSet {
		feed.Region().SetAnimationDuration(b.animation)
	}
	if b.offset != 0 {
		feed.Region().SetScrollOffset(b.offset)
	}
	if b.hidden {
		feed.SetRendered(false)
	}
	return feed
}
