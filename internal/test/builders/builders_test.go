package builders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler(t *testing.T) {
	t.Run("runs callbacks when their deadline passes", func(t *testing.T) {
		s := NewManualScheduler()
		var fired []string

		s.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "late") })
		s.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early") })

		s.Advance(99 * time.Millisecond)
		assert.Empty(t, fired)

		s.Advance(time.Millisecond)
		assert.Equal(t, []string{"early"}, fired)

		s.Advance(time.Second)
		assert.Equal(t, []string{"early", "late"}, fired)
		assert.Zero(t, s.Pending())
	})

	t.Run("clock reads the deadline inside a callback", func(t *testing.T) {
		s := NewManualScheduler()
		start := s.Now()
		var seen time.Time

		s.AfterFunc(250*time.Millisecond, func() { seen = s.Now() })
		s.Advance(time.Second)

		assert.Equal(t, start.Add(250*time.Millisecond), seen)
		assert.Equal(t, start.Add(time.Second), s.Now())
	})

	t.Run("callbacks can schedule more work", func(t *testing.T) {
		s := NewManualScheduler()
		count := 0

		var tick func()
		tick = func() {
			count++
			if count < 3 {
				s.AfterFunc(100*time.Millisecond, tick)
			}
		}
		s.AfterFunc(100*time.Millisecond, tick)

		s.Advance(time.Second)
		assert.Equal(t, 3, count)
	})

	t.Run("stop cancels a pending callback", func(t *testing.T) {
		s := NewManualScheduler()
		called := false

		timer := s.AfterFunc(time.Second, func() { called = true })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())

		s.Advance(2 * time.Second)
		assert.False(t, called)
	})

	t.Run("stop after firing returns false", func(t *testing.T) {
		s := NewManualScheduler()
		timer := s.AfterFunc(time.Millisecond, func() {})
		s.Advance(time.Millisecond)
		assert.False(t, timer.Stop())
	})
}

func TestFeedBuilder(t *testing.T) {
	t.Run("builds defaults", func(t *testing.T) {
		feed := NewFeedBuilder().Build()

		region, ok := feed.LocateRegion()
		require.True(t, ok)
		assert.Equal(t, 800.0, region.ViewportExtent())
		assert.Len(t, feed.LocateSlides(region), 5)
		assert.Zero(t, region.ScrollOffset())
	})

	t.Run("applies offset and heights", func(t *testing.T) {
		feed := NewFeedBuilder().
			WithHeights(800, 400, 1200).
			WithOffset(600).
			Build()

		assert.Equal(t, 600.0, feed.Region().ScrollOffset())
		assert.Equal(t, 3, feed.Len())
	})

	t.Run("unrendered feed hides its region", func(t *testing.T) {
		feed := NewFeedBuilder().Unrendered().Build()

		_, ok := feed.LocateRegion()
		assert.False(t, ok)
	})
}
