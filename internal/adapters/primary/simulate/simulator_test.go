package simulate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

func newTestSimulator(t *testing.T, count int) (*Simulator, *memory.Feed, *bytes.Buffer) {
	t.Helper()

	feed := memory.NewFeed(800, memory.UniformItems(count)...)
	feed.Region().SetAnimationDuration(0)

	out := &bytes.Buffer{}
	sim := New(Options{
		Feed:          feed,
		Controller:    services.ControllerOptions{Cooldown: 100 * time.Millisecond},
		Retry:         services.RetryPolicy{Interval: 10 * time.Millisecond, MaxAttempts: 3},
		Out:           out,
		Logger:        logging.Discard(),
		FrameInterval: 5 * time.Millisecond,
	})
	return sim, feed, out
}

func mustParse(t *testing.T, script string) []Step {
	t.Helper()
	steps, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	return steps
}

func TestSimulatorRun(t *testing.T) {
	tests := []struct {
		name        string
		slides      int
		script      string
		final       int
		transitions int
		suppressed  int
		slideCount  int
	}{
		{
			name:        "second wheel during cooldown is suppressed",
			slides:      5,
			script:      "wheel:40 wheel:40 wait:150 key:ArrowDown",
			final:       2,
			transitions: 2,
			suppressed:  1,
			slideCount:  5,
		},
		{
			name:        "noise wheel does nothing",
			slides:      5,
			script:      "wheel:10",
			final:       0,
			transitions: 0,
			slideCount:  5,
		},
		{
			name:        "free scroll then step back",
			slides:      5,
			script:      "scroll:1600 wheel:-40",
			final:       1,
			transitions: 1,
			slideCount:  5,
		},
		{
			name:        "end jump",
			slides:      5,
			script:      "key:End",
			final:       4,
			transitions: 1,
			slideCount:  5,
		},
		{
			name:        "swipes forward and back, short swipe ignored",
			slides:      5,
			script:      "swipe:80@150 wait:150 swipe:-80@100 wait:150 swipe:30@100",
			final:       0,
			transitions: 2,
			slideCount:  5,
		},
		{
			name:        "resize then jump to the new end",
			slides:      5,
			script:      "resize:3 key:End",
			final:       2,
			transitions: 1,
			slideCount:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, _, _ := newTestSimulator(t, tt.slides)
			steps := mustParse(t, tt.script)

			report, err := sim.Run(context.Background(), steps)
			require.NoError(t, err)

			assert.Equal(t, len(steps), report.Steps)
			assert.Equal(t, tt.final, report.Final.CurrentIndex)
			assert.Equal(t, tt.transitions, report.Transitions)
			assert.Equal(t, tt.suppressed, report.Suppressed)
			assert.Equal(t, tt.slideCount, report.Final.SlideCount)
			assert.Zero(t, report.Drifts)
		})
	}
}

func TestSimulatorOutput(t *testing.T) {
	sim, _, out := newTestSimulator(t, 3)

	_, err := sim.Run(context.Background(), mustParse(t, "wheel:40 wheel:40"))
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "attached: 3 slides")
	assert.Contains(t, text, "advanced to 2")
	assert.Contains(t, text, "transition 1 -> 2")
	assert.Contains(t, text, "suppressed, at 2")
	assert.Contains(t, text, "final: slide 2/3 (Uniform)")
}

func TestSimulatorErrors(t *testing.T) {
	t.Run("empty feed never attaches", func(t *testing.T) {
		sim, _, _ := newTestSimulator(t, 0)

		_, err := sim.Run(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrNoSlides))
	})

	t.Run("cancelled during a wait", func(t *testing.T) {
		sim, _, _ := newTestSimulator(t, 3)
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(50*time.Millisecond, cancel)

		report, err := sim.Run(ctx, mustParse(t, "wheel:40 wait:5000"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, report.Steps)
	})
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name        string
		disposition entities.Disposition
		expected    string
	}{
		{"suppressed", entities.Disposition{Suppressed: true, Handled: true, Target: 1}, "suppressed, at 2"},
		{"advanced", entities.Disposition{Handled: true, Advanced: true, Target: 3}, "advanced to 4"},
		{"handled at boundary", entities.Disposition{Handled: true, Target: 0}, "handled, stays at 1"},
		{"ignored", entities.Disposition{Target: 2}, "ignored, at 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describe(tt.disposition))
		})
	}
}
