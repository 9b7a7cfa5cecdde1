package monitoring

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

func TestNewNavigationMonitor(t *testing.T) {
	monitor := NewNavigationMonitor()

	assert.NotNil(t, monitor)
	assert.False(t, monitor.IsRunning())
	assert.NotZero(t, monitor.GetMetrics().AppStartTime)
	assert.Equal(t, DefaultCollectInterval, monitor.interval)
}

func TestNavigationMonitor_StartStop(t *testing.T) {
	t.Run("start samples immediately", func(t *testing.T) {
		monitor := NewNavigationMonitor()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		monitor.Start(ctx)
		defer monitor.Stop()

		assert.True(t, monitor.IsRunning())
		metrics := monitor.GetMetrics()
		assert.Positive(t, metrics.GoroutineCount)
		assert.Positive(t, metrics.MemoryUsage)
	})

	t.Run("ticker keeps sampling", func(t *testing.T) {
		monitor := NewNavigationMonitor()
		monitor.SetCollectInterval(10 * time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		monitor.Start(ctx)
		defer monitor.Stop()

		first := monitor.GetMetrics().LastCollectTime
		require.Eventually(t, func() bool {
			return monitor.GetMetrics().LastCollectTime.After(first)
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("multiple starts and stops", func(t *testing.T) {
		monitor := NewNavigationMonitor()
		ctx := context.Background()

		monitor.Stop()
		monitor.Start(ctx)
		ticker := monitor.ticker
		monitor.Start(ctx)
		assert.Same(t, ticker, monitor.ticker)

		monitor.Stop()
		monitor.Stop()
		assert.False(t, monitor.IsRunning())

		// restart after stop
		monitor.Start(ctx)
		assert.True(t, monitor.IsRunning())
		monitor.Stop()
	})
}

func TestNavigationMonitor_Observer(t *testing.T) {
	monitor := NewNavigationMonitor()

	monitor.Attached(5)
	monitor.TransitionStarted(0, 1)
	monitor.TransitionStarted(1, 2)
	monitor.TransitionSettled(1, 1)
	monitor.TransitionSettled(2, 3)
	monitor.InputSuppressed(entities.SourceWheel)
	monitor.InputSuppressed(entities.SourceWheel)
	monitor.InputSuppressed(entities.SourceKey)
	monitor.InputDiscarded(entities.SourceTouch)
	monitor.SnapshotReplaced(5, 3)
	monitor.RecordHTTPRequest()
	monitor.RecordWebSocketConnection()

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(1), metrics.Attaches)
	assert.Equal(t, int64(2), metrics.Transitions)
	assert.Equal(t, int64(1), metrics.Drifts)
	assert.Equal(t, int64(1), metrics.SnapshotsReplaced)
	assert.Equal(t, int64(2), metrics.Suppressed[entities.SourceWheel])
	assert.Equal(t, int64(1), metrics.Suppressed[entities.SourceKey])
	assert.Equal(t, int64(1), metrics.Discarded[entities.SourceTouch])
	assert.Equal(t, int64(1), metrics.HTTPRequests)
	assert.Equal(t, int64(1), metrics.WebSocketConnections)
	assert.False(t, metrics.LastTransitionTime.IsZero())
}

func TestNavigationMonitor_GetMetricsCopies(t *testing.T) {
	monitor := NewNavigationMonitor()
	monitor.InputSuppressed(entities.SourceWheel)

	metrics := monitor.GetMetrics()
	metrics.Suppressed[entities.SourceWheel] = 100

	assert.Equal(t, int64(1), monitor.GetMetrics().Suppressed[entities.SourceWheel])
}

func TestNavigationMonitor_Health(t *testing.T) {
	monitor := NewNavigationMonitor()
	monitor.Start(context.Background())
	defer monitor.Stop()

	assert.True(t, monitor.IsHealthy())

	status := monitor.GetHealthStatus()
	assert.Equal(t, true, status["healthy"])
	assert.Contains(t, status, "uptime")
	assert.Contains(t, status, "navigation")
	assert.Contains(t, status, "transport")

	stats := monitor.GetMemoryStats()
	assert.Contains(t, stats, "alloc_mb")
	assert.Contains(t, stats, "gc_cycles")
}

func TestNavigationMonitor_Concurrent(t *testing.T) {
	monitor := NewNavigationMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				monitor.TransitionStarted(j, j+1)
				monitor.InputSuppressed(entities.SourceWheel)
				_ = monitor.GetMetrics()
			}
		}()
	}
	wg.Wait()

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(1000), metrics.Transitions)
	assert.Equal(t, int64(1000), metrics.Suppressed[entities.SourceWheel])
}

func TestSafeUint64ToInt64(t *testing.T) {
	assert.Equal(t, int64(42), safeUint64ToInt64(42))
	assert.Equal(t, int64(math.MaxInt64), safeUint64ToInt64(math.MaxUint64))
}
