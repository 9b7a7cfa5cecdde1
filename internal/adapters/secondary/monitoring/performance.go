package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// DefaultCollectInterval is how often runtime figures are sampled
const DefaultCollectInterval = 30 * time.Second

// NavigationMetrics holds counters for controller activity and the process
type NavigationMetrics struct {
	// Timing metrics
	AppStartTime       time.Time `json:"app_start_time"`
	LastTransitionTime time.Time `json:"last_transition_time"`
	LastCollectTime    time.Time `json:"last_collect_time"`

	// Memory metrics
	MemoryUsage    int64  `json:"memory_usage"`
	GoroutineCount int    `json:"goroutine_count"`
	HeapSize       int64  `json:"heap_size"`
	StackSize      int64  `json:"stack_size"`
	GCCount        uint32 `json:"gc_count"`

	// Navigation counters
	Attaches          int64                          `json:"attaches"`
	Transitions       int64                          `json:"transitions"`
	Drifts            int64                          `json:"drifts"`
	SnapshotsReplaced int64                          `json:"snapshots_replaced"`
	Suppressed        map[entities.InputSource]int64 `json:"suppressed"`
	Discarded         map[entities.InputSource]int64 `json:"discarded"`

	// Transport counters
	HTTPRequests         int64 `json:"http_requests"`
	WebSocketConnections int64 `json:"websocket_connections"`
}

// NavigationMonitor collects navigation metrics. It implements
// ports.NavigationObserver and may be shared by several controllers.
type NavigationMonitor struct {
	mu       sync.RWMutex
	metrics  NavigationMetrics
	interval time.Duration

	lifecycle sync.Mutex
	ticker    *time.Ticker
	stopCh    chan struct{}
	running   bool
}

// NewNavigationMonitor creates a new monitor
func NewNavigationMonitor() *NavigationMonitor {
	return &NavigationMonitor{
		metrics: NavigationMetrics{
			AppStartTime: time.Now(),
			Suppressed:   make(map[entities.InputSource]int64),
			Discarded:    make(map[entities.InputSource]int64),
		},
		interval: DefaultCollectInterval,
	}
}

// SetCollectInterval changes the sampling period used by the next Start
func (m *NavigationMonitor) SetCollectInterval(d time.Duration) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if d > 0 {
		m.interval = d
	}
}

// Start begins sampling runtime figures
func (m *NavigationMonitor) Start(ctx context.Context) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.running {
		return
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.ticker = time.NewTicker(m.interval)
	m.updateRuntime()

	go m.collectMetrics(ctx, m.ticker, m.stopCh)
}

// Stop stops sampling
func (m *NavigationMonitor) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if !m.running {
		return
	}

	m.running = false
	m.ticker.Stop()
	close(m.stopCh)
}

// IsRunning reports whether sampling is active
func (m *NavigationMonitor) IsRunning() bool {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.running
}

func (m *NavigationMonitor) collectMetrics(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			m.updateRuntime()
		}
	}
}

func (m *NavigationMonitor) updateRuntime() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.MemoryUsage = safeUint64ToInt64(memStats.Alloc)
	m.metrics.HeapSize = safeUint64ToInt64(memStats.HeapAlloc)
	m.metrics.StackSize = safeUint64ToInt64(memStats.StackInuse)
	m.metrics.GoroutineCount = runtime.NumGoroutine()
	m.metrics.GCCount = memStats.NumGC
	m.metrics.LastCollectTime = time.Now()
}

// Attached implements ports.NavigationObserver
func (m *NavigationMonitor) Attached(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Attaches++
}

// TransitionStarted implements ports.NavigationObserver
func (m *NavigationMonitor) TransitionStarted(int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Transitions++
	m.metrics.LastTransitionTime = time.Now()
}

// TransitionSettled implements ports.NavigationObserver.
// A settle that lands elsewhere than commanded counts as drift.
func (m *NavigationMonitor) TransitionSettled(commanded, actual int) {
	if commanded == actual {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Drifts++
}

// InputSuppressed implements ports.NavigationObserver
func (m *NavigationMonitor) InputSuppressed(source entities.InputSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Suppressed[source]++
}

// InputDiscarded implements ports.NavigationObserver
func (m *NavigationMonitor) InputDiscarded(source entities.InputSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.Discarded[source]++
}

// SnapshotReplaced implements ports.NavigationObserver
func (m *NavigationMonitor) SnapshotReplaced(int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.SnapshotsReplaced++
}

// RecordHTTPRequest records an HTTP request
func (m *NavigationMonitor) RecordHTTPRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.HTTPRequests++
}

// RecordWebSocketConnection records a WebSocket connection
func (m *NavigationMonitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.WebSocketConnections++
}

// GetMetrics returns a copy of current metrics
func (m *NavigationMonitor) GetMetrics() NavigationMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.metrics
	out.Suppressed = copyCounts(m.metrics.Suppressed)
	out.Discarded = copyCounts(m.metrics.Discarded)
	return out
}

// GetUptime returns application uptime
func (m *NavigationMonitor) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return time.Since(m.metrics.AppStartTime)
}

// IsHealthy performs a basic health check
func (m *NavigationMonitor) IsHealthy() bool {
	metrics := m.GetMetrics()

	maxMemory := int64(500 * 1024 * 1024)
	maxGoroutines := 1000

	return metrics.MemoryUsage < maxMemory &&
		metrics.GoroutineCount < maxGoroutines
}

// GetHealthStatus returns detailed health information
func (m *NavigationMonitor) GetHealthStatus() map[string]interface{} {
	metrics := m.GetMetrics()
	uptime := m.GetUptime()

	return map[string]interface{}{
		"healthy":    m.IsHealthy(),
		"uptime":     uptime.String(),
		"memory_mb":  metrics.MemoryUsage / (1024 * 1024),
		"heap_mb":    metrics.HeapSize / (1024 * 1024),
		"goroutines": metrics.GoroutineCount,
		"gc_cycles":  metrics.GCCount,
		"navigation": map[string]interface{}{
			"attaches":           metrics.Attaches,
			"transitions":        metrics.Transitions,
			"drifts":             metrics.Drifts,
			"snapshots_replaced": metrics.SnapshotsReplaced,
			"suppressed":         metrics.Suppressed,
			"discarded":          metrics.Discarded,
		},
		"transport": map[string]interface{}{
			"http_requests":         metrics.HTTPRequests,
			"websocket_connections": metrics.WebSocketConnections,
		},
	}
}

// GetMemoryStats returns detailed memory statistics
func (m *NavigationMonitor) GetMemoryStats() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"alloc_mb":       safeUint64ToInt64(memStats.Alloc) / (1024 * 1024),
		"total_alloc_mb": safeUint64ToInt64(memStats.TotalAlloc) / (1024 * 1024),
		"sys_mb":         safeUint64ToInt64(memStats.Sys) / (1024 * 1024),
		"heap_objects":   safeUint64ToInt64(memStats.HeapObjects),
		"gc_cycles":      memStats.NumGC,
		"next_gc_mb":     safeUint64ToInt64(memStats.NextGC) / (1024 * 1024),
	}
}

func copyCounts(src map[entities.InputSource]int64) map[entities.InputSource]int64 {
	dst := make(map[entities.InputSource]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

var _ ports.NavigationObserver = (*NavigationMonitor)(nil)
