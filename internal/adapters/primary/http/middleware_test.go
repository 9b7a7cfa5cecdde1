package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/logging"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/monitoring"
)

func TestLoggingMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test response"))
	})

	wrapped := loggingMiddleware(handler, logging.Discard())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		recoveryMiddleware(handler, logging.Discard()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})

	t.Run("panic recovery", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		recoveryMiddleware(handler, logging.Discard()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	monitor := monitoring.NewNavigationMonitor()
	handler := metricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), monitor)

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	assert.Equal(t, int64(3), monitor.GetMetrics().HTTPRequests)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestRateLimiter(t *testing.T) {
	t.Run("limits within the window", func(t *testing.T) {
		rl := newRateLimiter(2, time.Minute)
		now := time.Now()

		assert.True(t, rl.isAllowed("10.0.0.1", now))
		assert.True(t, rl.isAllowed("10.0.0.1", now))
		assert.False(t, rl.isAllowed("10.0.0.1", now))
		assert.True(t, rl.isAllowed("10.0.0.2", now))

		assert.True(t, rl.isAllowed("10.0.0.1", now.Add(2*time.Minute)))
	})

	t.Run("middleware rejects and exempts upgrades", func(t *testing.T) {
		rl := newRateLimiter(1, time.Minute)
		handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "60", second.Header().Get("Retry-After"))

		upgrade := httptest.NewRequest(http.MethodGet, "/ws", nil)
		upgrade.Header.Set("Upgrade", "websocket")
		third := httptest.NewRecorder()
		handler.ServeHTTP(third, upgrade)
		assert.Equal(t, http.StatusOK, third.Code)
	})

	t.Run("evict drops idle clients", func(t *testing.T) {
		rl := newRateLimiter(1, time.Minute)
		now := time.Now()
		rl.isAllowed("10.0.0.1", now)

		rl.evict(now.Add(time.Second))
		assert.Empty(t, rl.clients)
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "192.0.2.1:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "192.0.2.1:1234", "203.0.113.9"},
		{"garbage header", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1:1234", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	wrapped := &responseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}

	wrapped.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, wrapped.status)

	n, err := wrapped.Write([]byte("test data"))
	assert.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, 9, wrapped.size)

	_, _, err = wrapped.Hijack()
	assert.Error(t, err)
}
