package http

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/monitoring"
)

// responseWriter records what a handler wrote for the request log
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Hijack lets the websocket upgrader take over the connection
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("response writer does not support hijacking")
}

func loggingMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		began := time.Now()
		next.ServeHTTP(rw, r)

		logger.Debug("Bridge request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.status),
			slog.Int("bytes", rw.size),
			slog.Duration("duration", time.Since(began)),
		)
	})
}

func metricsMiddleware(next http.Handler, monitor *monitoring.NavigationMonitor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		monitor.RecordHTTPRequest()
		next.ServeHTTP(w, r)
	})
}

// bridgeHeaders are set on every response; the bridge serves JSON and sockets, never pages
var bridgeHeaders = map[string]string{
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Cache-Control":           "no-store",
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range bridgeHeaders {
			w.Header().Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimiter allows limit requests per client per fixed window
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
	idle    time.Duration
	stopCh  chan struct{}
}

type clientWindow struct {
	opened   time.Time
	count    int
	lastSeen time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
		idle:    5 * time.Minute,
	}
}

// start evicts idle clients until ctx ends or stop is called
func (rl *rateLimiter) start(ctx context.Context) {
	stopCh := make(chan struct{})
	rl.mu.Lock()
	rl.stopCh = stopCh
	rl.mu.Unlock()

	go func() {
		ticker := time.NewTicker(rl.idle)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case now := <-ticker.C:
				rl.evict(now.Add(-rl.idle))
			}
		}
	}()
}

func (rl *rateLimiter) stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.stopCh != nil {
		close(rl.stopCh)
		rl.stopCh = nil
	}
}

// evict forgets clients not seen since cutoff
func (rl *rateLimiter) evict(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) isAllowed(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok || now.Sub(c.opened) >= rl.window {
		c = &clientWindow{opened: now}
		rl.clients[ip] = c
	}
	c.lastSeen = now

	if c.count >= rl.limit {
		return false
	}
	c.count++
	return true
}

// middleware rejects clients over the limit. Websocket upgrades are exempt,
// a page holds its connection open rather than polling.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") && !rl.isAllowed(getClientIP(r), time.Now()) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP prefers the proxy headers a local dev proxy sets, then the socket peer
func getClientIP(r *http.Request) string {
	candidates := []string{
		strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0]),
		r.Header.Get("X-Real-IP"),
	}
	for _, candidate := range candidates {
		if ip := net.ParseIP(candidate); ip != nil {
			return ip.String()
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// recoveryMiddleware turns a handler panic into a 500 so one bad request
// does not take down every page session on the bridge
func recoveryMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Handler panicked",
					slog.String("path", r.URL.Path),
					slog.Any("panic", p),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
