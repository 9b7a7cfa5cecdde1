package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

// ServerOptions configures the page bridge
type ServerOptions struct {
	Server     entities.ServerConfig
	Navigation entities.NavigationConfig
	Discovery  entities.DiscoveryConfig
	// Monitor is shared by every page session; nil creates a private one
	Monitor *monitoring.NavigationMonitor
	Logger  *slog.Logger
	Version string
}

// Server is the page bridge: one navigation session per websocket plus a small diagnostics API
type Server struct {
	config            entities.ServerConfig
	controllerOptions services.ControllerOptions
	retryPolicy       services.RetryPolicy
	sessions          *SessionManager
	monitor           *monitoring.NavigationMonitor
	limiter           *rateLimiter
	logger            *slog.Logger
	version           string

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	running  bool
}

// NewServer creates a new page bridge server
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NewNavigationMonitor()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Server{
		config:            opts.Server,
		controllerOptions: services.OptionsFromConfig(opts.Navigation),
		retryPolicy:       services.RetryPolicyFromConfig(opts.Discovery),
		sessions:          NewSessionManager(),
		monitor:           opts.Monitor,
		limiter:           newRateLimiter(100, time.Minute),
		logger:            opts.Logger.With("service", "http"),
		version:           opts.Version,
	}
}

// Start starts listening on host:port. Port 0 picks a free port, see Addr.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", host, port, err)
	}

	s.limiter.start(ctx)

	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	server := s.server
	go func() {
		s.logger.Info("HTTP server starting", slog.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop closes every page session and shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.sessions.CloseAll()
	s.limiter.stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the listening address, empty when stopped
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil || !s.running {
		return ""
	}
	return s.listener.Addr().String()
}

// SessionCount returns the number of connected pages
func (s *Server) SessionCount() int {
	return s.sessions.Count()
}

// Monitor returns the shared navigation monitor
func (s *Server) Monitor() *monitoring.NavigationMonitor {
	return s.monitor
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/advance", s.handleAdvanceSession).Methods(http.MethodPost)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	// security -> rate limiting -> metrics -> logging -> recovery
	var handler http.Handler = c.Handler(router)
	handler = securityHeadersMiddleware(handler)
	handler = s.limiter.middleware(handler)
	handler = metricsMiddleware(handler, s.monitor)
	handler = loggingMiddleware(handler, s.logger)
	handler = recoveryMiddleware(handler, s.logger)

	return handler
}

var _ ports.HTTPServer = (*Server)(nil)
