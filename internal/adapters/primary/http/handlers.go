package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SessionSummary is one entry of the session list
type SessionSummary struct {
	ID            string    `json:"id"`
	RemoteAddr    string    `json:"remote_addr"`
	ConnectedAt   time.Time `json:"connected_at"`
	CurrentIndex  int       `json:"current_index"`
	Transitioning bool      `json:"transitioning"`
	SlideCount    int       `json:"slide_count"`
}

// SessionResponse is the detailed view of one session
type SessionResponse struct {
	SessionSummary
	State  entities.NavigationState `json:"state"`
	Labels []string                 `json:"labels"`
}

// AdvanceRequest asks a session to move to a slide
type AdvanceRequest struct {
	Target int `json:"target"`
}

// AdvanceResponse reports whether the transition started
type AdvanceResponse struct {
	Started      bool `json:"started"`
	CurrentIndex int  `json:"current_index"`
}

// MetricsResponse is the diagnostics payload of /api/metrics
type MetricsResponse struct {
	Sessions   int                          `json:"sessions"`
	Uptime     string                       `json:"uptime"`
	Navigation monitoring.NavigationMetrics `json:"navigation"`
	Memory     map[string]interface{}       `json:"memory"`
}

const requestTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.monitor.GetHealthStatus()
	status["sessions"] = s.sessions.Count()

	if healthy, _ := status["healthy"].(bool); !healthy {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(status)
		return
	}

	s.writeJSON(w, status)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	clients := s.sessions.List()

	summaries := make([]SessionSummary, 0, len(clients))
	for _, client := range clients {
		summaries = append(summaries, client.summary())
	}

	s.writeJSON(w, summaries)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	client, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		s.handleError(w, fmt.Errorf("session %s not found", mux.Vars(r)["id"]), http.StatusNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state, err := client.session.Snapshot(ctx)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	s.writeJSON(w, SessionResponse{
		SessionSummary: client.summary(),
		State:          state,
		Labels:         client.region.Labels(),
	})
}

func (s *Server) handleAdvanceSession(w http.ResponseWriter, r *http.Request) {
	client, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		s.handleError(w, fmt.Errorf("session %s not found", mux.Vars(r)["id"]), http.StatusNotFound)
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		s.handleError(w, fmt.Errorf("decoding advance request: %w", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	started, err := client.session.AdvanceTo(ctx, req.Target)
	if err != nil {
		s.handleError(w, err, statusFor(err))
		return
	}

	s.writeJSON(w, AdvanceResponse{
		Started:      started,
		CurrentIndex: client.session.CurrentIndex(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, MetricsResponse{
		Sessions:   s.sessions.Count(),
		Uptime:     s.monitor.GetUptime().String(),
		Navigation: s.monitor.GetMetrics(),
		Memory:     s.monitor.GetMemoryStats(),
	})
}

func (c *PageClient) summary() SessionSummary {
	return SessionSummary{
		ID:            c.id,
		RemoteAddr:    c.remoteAddr,
		ConnectedAt:   c.connectedAt,
		CurrentIndex:  c.session.CurrentIndex(),
		Transitioning: c.session.IsTransitioning(),
		SlideCount:    c.region.SlideCount(),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusGone:
		message = "Session closed"
	case http.StatusGatewayTimeout:
		message = "Session did not respond"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// the real error stays server-side
	s.logger.Warn("HTTP error", "status", status, "error", err.Error())

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response", "error", encodeErr.Error())
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err.Error())
	}
}
