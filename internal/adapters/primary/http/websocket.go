package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; layouts carry one box per slide
	maxMessageSize = 64 * 1024

	// Time allowed for a single input dispatch
	dispatchTimeout = 5 * time.Second
)

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// PageClient is one connected page: its websocket, mirrored region and navigation session
type PageClient struct {
	id          string
	remoteAddr  string
	connectedAt time.Time
	conn        *websocket.Conn
	send        chan ports.ServerMessage
	region      *RemoteRegion
	session     *services.Session
	manager     *SessionManager
	logger      *slog.Logger
	seq         atomic.Int64
	done        chan struct{}
	closeOnce   sync.Once
	cancel      context.CancelFunc
}

// handleWebSocket upgrades a page connection and starts its navigation session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := uuid.New().String()
	client := &PageClient{
		id:          id,
		remoteAddr:  getClientIP(r),
		connectedAt: time.Now(),
		conn:        conn,
		send:        make(chan ports.ServerMessage, 256),
		manager:     s.sessions,
		logger:      s.logger.With("session_id", id),
		done:        make(chan struct{}),
	}
	client.region = NewRemoteRegion(client.scrollTo)

	opts := s.controllerOptions
	opts.Observer = &pageObserver{NavigationObserver: s.monitor, client: client}
	opts.Logger = client.logger

	client.session = services.NewSession(client.region, services.SessionOptions{
		Controller: opts,
		Retry:      s.retryPolicy,
		Notifier:   client.region,
		Logger:     client.logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	client.cancel = cancel

	if err := client.session.Start(ctx); err != nil {
		cancel()
		s.logger.Error("Starting navigation session", slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	s.sessions.Register(client)
	s.monitor.RecordWebSocketConnection()
	client.logger.Info("Page connected", slog.String("remote_addr", client.remoteAddr))

	go client.writePump()
	go client.readPump()
	go client.attach(ctx)

	client.enqueue(newServerMessage(ports.MessageTypeConnected, ConnectedData{
		SessionID: id,
		Version:   s.version,
	}))
}

// attach waits for the page to report a usable layout
func (c *PageClient) attach(ctx context.Context) {
	if err := c.session.Attach(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, entities.ErrClosed) {
			return
		}
		c.logger.Warn("Page never became navigable", slog.String("error", err.Error()))
		c.enqueue(newServerMessage(ports.MessageTypeError, ErrorData{Message: "slide region not found"}))
	}
}

// readPump pumps messages from the WebSocket connection
func (c *PageClient) readPump() {
	defer c.manager.Unregister(c.id)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket connection error", slog.String("error", err.Error()))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Debug("Failed to parse client message", slog.String("error", err.Error()))
			c.enqueue(newServerMessage(ports.MessageTypeError, ErrorData{Message: "invalid message"}))
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *PageClient) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case ports.ClientTypeLayout, ports.ClientTypeMutation:
		var layout LayoutPayload
		if err := json.Unmarshal(msg.Data, &layout); err != nil {
			c.rejectMessage(msg.Type, err)
			return
		}
		// structural changes reach the controller through OnStructuralChange
		if !c.region.ApplyLayout(layout) {
			c.session.NotifyScroll()
		}
		return

	case ports.ClientTypeScroll:
		var scroll ScrollPayload
		if err := json.Unmarshal(msg.Data, &scroll); err != nil {
			c.rejectMessage(msg.Type, err)
			return
		}
		c.region.SetOffset(scroll.Offset)
		c.session.NotifyScroll()
		return
	}

	event, isInput, err := decodeInput(msg)
	if err != nil {
		c.rejectMessage(msg.Type, err)
		return
	}
	if !isInput {
		c.enqueue(newServerMessage(ports.MessageTypeError, ErrorData{Message: "unknown message type: " + msg.Type}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	disposition, err := c.session.Dispatch(ctx, event)
	if err != nil {
		c.logger.Debug("Dispatch failed", slog.String("error", err.Error()))
		return
	}
	c.enqueue(newServerMessage(ports.MessageTypeDisposition, disposition))
}

func (c *PageClient) rejectMessage(msgType string, err error) {
	c.logger.Debug("Rejected client message", slog.String("type", msgType), slog.String("error", err.Error()))
	c.enqueue(newServerMessage(ports.MessageTypeError, ErrorData{Message: "invalid " + msgType + " payload"}))
}

// writePump pumps messages to the WebSocket connection
func (c *PageClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// enqueue stamps and queues a message, dropping it when the page is too slow
func (c *PageClient) enqueue(msg ports.ServerMessage) {
	msg.Seq = c.seq.Inc()

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn("Dropping message for slow page", slog.String("type", msg.Type))
	}
}

// scrollTo runs on the session loop when the controller commands a transition
func (c *PageClient) scrollTo(offset float64, animated bool) {
	c.enqueue(newServerMessage(ports.MessageTypeScrollTo, ScrollToData{
		Offset:   offset,
		Animated: animated,
		Index:    c.session.CurrentIndex(),
	}))
}

func (c *PageClient) pushState(current int, transitioning bool) {
	c.enqueue(newServerMessage(ports.MessageTypeState, StateData{
		CurrentIndex:  current,
		Transitioning: transitioning,
		SlideCount:    c.region.SlideCount(),
	}))
}

func (c *PageClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.session.Close()
		if c.cancel != nil {
			c.cancel()
		}
		c.logger.Info("Page disconnected")
	})
}

// pageObserver forwards settled state to the page on top of the shared monitor.
// Its methods run on the session loop, so it reads only published values.
type pageObserver struct {
	ports.NavigationObserver
	client *PageClient
}

func (o *pageObserver) Attached(slideCount int) {
	o.NavigationObserver.Attached(slideCount)
	o.client.pushState(o.client.session.CurrentIndex(), false)
}

func (o *pageObserver) TransitionSettled(commanded, actual int) {
	o.NavigationObserver.TransitionSettled(commanded, actual)
	o.client.pushState(actual, false)
}

func (o *pageObserver) SnapshotReplaced(oldCount, newCount int) {
	o.NavigationObserver.SnapshotReplaced(oldCount, newCount)
	o.client.pushState(o.client.session.CurrentIndex(), o.client.session.IsTransitioning())
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (non-browser clients)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin URL", slog.String("origin", origin))
		return false
	}

	if s.config.IsDevelopment() {
		return isDevelopmentOrigin(originURL)
	}

	return s.isProductionOrigin(originURL)
}

// isDevelopmentOrigin allows localhost and private network pages
func isDevelopmentOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()

	switch hostname {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	}

	return strings.HasPrefix(hostname, "192.168.") ||
		strings.HasPrefix(hostname, "10.") ||
		isPrivateClassB(hostname)
}

// isProductionOrigin validates against the configured CORS origins
func (s *Server) isProductionOrigin(originURL *url.URL) bool {
	for _, allowedOrigin := range s.config.GetCORSOrigins() {
		if allowedOrigin == "*" || originURL.String() == allowedOrigin {
			return true
		}

		// Support wildcard subdomains (*.example.com)
		if strings.HasPrefix(allowedOrigin, "*.") {
			domain := strings.TrimPrefix(allowedOrigin, "*")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin not in whitelist",
		slog.String("origin", originURL.String()),
	)
	return false
}

// isPrivateClassB checks for 172.16.0.0 to 172.31.255.255 range
func isPrivateClassB(hostname string) bool {
	if !strings.HasPrefix(hostname, "172.") {
		return false
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return false
	}

	switch parts[1] {
	case "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31":
		return true
	default:
		return false
	}
}
