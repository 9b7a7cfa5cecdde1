package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the page bridge server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	IsRunning() bool
	SessionCount() int
}

// ServerMessage represents a message sent to a connected page
type ServerMessage struct {
	Type      string      `json:"type"`
	Seq       int64       `json:"seq,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ServerMessage types
const (
	MessageTypeConnected   = "connected"
	MessageTypeScrollTo    = "scroll_to"
	MessageTypeDisposition = "disposition"
	MessageTypeState       = "state"
	MessageTypeError       = "error"
)

// ClientMessage types
const (
	ClientTypeLayout     = "layout"
	ClientTypeMutation   = "mutation"
	ClientTypeScroll     = "scroll"
	ClientTypeWheel      = "wheel"
	ClientTypeKey        = "key"
	ClientTypeTouchStart = "touchstart"
	ClientTypeTouchEnd   = "touchend"
)
