package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

// ClientMessage is a message received from the page shim
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SlideBox is one slide as measured by the page, relative to the viewport top
type SlideBox struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
}

// LayoutPayload reports the region geometry and the slides it holds.
// Sent once the page has rendered and again on every mutation.
type LayoutPayload struct {
	Rendered *bool      `json:"rendered,omitempty"`
	Extent   float64    `json:"extent"`
	Offset   float64    `json:"offset"`
	Slides   []SlideBox `json:"slides"`
}

// IsRendered defaults to true when the page leaves the flag out
func (p LayoutPayload) IsRendered() bool {
	return p.Rendered == nil || *p.Rendered
}

// ScrollPayload reports a passive scroll
type ScrollPayload struct {
	Offset float64 `json:"offset"`
}

// WheelPayload is a wheel notification
type WheelPayload struct {
	DeltaY float64 `json:"delta_y"`
	Target string  `json:"target,omitempty"`
}

// KeyPayload is a key press using DOM key names
type KeyPayload struct {
	Key    string `json:"key"`
	Target string `json:"target,omitempty"`
}

// TouchPayload is a touch contact or release
type TouchPayload struct {
	Y      float64 `json:"y"`
	TimeMs int64   `json:"time_ms"`
}

// ScrollToData is sent when the controller commands a transition
type ScrollToData struct {
	Offset   float64 `json:"offset"`
	Animated bool    `json:"animated"`
	Index    int     `json:"index"`
}

// StateData is the published navigation state pushed to the page
type StateData struct {
	CurrentIndex  int  `json:"current_index"`
	Transitioning bool `json:"transitioning"`
	SlideCount    int  `json:"slide_count"`
}

// ConnectedData greets a new page
type ConnectedData struct {
	SessionID string `json:"session_id"`
	Version   string `json:"version"`
}

// ErrorData reports a rejected client message
type ErrorData struct {
	Message string `json:"message"`
}

// decodeInput turns an input client message into an entity event.
// ok is false for message types that are not input.
func decodeInput(msg ClientMessage) (event entities.InputEvent, ok bool, err error) {
	switch msg.Type {
	case ports.ClientTypeWheel:
		var p WheelPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, true, fmt.Errorf("decoding wheel payload: %w", err)
		}
		return entities.WheelEvent{DeltaY: p.DeltaY, Target: entities.ParseTargetKind(p.Target)}, true, nil

	case ports.ClientTypeKey:
		var p KeyPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, true, fmt.Errorf("decoding key payload: %w", err)
		}
		return entities.KeyEvent{Key: p.Key, Target: entities.ParseTargetKind(p.Target)}, true, nil

	case ports.ClientTypeTouchStart:
		var p TouchPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, true, fmt.Errorf("decoding touch payload: %w", err)
		}
		return entities.TouchStart{Y: p.Y, At: time.UnixMilli(p.TimeMs)}, true, nil

	case ports.ClientTypeTouchEnd:
		var p TouchPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, true, fmt.Errorf("decoding touch payload: %w", err)
		}
		return entities.TouchEnd{Y: p.Y, At: time.UnixMilli(p.TimeMs)}, true, nil
	}

	return nil, false, nil
}

func newServerMessage(msgType string, data interface{}) ports.ServerMessage {
	return ports.ServerMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
