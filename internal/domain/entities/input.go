package entities

import (
	"math"
	"time"
)

// Direction is a single step through the slide collection
type Direction int

const (
	// DirectionNone means the event did not resolve to a step
	DirectionNone Direction = 0
	// DirectionForward moves to the next slide
	DirectionForward Direction = 1
	// DirectionBackward moves to the previous slide
	DirectionBackward Direction = -1
)

// String returns the string representation of Direction
func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "none"
	}
}

// CommandKind identifies what an input event asks the controller to do
type CommandKind int

const (
	// CommandNone is an event that is not navigation input
	CommandNone CommandKind = iota
	// CommandStep moves one slide in Command.Direction
	CommandStep
	// CommandFirst jumps to the first slide
	CommandFirst
	// CommandLast jumps to the last slide
	CommandLast
)

// Command is the resolved form of an input event
type Command struct {
	Kind      CommandKind
	Direction Direction
}

// IsNone returns true if the command carries no navigation intent
func (c Command) IsNone() bool {
	return c.Kind == CommandNone
}

// StepCommand builds a one-slide step command
func StepCommand(d Direction) Command {
	if d == DirectionNone {
		return Command{}
	}
	return Command{Kind: CommandStep, Direction: d}
}

// InputSource names the stream an event came from
type InputSource string

const (
	SourceWheel InputSource = "wheel"
	SourceKey   InputSource = "key"
	SourceTouch InputSource = "touch"
)

// TargetKind classifies the element an event was dispatched to
type TargetKind int

const (
	// TargetContent is the feed itself or anything not listed below
	TargetContent TargetKind = iota
	// TargetFormField is a text input, text area, select or content-editable element
	TargetFormField
	// TargetOverlay is a panel, a secondary scroller or a control layered above the feed
	TargetOverlay
)

// ParseTargetKind maps a wire name to a TargetKind. Unknown names are content.
func ParseTargetKind(name string) TargetKind {
	switch name {
	case "form", "input", "textarea", "select", "editable":
		return TargetFormField
	case "overlay":
		return TargetOverlay
	default:
		return TargetContent
	}
}

// InputEvent is one of WheelEvent, KeyEvent, TouchStart or TouchEnd
type InputEvent interface {
	Source() InputSource
}

// WheelEvent is a single wheel notification
type WheelEvent struct {
	DeltaY float64
	Target TargetKind
}

// Source implements InputEvent
func (WheelEvent) Source() InputSource { return SourceWheel }

// Resolve turns the wheel delta into a step. Deltas under the noise threshold resolve to nothing.
func (e WheelEvent) Resolve(th Thresholds) Command {
	if e.Target != TargetContent {
		return Command{}
	}
	if math.Abs(e.DeltaY) < th.WheelNoise || e.DeltaY == 0 {
		return Command{}
	}
	if e.DeltaY > 0 {
		return StepCommand(DirectionForward)
	}
	return StepCommand(DirectionBackward)
}

// KeyEvent is a key press using DOM key names ("ArrowDown", "j", "Home", ...)
type KeyEvent struct {
	Key    string
	Target TargetKind
}

// Source implements InputEvent
func (KeyEvent) Source() InputSource { return SourceKey }

// Resolve maps the key onto a command. Keys typed into form fields never navigate.
func (e KeyEvent) Resolve(th Thresholds) Command {
	if e.Target == TargetFormField {
		return Command{}
	}

	switch e.Key {
	case "ArrowDown", "j", "J":
		return StepCommand(DirectionForward)
	case "ArrowUp", "k", "K":
		return StepCommand(DirectionBackward)
	case "Home":
		return Command{Kind: CommandFirst}
	case "End":
		return Command{Kind: CommandLast}
	}

	if th.PageKeys {
		switch e.Key {
		case "PageDown", " ":
			return StepCommand(DirectionForward)
		case "PageUp":
			return StepCommand(DirectionBackward)
		}
	}

	return Command{}
}

// TouchStart marks the first contact of a touch gesture
type TouchStart struct {
	Y  float64
	At time.Time
}

// Source implements InputEvent
func (TouchStart) Source() InputSource { return SourceTouch }

// TouchEnd marks the release of a touch gesture
type TouchEnd struct {
	Y  float64
	At time.Time
}

// Source implements InputEvent
func (TouchEnd) Source() InputSource { return SourceTouch }

// ResolveSwipe turns a start/end pair into a step.
// Only fast gestures that travel far enough count; slow drags and taps resolve to nothing.
func ResolveSwipe(start TouchStart, end TouchEnd, th Thresholds) Command {
	displacement := start.Y - end.Y
	duration := end.At.Sub(start.At)

	if duration < 0 || duration >= th.TouchMaxDuration {
		return Command{}
	}
	if math.Abs(displacement) <= th.TouchMinDistance {
		return Command{}
	}

	if displacement > 0 {
		return StepCommand(DirectionForward)
	}
	return StepCommand(DirectionBackward)
}

// Thresholds holds the gating values used to resolve raw input
type Thresholds struct {
	WheelNoise       float64
	TouchMaxDuration time.Duration
	TouchMinDistance float64
	PageKeys         bool
}

// DefaultThresholds returns the thresholds used when nothing is configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		WheelNoise:       20,
		TouchMaxDuration: 300 * time.Millisecond,
		TouchMinDistance: 50,
	}
}

// Disposition tells the host what happened to an event
type Disposition struct {
	// Handled is true when the event was treated as navigation input
	Handled bool `json:"handled"`
	// PreventDefault is true when the host should cancel the native action
	PreventDefault bool `json:"prevent_default"`
	// Suppressed is true when the event arrived during a transition
	Suppressed bool `json:"suppressed"`
	// Advanced is true when a transition was started
	Advanced bool `json:"advanced"`
	// Target is the current index after the event was handled
	Target int `json:"target"`
}
