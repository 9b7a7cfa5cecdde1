package simulate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Action is the kind of a scripted step
type Action string

const (
	ActionWheel  Action = "wheel"
	ActionKey    Action = "key"
	ActionSwipe  Action = "swipe"
	ActionWait   Action = "wait"
	ActionResize Action = "resize"
	ActionScroll Action = "scroll"
)

// ErrInvalidStep is wrapped by every parse failure
var ErrInvalidStep = errors.New("invalid step")

// Step is one scripted host event.
//
//	wheel:40       wheel notification with deltaY 40
//	key:End        key press, DOM key name
//	swipe:80@150   touch gesture moving 80px up in 150ms, negative moves down
//	wait:600       pause for 600ms
//	resize:3       replace the feed with 3 slides
//	scroll:1600    free user scroll to offset 1600
type Step struct {
	Action   Action
	Value    float64
	Key      string
	Duration time.Duration
}

// String returns the script form of the step
func (s Step) String() string {
	switch s.Action {
	case ActionKey:
		return fmt.Sprintf("key:%s", s.Key)
	case ActionSwipe:
		return fmt.Sprintf("swipe:%g@%d", s.Value, s.Duration.Milliseconds())
	case ActionWait:
		return fmt.Sprintf("wait:%d", s.Duration.Milliseconds())
	default:
		return fmt.Sprintf("%s:%g", s.Action, s.Value)
	}
}

// ParseStep parses a single "action:value" token
func ParseStep(token string) (Step, error) {
	action, value, ok := strings.Cut(token, ":")
	if !ok || value == "" {
		return Step{}, fmt.Errorf("%w %q: expected action:value", ErrInvalidStep, token)
	}

	step := Step{Action: Action(action)}
	switch step.Action {
	case ActionKey:
		step.Key = value
		if value == "Space" {
			step.Key = " "
		}
		return step, nil

	case ActionWheel, ActionScroll:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Step{}, fmt.Errorf("%w %q: %s needs a number", ErrInvalidStep, token, action)
		}
		if step.Action == ActionScroll && n < 0 {
			return Step{}, fmt.Errorf("%w %q: offset must be non-negative", ErrInvalidStep, token)
		}
		step.Value = n
		return step, nil

	case ActionWait:
		ms, err := parseMillis(value)
		if err != nil {
			return Step{}, fmt.Errorf("%w %q: %v", ErrInvalidStep, token, err)
		}
		step.Duration = ms
		return step, nil

	case ActionResize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return Step{}, fmt.Errorf("%w %q: resize needs a slide count", ErrInvalidStep, token)
		}
		step.Value = float64(n)
		return step, nil

	case ActionSwipe:
		distance, duration, ok := strings.Cut(value, "@")
		if !ok {
			return Step{}, fmt.Errorf("%w %q: expected swipe:distance@ms", ErrInvalidStep, token)
		}
		n, err := strconv.ParseFloat(distance, 64)
		if err != nil {
			return Step{}, fmt.Errorf("%w %q: swipe distance must be a number", ErrInvalidStep, token)
		}
		ms, err := parseMillis(duration)
		if err != nil {
			return Step{}, fmt.Errorf("%w %q: %v", ErrInvalidStep, token, err)
		}
		step.Value = n
		step.Duration = ms
		return step, nil
	}

	return Step{}, fmt.Errorf("%w %q: unknown action %s", ErrInvalidStep, token, action)
}

// ParseScript reads whitespace separated steps. A # starts a comment running to the end of the line.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}

		for _, token := range strings.Fields(text) {
			step, err := ParseStep(token)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			steps = append(steps, step)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return steps, nil
}

func parseMillis(value string) (time.Duration, error) {
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%q is not a duration in milliseconds", value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
