package entities

import "time"

// NavigationState is the controller's view of where the feed is
type NavigationState struct {
	// CurrentIndex is the slide the controller considers active
	CurrentIndex int `json:"current_index"`
	// Transitioning is true between a scroll command and the end of its cooldown
	Transitioning bool `json:"transitioning"`
	// CooldownDeadline is when the running cooldown expires, zero when idle
	CooldownDeadline time.Time `json:"cooldown_deadline,omitempty"`
	// SlideCount is the length of the snapshot the index refers to
	SlideCount int `json:"slide_count"`
	// Attached is true once a region and a non-empty slide list were located
	Attached bool `json:"attached"`
	// Layout is the reconciliation strategy in use
	Layout Layout `json:"layout"`
}

// HasCooldown returns true when a cooldown deadline is pending
func (s NavigationState) HasCooldown() bool {
	return !s.CooldownDeadline.IsZero()
}

// LastIndex returns the highest valid index, or -1 for an empty snapshot
func (s NavigationState) LastIndex() int {
	return s.SlideCount - 1
}

// ClampIndex clamps index into [0, count-1]. An empty collection clamps to 0.
func ClampIndex(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index > count-1 {
		return count - 1
	}
	return index
}
