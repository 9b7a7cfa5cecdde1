package tui

import (
	"fmt"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
)

const historySize = 6

// history records controller notifications for the log pane and forwards them.
// It is only touched from Update.
type history struct {
	next    ports.NavigationObserver
	entries []string
}

func (h *history) add(format string, args ...any) {
	h.entries = append(h.entries, fmt.Sprintf(format, args...))
	if len(h.entries) > historySize {
		h.entries = h.entries[len(h.entries)-historySize:]
	}
}

func (h *history) Attached(slideCount int) {
	h.add("attached, %d slides", slideCount)
	if h.next != nil {
		h.next.Attached(slideCount)
	}
}

func (h *history) TransitionStarted(from, to int) {
	h.add("slide %d -> %d", from+1, to+1)
	if h.next != nil {
		h.next.TransitionStarted(from, to)
	}
}

func (h *history) TransitionSettled(commanded, actual int) {
	if commanded != actual {
		h.add("settled on %d, expected %d", actual+1, commanded+1)
	}
	if h.next != nil {
		h.next.TransitionSettled(commanded, actual)
	}
}

func (h *history) InputSuppressed(source entities.InputSource) {
	h.add("%s suppressed", source)
	if h.next != nil {
		h.next.InputSuppressed(source)
	}
}

func (h *history) InputDiscarded(source entities.InputSource) {
	if h.next != nil {
		h.next.InputDiscarded(source)
	}
}

func (h *history) SnapshotReplaced(oldCount, newCount int) {
	h.add("slides %d -> %d", oldCount, newCount)
	if h.next != nil {
		h.next.SnapshotReplaced(oldCount, newCount)
	}
}

var _ ports.NavigationObserver = (*history)(nil)
