package tui

import "time"

// tickMsg advances the region's scroll animation by one frame
type tickMsg time.Time

// attachMsg asks the model to try attaching again
type attachMsg struct {
	attempt int
}

// recheckMsg is sent when the feed changed shape outside Update
type recheckMsg struct{}
