package ports

import "time"

// Clock abstracts the current time for testability
type Clock interface {
	Now() time.Time
}

// Timer is a pending scheduled callback
type Timer interface {
	// Stop prevents the callback from running. It returns false if it already ran.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
// Implementations used by the controller must deliver callbacks on the navigation
// loop so they never run concurrently with input handling.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// NewRealClock creates a new real clock implementation
func NewRealClock() Clock {
	return RealClock{}
}

// Now returns the current time
func (RealClock) Now() time.Time {
	return time.Now()
}
