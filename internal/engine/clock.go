package engine

import "time"

// Clock abstracts time operations to enable testability.
// Production code uses realClock which delegates to the standard time package.
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// After returns a channel that fires after duration d
	After(d time.Duration) <-chan time.Time
}

// realClock implements Clock using the standard time package
type realClock struct{}

// NewRealClock creates a new Clock that uses the standard time package
func NewRealClock() Clock {
	return &realClock{}
}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func (c *realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
