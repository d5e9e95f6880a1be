package utils

import "time"

// Clock abstracts wall-clock access so cooldown windows and history purges
// can be driven by a controlled time source in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
