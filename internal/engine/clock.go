package engine

import "time"

// Clock stamps the start time of each execution.
//
// Production uses SystemClock; tests inject testutil.DeterministicClock so
// stored records and golden traces are reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
