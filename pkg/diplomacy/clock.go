package diplomacy

import "time"

// Clock is an injected wall-clock source for message and log timestamps,
// so tests and replays can supply a deterministic one instead of the
// engine reaching for time.Now() itself.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now().
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock that always returns the same instant, useful in
// tests that need reproducible timestamps.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }
