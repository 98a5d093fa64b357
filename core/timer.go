package core

import (
	"sync/atomic"
	"time"
)

// Clock supplies monotonic time in microseconds since an arbitrary epoch
type Clock interface {
	Now() uint64
}

// TimerFromDuration converts a duration to timer microseconds
func TimerFromDuration(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Microsecond)
}

// TimerToMillis converts timer microseconds to milliseconds
func TimerToMillis(us uint64) float64 {
	return float64(us) / 1000.0
}

// SystemClock reads the runtime monotonic clock
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a clock at zero
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns microseconds since the clock was created
func (c *SystemClock) Now() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}

// ManualClock only moves when told to. Tests use it to step the scheduler
// through debounce windows deterministically.
type ManualClock struct {
	us atomic.Uint64
}

// Now returns the current manual time
func (c *ManualClock) Now() uint64 {
	return c.us.Load()
}

// Set jumps to an absolute time
func (c *ManualClock) Set(us uint64) {
	c.us.Store(us)
}

// Advance moves time forward and returns the new value
func (c *ManualClock) Advance(d time.Duration) uint64 {
	return c.us.Add(TimerFromDuration(d))
}
