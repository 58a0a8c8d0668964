package booking

import (
	"sync"
	"time"
)

// =============================================================================
// INTERVAL - Half-open [Start, Start+Duration) occupied by a reservation
// =============================================================================

// Interval is the half-open time range a reservation holds its table for.
type Interval struct {
	Start    time.Time
	Duration time.Duration
}

// NewInterval builds an interval from a start and a length in minutes.
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{Start: start, Duration: time.Duration(minutes) * time.Minute}
}

// End returns the first instant after the interval.
func (iv Interval) End() time.Time { return iv.Start.Add(iv.Duration) }

// Overlaps reports whether two intervals share at least one instant.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.Duration, other.Start, other.Duration)
}

// Overlaps is the conflict rule for the whole engine. Back-to-back
// intervals do not overlap, and a zero-length interval overlaps nothing.
func Overlaps(startA time.Time, durA time.Duration, startB time.Time, durB time.Duration) bool {
	return startA.Before(startB.Add(durB)) && startB.Before(startA.Add(durA))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// =============================================================================
// CLOCK - Injected so date guards are testable
// =============================================================================

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a settable clock for tests and demo scenarios.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
