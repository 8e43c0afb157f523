package hardware

import (
	"sync"
	"time"
)

// spinThreshold is the longest delay RealClock busy-waits for. The scheduler
// overshoots short sleeps by tens of microseconds, which is the same order as
// the reset pulse itself.
const spinThreshold = time.Millisecond

// Clock provides the time source and blocking delays used by the procedures.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock is the wall clock. Delays below one millisecond are busy-waits.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if d >= spinThreshold {
		time.Sleep(d)
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// SimClock is a virtual clock for simulated backends. Sleep advances the
// clock instantly.
type SimClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewSimClock creates a virtual clock starting at start.
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
