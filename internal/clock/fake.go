package clock

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced Clock for tests. It normalizes to UTC so
// Today sees the same calendar date the test fixed, regardless of the zone
// the test constructed it with.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward. Batch tests advance by whole days to step
// the dedup ledger onto a new calendar date.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
