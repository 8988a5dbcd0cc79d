package domain

import (
	"sync"
	"time"
)

// Clock hands out UTC timestamps truncated to the millisecond.
// Successive calls never go backwards, even if the wall clock does.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockFrom is used by tests to pin time.
func NewClockFrom(now func() time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
