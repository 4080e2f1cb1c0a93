package command

import "sync/atomic"

// Clock is a monotonic logical clock. Every history entry is stamped with
// a strictly increasing sequence number, so entries order the same way on
// every replay regardless of wall time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at start. Used to continue numbering
// after a session reload.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
