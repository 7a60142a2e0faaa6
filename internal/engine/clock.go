package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps every event the engine
// hands to a caller.
//
// Seq numbers are strictly increasing and survive Snapshot/Restore, so a
// played trace recorded across a save and a resume has no gaps or repeats.
// Wall-clock time is never used for ordering.
//
// Thread-safety: Clock is safe for concurrent use, although only the
// engine's caller goroutine advances it.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued seq without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// set repositions the clock; used when restoring a snapshot.
func (c *Clock) set(seq int64) {
	c.seq.Store(seq)
}
