package testutil

import (
	"context"
	"sync/atomic"
)

// countdownContext reports cancellation once Err has been called more than
// budget times. It makes "cancel in the middle of a run" deterministic.
type countdownContext struct {
	context.Context
	remaining atomic.Int64
}

// CancelAfter returns a context whose Err returns context.Canceled from the
// (budget+1)-th call on. Done never closes; only code that polls Err sees the
// cancellation.
func CancelAfter(budget int64) context.Context {
	c := &countdownContext{Context: context.Background()}
	c.remaining.Store(budget)
	return c
}

func (c *countdownContext) Err() error {
	if c.remaining.Add(-1) < 0 {
		return context.Canceled
	}
	return nil
}
