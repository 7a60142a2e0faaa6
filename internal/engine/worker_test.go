package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortstep/internal/ir"
)

// stubAlgorithm runs calc as its Calculate body.
type stubAlgorithm struct {
	calc func(ctx context.Context, input []int) ([]ir.Event, error)
}

func (s stubAlgorithm) Descriptor() ir.Descriptor {
	return ir.Descriptor{Name: "Stub", Type: ir.AlgorithmBubble, Precompute: true}
}

func (s stubAlgorithm) Calculate(ctx context.Context, input []int) ([]ir.Event, error) {
	return s.calc(ctx, input)
}

func (s stubAlgorithm) Step(array []int) ([]int, ir.Event) { return array, ir.End() }

func (s stubAlgorithm) Reset() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerPublishesLog(t *testing.T) {
	alg := stubAlgorithm{calc: func(context.Context, []int) ([]ir.Event, error) {
		return []ir.Event{ir.Compare(0, 1), ir.End()}, nil
	}}

	w := startWorker(alg, []int{1, 0}, discardLogger(), nil)
	require.NoError(t, w.wait(context.Background()))

	assert.True(t, w.finished())
	assert.NoError(t, w.err)
	assert.Len(t, w.log, 2)
}

func TestWorkerRecoversPanic(t *testing.T) {
	alg := stubAlgorithm{calc: func(context.Context, []int) ([]ir.Event, error) {
		panic("boom")
	}}

	w := startWorker(alg, nil, discardLogger(), nil)
	require.NoError(t, w.wait(context.Background()))

	require.Error(t, w.err)
	assert.Contains(t, w.err.Error(), "boom")
	assert.Nil(t, w.log)
}

func TestWorkerCancelDiscardsLog(t *testing.T) {
	started := make(chan struct{})
	alg := stubAlgorithm{calc: func(ctx context.Context, _ []int) ([]ir.Event, error) {
		close(started)
		<-ctx.Done()
		// Finishes anyway; the worker must still discard.
		return []ir.Event{ir.End()}, nil
	}}

	w := startWorker(alg, nil, discardLogger(), nil)
	<-started
	w.cancelAndJoin()

	assert.ErrorIs(t, w.err, context.Canceled)
	assert.Nil(t, w.log)
}

func TestWorkerWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	alg := stubAlgorithm{calc: func(context.Context, []int) ([]ir.Event, error) {
		<-release
		return nil, nil
	}}

	w := startWorker(alg, nil, discardLogger(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.wait(ctx), context.DeadlineExceeded)
	assert.False(t, w.finished())

	close(release)
	w.cancelAndJoin()
}

func TestPollAdoptsFailedRunAsEmpty(t *testing.T) {
	e := New(WithLogger(discardLogger()), WithSize(3))
	defer e.Close()
	e.events = []ir.Event{ir.End()}

	e.worker = startWorker(stubAlgorithm{calc: func(context.Context, []int) ([]ir.Event, error) {
		panic("launch failed")
	}}, nil, e.logger, nil)
	require.NoError(t, e.Wait(context.Background()))

	assert.False(t, e.Processing())
	assert.Empty(t, e.Log())
	assert.True(t, e.IsDoneSort())
}
