package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/observability"
)

// worker is the handle of one background calculation.
//
// The goroutine writes log and err, then closes done. The caller reads
// log and err only after observing done closed, which orders the writes
// before the reads.
type worker struct {
	algorithm ir.AlgorithmType
	cancel    context.CancelFunc
	done      chan struct{}

	log []ir.Event
	err error
}

// startWorker launches alg over input (which the worker owns).
func startWorker(alg algorithm.Algorithm, input []int, logger *slog.Logger, metrics *observability.EngineMetrics) *worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{
		algorithm: alg.Descriptor().Type,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go w.run(ctx, alg, input, logger, metrics)
	return w
}

func (w *worker) run(ctx context.Context, alg algorithm.Algorithm, input []int, logger *slog.Logger, metrics *observability.EngineMetrics) {
	name := w.algorithm.String()
	start := time.Now()
	metrics.CalculationStarted(ctx, name)

	defer close(w.done)
	defer func() {
		status := observability.StatusCompleted
		if r := recover(); r != nil {
			// A crashed run counts as finished with an empty log.
			w.log, w.err = nil, fmt.Errorf("calculation of %s panicked: %v", name, r)
			logger.Error("calculation failed", "algorithm", name, "panic", r)
		}
		switch {
		case errors.Is(w.err, context.Canceled):
			status = observability.StatusCancelled
		case w.err != nil:
			status = observability.StatusFailed
		}
		metrics.CalculationFinished(context.Background(), name, status, len(w.log), time.Since(start))
	}()

	log, err := alg.Calculate(ctx, input)

	// Last look at the cancel flag before publishing: a cancel that raced
	// with completion wins and the log is discarded.
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log = nil
	}
	w.log, w.err = log, err
}

// finished reports whether the goroutine has published its result.
func (w *worker) finished() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// wait blocks until the goroutine finishes or ctx is done.
func (w *worker) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancelAndJoin requests cancellation and blocks until the goroutine exits.
func (w *worker) cancelAndJoin() {
	w.cancel()
	<-w.done
}
