package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/engine"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/testutil"
)

// Harness drives one engine through one scenario.
type Harness struct {
	engine   *engine.Engine
	result   *Result
	maxSteps int
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext executes a scenario, giving up when ctx is done.
//
// Execution flow:
//  1. Build a fresh engine with random sources seeded from the scenario
//  2. Apply algorithm, filters and skips, then load the input
//  3. Drive the Sort phase (mode sort) or the whole cycle (mode cycle)
//  4. Evaluate assertions against the captured trace and final array
//
// An error is returned only when the scenario cannot be executed; failed
// assertions are reported in the result.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	algo, _ := ir.ParseAlgorithmType(scenario.Algorithm)
	input, err := scenario.Input.Build()
	if err != nil {
		return nil, err
	}

	h := &Harness{
		result:   NewResult(),
		maxSteps: scenario.MaxSteps,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	if h.maxSteps == 0 {
		h.maxSteps = defaultMaxSteps
	}

	catalog := algorithm.NewCatalog(algorithm.WithRand(testutil.NewRand(scenario.Seed)))
	h.engine = engine.New(
		engine.WithLogger(h.logger),
		engine.WithCatalog(catalog),
		engine.WithRand(testutil.NewRand(scenario.Seed+1)),
		engine.WithAlgorithm(algo),
		engine.WithObserver(func(p engine.Played) {
			h.result.record(p.Seq, p.Phase.String(), p.Event)
		}),
	)
	defer h.engine.Close()

	for _, name := range scenario.Filter {
		t, _ := ir.ParseEventType(name)
		h.engine.SetFilter(t, true)
	}
	if scenario.ShuffleSkip > 0 {
		h.engine.SetShuffleSkip(scenario.ShuffleSkip)
	}
	if scenario.TraverseSkip > 0 {
		h.engine.SetTraverseSkip(scenario.TraverseSkip)
	}

	h.engine.Load(input)

	switch scenario.Mode {
	case ModeCycle:
		err = h.driveCycle(ctx)
	default:
		err = h.driveSort(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h.result.Final = h.engine.Values()
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// driveSort steps the Sort phase until it has nothing left to return.
func (h *Harness) driveSort(ctx context.Context) error {
	precompute := h.engine.Algorithm().Precompute
	for range h.maxSteps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.engine.Wait(ctx); err != nil {
			return err
		}
		_, ok := h.engine.StepSort()
		h.collectTriggers()
		if ok {
			continue
		}
		if precompute || h.engine.IsDoneSort() {
			return nil
		}
	}
	return fmt.Errorf("sort phase did not finish within %d steps", h.maxSteps)
}

// driveCycle steps the full phase cycle until Done.
func (h *Harness) driveCycle(ctx context.Context) error {
	for range h.maxSteps {
		if h.engine.IsDone() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.engine.Wait(ctx); err != nil {
			return err
		}
		h.engine.Step()
		h.collectTriggers()
	}
	return fmt.Errorf("cycle did not finish within %d steps", h.maxSteps)
}

// collectTriggers reads every latch once, as a frame-polling caller would.
func (h *Harness) collectTriggers() {
	if h.engine.TriggerShuffle() {
		h.result.Triggers[LatchShuffle]++
	}
	if h.engine.TriggerSort() {
		h.result.Triggers[LatchSort]++
	}
	if h.engine.TriggerTraverse() {
		h.result.Triggers[LatchTraverse]++
	}
	if h.engine.TriggerDone() {
		h.result.Triggers[LatchDone]++
	}
}
