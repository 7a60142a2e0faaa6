package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/sortstep/internal/ir"
)

// Calculator recomputes the log of an algorithm over an input.
type Calculator interface {
	Calculate(ctx context.Context, algo ir.AlgorithmType, input []int) ([]ir.Event, error)
}

// RunCheck is the outcome of re-verifying a stored run.
type RunCheck struct {
	Run Run

	// Replayed is the stored input with the stored log applied.
	Replayed []int

	// OutputMatches reports whether Replayed equals the stored output.
	OutputMatches bool

	// LogIntact reports whether the stored events still hash to the stored
	// log hash and match the stored event count.
	LogIntact bool

	// Recomputed is set when a Calculator was supplied.
	Recomputed bool

	// Deterministic reports whether recalculation produced the stored log
	// hash. Only meaningful when Recomputed is set.
	Deterministic bool
}

// OK reports whether every performed check passed.
func (c RunCheck) OK() bool {
	return c.OutputMatches && c.LogIntact && (!c.Recomputed || c.Deterministic)
}

// CheckRun replays a stored run and verifies it against its stored output
// and hashes. If calc is non-nil the log is also recalculated from the
// stored input and compared by hash.
func (s *Store) CheckRun(ctx context.Context, id string, calc Calculator) (RunCheck, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return RunCheck{}, fmt.Errorf("check run %s: %w", id, err)
	}
	log, err := s.ReadRunEvents(ctx, id)
	if err != nil {
		return RunCheck{}, fmt.Errorf("check run %s: %w", id, err)
	}

	check := RunCheck{Run: run}
	check.Replayed = ir.Replay(run.Input, log)
	check.OutputMatches = slices.Equal(check.Replayed, run.Output)

	storedHash, err := ir.LogHash(log)
	if err != nil {
		return RunCheck{}, fmt.Errorf("check run %s: %w", id, err)
	}
	check.LogIntact = storedHash == run.LogHash && len(log) == run.EventCount

	if calc != nil {
		fresh, err := calc.Calculate(ctx, run.Algorithm, run.Input)
		if err != nil {
			return RunCheck{}, fmt.Errorf("check run %s: recalculate: %w", id, err)
		}
		freshHash, err := ir.LogHash(fresh)
		if err != nil {
			return RunCheck{}, fmt.Errorf("check run %s: %w", id, err)
		}
		check.Recomputed = true
		check.Deterministic = freshHash == run.LogHash
	}
	return check, nil
}

// CheckAllRuns runs CheckRun over every stored run of algos (all runs when
// algos is empty) in seq order.
func (s *Store) CheckAllRuns(ctx context.Context, calc Calculator, algos ...ir.AlgorithmType) ([]RunCheck, error) {
	runs, err := s.ListRuns(ctx, algos...)
	if err != nil {
		return nil, err
	}
	checks := make([]RunCheck, 0, len(runs))
	for _, run := range runs {
		check, err := s.CheckRun(ctx, run.ID, calc)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}
