package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
)

// catalogCalculator recomputes logs with a catalog's precompute algorithms.
type catalogCalculator struct {
	catalog *algorithm.Catalog
}

var _ store.Calculator = catalogCalculator{}

func (c catalogCalculator) Calculate(ctx context.Context, algo ir.AlgorithmType, input []int) ([]ir.Event, error) {
	a, ok := c.catalog.Lookup(algo)
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %s", algo)
	}
	if !a.Descriptor().Precompute {
		return nil, fmt.Errorf("algorithm %s steps live and has no log", algo)
	}
	return a.Calculate(ctx, input)
}

// newRand returns a PCG source for seed; seed 0 picks a random one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// openStore opens the run database, mapping failures to ExitCommandError.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set store.path")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
