package algorithm

import (
	"context"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/testutil"
)

// TestReplaySortsAnyInput verifies every precompute strategy on arbitrary input.
// Property: Replay(xs, Calculate(xs)) == sorted(xs)
func TestReplaySortsAnyInput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	algorithms := precomputeAlgorithms(t, NewCatalog())

	properties.Property("replayed log sorts the input", prop.ForAll(
		func(values []int) bool {
			want := slices.Clone(values)
			slices.Sort(want)
			for _, a := range algorithms {
				log, err := a.Calculate(context.Background(), values)
				if err != nil {
					return false
				}
				if !slices.Equal(want, ir.Replay(values, log)) {
					t.Logf("%s failed on %v", a.Descriptor().Type, values)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-64, 64)),
	))

	properties.TestingRun(t)
}

// TestCalculateIsDeterministic verifies identical input gives an identical log.
// Property: LogHash(Calculate(xs)) == LogHash(Calculate(xs))
func TestCalculateIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	algorithms := precomputeAlgorithms(t, NewCatalog())

	properties.Property("log hash is stable", prop.ForAll(
		func(values []int) bool {
			for _, a := range algorithms {
				first, err1 := a.Calculate(context.Background(), values)
				second, err2 := a.Calculate(context.Background(), values)
				if err1 != nil || err2 != nil {
					return false
				}
				if ir.MustLogHash(first) != ir.MustLogHash(second) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 32)),
	))

	properties.TestingRun(t)
}

// TestPermutationInputs verifies strategies on duplicate-free input of
// arbitrary length, the shape the engine's reset produces.
func TestPermutationInputs(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	algorithms := precomputeAlgorithms(t, NewCatalog())

	properties.Property("permutations sort to the identity", prop.ForAll(
		func(n int, seed uint64) bool {
			input := testutil.Permutation(testutil.NewRand(seed), n)
			for _, a := range algorithms {
				log, err := a.Calculate(context.Background(), input)
				if err != nil || !slices.Equal(testutil.Sorted(n), ir.Replay(input, log)) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 150),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
