// Package testutil provides deterministic inputs and helpers shared by tests
// and by the scenario harness.
package testutil

import (
	"math/rand/v2"
	"slices"
)

// NewRand returns a PCG source seeded from seed. The same seed always yields
// the same sequence, so shuffles and live-step runs replay identically.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sorted returns [0, 1, ..., n-1].
func Sorted(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Reversed returns [n-1, ..., 1, 0].
func Reversed(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - 1 - i
	}
	return out
}

// Zeros returns n zeros.
func Zeros(n int) []int {
	return make([]int, n)
}

// Random returns n values drawn uniformly from [0, n). Duplicates are likely.
func Random(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rng.IntN(max(n, 1))
	}
	return out
}

// Permutation returns a uniform permutation of Sorted(n).
func Permutation(rng *rand.Rand, n int) []int {
	out := Sorted(n)
	rng.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SameMultiset reports whether a and b hold the same values with the same
// multiplicities.
func SameMultiset(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sa := slices.Clone(a)
	sb := slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
