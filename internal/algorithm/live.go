package algorithm

import (
	"context"
	"math/rand/v2"

	"github.com/roach88/sortstep/internal/ir"
)

// live is embedded by the live-step strategies. They have no precomputed
// log: Calculate returns an empty one.
type live struct {
	desc ir.Descriptor
}

func (l *live) Descriptor() ir.Descriptor { return l.desc }

func (l *live) Calculate(ctx context.Context, _ []int) ([]ir.Event, error) {
	return nil, ctx.Err()
}

func newLive(t ir.AlgorithmType, name string) live {
	return live{desc: ir.Descriptor{Name: name, Type: t}}
}

// bogoSort performs one Fisher-Yates swap per step and checks for a sorted
// array between complete shuffles.
type bogoSort struct {
	live
	rng   *rand.Rand
	index int
}

func newBogoSort(rng *rand.Rand) *bogoSort {
	return &bogoSort{live: newLive(ir.AlgorithmBogo, "Bogo Sort"), rng: rng}
}

func (b *bogoSort) Reset() { b.index = 0 }

func (b *bogoSort) Step(array []int) ([]int, ir.Event) {
	n := len(array)
	if n == 0 {
		return array, ir.End()
	}
	if b.index == 0 && IsSorted(array) {
		return array, ir.End()
	}
	if b.index >= n {
		if IsSorted(array) {
			return array, ir.End()
		}
		b.index = 0
	}

	i := b.index
	j := i + b.rng.IntN(n-i)
	array[i], array[j] = array[j], array[i]
	b.index++
	return array, ir.Swap(i, j)
}

// exchangeBogoSort picks a random pair per step and swaps it if out of order.
type exchangeBogoSort struct {
	live
	rng *rand.Rand
}

func newExchangeBogoSort(rng *rand.Rand) *exchangeBogoSort {
	return &exchangeBogoSort{live: newLive(ir.AlgorithmExchangeBogo, "Exchange Bogo Sort"), rng: rng}
}

func (e *exchangeBogoSort) Reset() {}

func (e *exchangeBogoSort) Step(array []int) ([]int, ir.Event) {
	n := len(array)
	if IsSorted(array) {
		return array, ir.End()
	}

	// n >= 2 here, so a distinct pair always exists.
	i := e.rng.IntN(n)
	j := e.rng.IntN(n - 1)
	if j >= i {
		j++
	}
	if i > j {
		i, j = j, i
	}

	if array[i] > array[j] {
		array[i], array[j] = array[j], array[i]
		return array, ir.Swap(i, j)
	}
	return array, ir.Compare(i, j)
}

// stalinSort walks the array once and removes every element smaller than
// its predecessor. The array shrinks as it goes.
type stalinSort struct {
	live
	index int
}

func newStalinSort() *stalinSort {
	return &stalinSort{live: newLive(ir.AlgorithmStalin, "Stalin Sort")}
}

func (s *stalinSort) Reset() { s.index = 0 }

func (s *stalinSort) Step(array []int) ([]int, ir.Event) {
	if s.index >= len(array)-1 {
		return array, ir.End()
	}
	if array[s.index] <= array[s.index+1] {
		ev := ir.Compare(s.index, s.index+1)
		s.index++
		return array, ev
	}
	ev := ir.Remove(s.index + 1)
	return ir.Apply(array, ev), ev
}
