package algorithm

import (
	"context"
	"math/rand/v2"

	"github.com/roach88/sortstep/internal/ir"
)

// Algorithm is the contract shared by every catalog entry.
//
// Precompute entries implement Calculate and answer Step with an End event.
// Live-step entries implement Step and answer Calculate with an empty log.
type Algorithm interface {
	// Descriptor returns the entry's static metadata.
	Descriptor() ir.Descriptor

	// Calculate runs the algorithm on a copy of input and returns the full
	// log, terminated by exactly one End event. The input is not modified.
	// Returns ctx.Err() and a nil log if ctx is cancelled during the run.
	Calculate(ctx context.Context, input []int) ([]ir.Event, error)

	// Step performs one primitive on array and returns the (possibly
	// shortened) array with the event describing it. End means sorted.
	Step(array []int) ([]int, ir.Event)

	// Reset clears any per-run progress held between Step calls.
	Reset()
}

// runFunc is the body of a precompute strategy. It must not call end; the
// wrapper appends the single terminal End.
type runFunc func(r *recorder)

// precomputed adapts a runFunc to the Algorithm interface.
type precomputed struct {
	desc ir.Descriptor
	run  runFunc
}

func newPrecomputed(t ir.AlgorithmType, name string, run runFunc) *precomputed {
	return &precomputed{
		desc: ir.Descriptor{Name: name, Type: t, Precompute: true},
		run:  run,
	}
}

func (p *precomputed) Descriptor() ir.Descriptor { return p.desc }

func (p *precomputed) Calculate(ctx context.Context, input []int) ([]ir.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := newRecorder(ctx, input)
	p.run(r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.end()
	return r.events, nil
}

func (p *precomputed) Step(array []int) ([]int, ir.Event) {
	return array, ir.End()
}

func (p *precomputed) Reset() {}

// Catalog holds one instance of every algorithm, indexed by type.
// Instances are created once and reused; live-step entries keep their
// progress between Step calls until Reset.
type Catalog struct {
	entries [ir.AlgorithmCount]Algorithm
}

type catalogConfig struct {
	rng *rand.Rand
}

// Option configures a Catalog.
type Option func(*catalogConfig)

// WithRand sets the random source used by the live-step strategies.
// Tests pass a seeded source for reproducible runs.
func WithRand(rng *rand.Rand) Option {
	return func(c *catalogConfig) {
		c.rng = rng
	}
}

// NewCatalog builds the full catalog.
func NewCatalog(opts ...Option) *Catalog {
	cfg := catalogConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c := &Catalog{}
	add := func(a Algorithm) {
		c.entries[a.Descriptor().Type] = a
	}

	add(newPrecomputed(ir.AlgorithmBubble, "Bubble Sort", bubbleSort))
	add(newPrecomputed(ir.AlgorithmInsertion, "Insertion Sort", insertionSort))
	add(newPrecomputed(ir.AlgorithmBinaryInsertion, "Binary Insertion Sort", binaryInsertionSort))
	add(newPrecomputed(ir.AlgorithmSelection, "Selection Sort", selectionSort))
	add(newPrecomputed(ir.AlgorithmDoubleSelection, "Double Selection Sort", doubleSelectionSort))
	add(newPrecomputed(ir.AlgorithmCocktailShaker, "Cocktail Shaker Sort", cocktailShakerSort))
	add(newPrecomputed(ir.AlgorithmMerge, "Merge Sort", mergeSort))
	add(newPrecomputed(ir.AlgorithmComb, "Comb Sort", combSort))
	add(newPrecomputed(ir.AlgorithmGnome, "Gnome Sort", gnomeSort))
	add(newPrecomputed(ir.AlgorithmOptimizedGnome, "Optimized Gnome Sort", optimizedGnomeSort))
	add(newPrecomputed(ir.AlgorithmOddEven, "Odd Even Sort", oddEvenSort))
	add(newPrecomputed(ir.AlgorithmShell, "Shell Sort", shellSort))
	add(newPrecomputed(ir.AlgorithmHeap, "Heap Sort", heapSort))
	add(newPrecomputed(ir.AlgorithmSmooth, "Smooth Sort", smoothSort))
	add(newPrecomputed(ir.AlgorithmBitonic, "Bitonic Sort", bitonicSort))
	add(newPrecomputed(ir.AlgorithmQuick, "Quick Sort", quickSort))
	add(newPrecomputed(ir.AlgorithmBinaryQuick, "Binary Quick Sort", binaryQuickSort))
	add(newPrecomputed(ir.AlgorithmRadixLSD, "Radix Sort LSD (base 10)", radixLSD(10)))
	add(newPrecomputed(ir.AlgorithmRadixMSD, "Radix Sort MSD (base 10)", radixMSD(10)))
	add(newPrecomputed(ir.AlgorithmRadixLSD2, "Radix Sort LSD (base 2)", radixLSD(2)))
	add(newPrecomputed(ir.AlgorithmRadixMSD2, "Radix Sort MSD (base 2)", radixMSD(2)))
	add(newPrecomputed(ir.AlgorithmRadixLSD16, "Radix Sort LSD (base 16)", radixLSD(16)))
	add(newPrecomputed(ir.AlgorithmRadixMSD16, "Radix Sort MSD (base 16)", radixMSD(16)))
	add(newPrecomputed(ir.AlgorithmCycle, "Cycle Sort", cycleSort))
	add(newBogoSort(cfg.rng))
	add(newExchangeBogoSort(cfg.rng))
	add(newStalinSort())

	return c
}

// Lookup returns the algorithm registered for t.
func (c *Catalog) Lookup(t ir.AlgorithmType) (Algorithm, bool) {
	if !t.Valid() {
		return nil, false
	}
	a := c.entries[t]
	return a, a != nil
}

// Descriptors lists every entry in catalog order.
func (c *Catalog) Descriptors() []ir.Descriptor {
	out := make([]ir.Descriptor, 0, len(c.entries))
	for _, a := range c.entries {
		if a != nil {
			out = append(out, a.Descriptor())
		}
	}
	return out
}

// ResetAll resets every entry's step progress.
func (c *Catalog) ResetAll() {
	for _, a := range c.entries {
		if a != nil {
			a.Reset()
		}
	}
}

// IsSorted reports whether values is in non-decreasing order.
func IsSorted(values []int) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}
