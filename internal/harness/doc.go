// Package harness runs conformance scenarios against the real engine.
//
// A scenario names an algorithm, an input (explicit values or a generated
// kind), optional filters and skips, a drive mode and a list of assertions:
//
//	name: bubble_small
//	description: bubble sort of a reversed triple
//	algorithm: bubble
//	input: [2, 1, 0]
//	mode: sort
//	assertions:
//	  - type: final_sorted
//	  - type: trace_prefix
//	    events: ["compare 0 1", "swap 0 1"]
//
// Scenarios are YAML (.yaml, .yml) or CUE (.cue, with the same fields under
// a top-level "scenario" struct).
//
// # Execution
//
// Run builds a fresh Engine with seeded random sources, loads the input and
// drives it: mode "sort" steps the Sort phase until it is exhausted, mode
// "cycle" steps the full Shuffle -> Sort -> Traverse cycle until Done. Every
// event the engine returns is captured through its Observer, so the trace is
// exactly what a caller of the engine would see.
//
// # Determinism
//
// The engine clock starts at zero and both random sources derive from the
// scenario seed, so the trace of a scenario is byte-stable and can be
// compared against a golden file with RunWithGolden.
package harness
