// Package engine implements the sortstep orchestrator.
//
// The Engine owns the integer array being sorted and drives it through a
// fixed cycle of phases, handing one event back per call:
//
//	Shuffle -> Sort -> Traverse -> Done
//
// Shuffle performs one Fisher-Yates swap per step. Sort plays back the
// precomputed log of the selected algorithm (or advances a live-step
// algorithm by one primitive). Traverse reads every element once in order.
//
// ARCHITECTURE:
//
// Caller goroutine:
// Every exported method is called from one goroutine, the caller's (a UI
// loop, a CLI, a test). All engine fields are owned by that goroutine.
//
// Worker goroutine:
// Calculate launches at most one background computation of the selected
// algorithm over a copy of the array. The worker writes only to its own
// handle; the caller adopts the finished log the next time it polls, after
// the worker has signalled completion. While a worker is in flight the
// stepping operations return no event.
//
// CRITICAL PATTERNS:
//
// Cancellation:
// StopCalculating cancels the worker's context and joins it. A cancelled
// run never replaces the engine's log, even if it was about to finish.
//
// Filtering:
// A filtered event type is still applied to the array; only its return to
// the caller is suppressed. The array after a full Sort phase is the same
// under every filter mask.
//
// Errors:
// The stepping surface never fails. Out-of-range indices are ignored or read
// as 0. Only Restore and SelectAlgorithm report invalid input.
package engine
