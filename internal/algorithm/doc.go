// Package algorithm implements the sorting-strategy catalog.
//
// Every strategy expresses its work through six primitives (compare, swap,
// move, set, read, end). Each primitive call appends exactly one ir.Event to
// the run's log, so the log is a complete, replayable description of what the
// algorithm did.
//
// Two execution modes exist:
//
//   - Precompute: Calculate runs the whole algorithm on a private copy of the
//     input and returns the finished log. The engine runs this on a worker
//     goroutine and plays the log back one event at a time.
//   - Live step: Step mutates the caller's array by one primitive and returns
//     the event describing it. Bogo, exchange bogo and stalin sort work this
//     way because their run length is unbounded or shrinks the array.
//
// CANCELLATION: Calculate observes its context at the head of every loop and
// after every recursive call, so a cancelled run stops within a bounded number
// of element accesses. A cancelled run returns ctx.Err() and no log.
package algorithm
