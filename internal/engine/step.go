package engine

import (
	"context"

	"github.com/roach88/sortstep/internal/ir"
)

// Step advances the phase machine by one tick and returns the event the
// tick produced, if any.
//
// Shuffle plays one Fisher-Yates swap per (skipped) tick; once exhausted it
// latches Shuffle, primes a calculation and moves to Sort. Sort replays the
// log (or asks a live strategy for its next primitive) until the next event
// is End, then latches Sort and moves to Traverse. Traverse reads each index
// once and finally latches Traverse and Done. Nothing is returned while a
// calculation is in flight or after Done.
func (e *Engine) Step() (ir.Event, bool) {
	if e.Processing() {
		return ir.Event{}, false
	}

	if e.phase == PhaseShuffle {
		if !e.IsDoneShuffle() {
			return e.StepShuffle()
		}
		e.shuffleIndex = 0
		e.phase = PhaseSort
		e.latches.Shuffle = true
		e.Calculate()
		if e.Processing() {
			return ir.Event{}, false
		}
	}

	if e.phase == PhaseSort {
		if !e.IsDoneSort() {
			return e.StepSort()
		}
		e.phase = PhaseTraverse
		e.latches.Sort = true
	}

	if e.phase == PhaseTraverse {
		if !e.IsDoneTraverse() {
			return e.StepTraverse()
		}
		e.traversalIndex = 0
		e.phase = PhaseDone
		e.latches.Traverse = true
		e.latches.Done = true
	}

	return ir.Event{}, false
}

// StepShuffle plays one swap of the shuffle animation. Every call counts
// toward the frame-skip; only every shuffleSkip-th call acts. Wrapping past
// the last index latches Shuffle and starts a new pass.
func (e *Engine) StepShuffle() (ir.Event, bool) {
	if e.Processing() || len(e.array) == 0 {
		return ir.Event{}, false
	}

	e.phase = PhaseShuffle
	e.traversalIndex = 0
	e.traverseFrames = 0
	e.eventIndex = 0

	frame := e.shuffleFrames
	e.shuffleFrames++
	if frame%e.shuffleSkip != 0 {
		return ir.Event{}, false
	}

	n := len(e.array)
	if e.shuffleIndex >= n {
		e.latches.Shuffle = true
		e.shuffleIndex = 0
	}

	i := e.shuffleIndex
	j := i + e.rng.IntN(n-i)
	ev := ir.Swap(i, j)
	e.array = ir.Apply(e.array, ev)
	e.shuffleIndex++

	return e.emit(ev)
}

// StepSort returns the next unfiltered sort event, applying every event it
// passes over to the array.
//
// For precompute algorithms, a call made after the log is exhausted primes
// a fresh calculation and latches Sort. For live algorithms the strategy
// is asked for one primitive; End latches Sort and is not returned.
func (e *Engine) StepSort() (ir.Event, bool) {
	if !e.algo.Descriptor().Precompute {
		e.enterSort()
		array, ev := e.algo.Step(e.array)
		e.array = array
		e.setCurrent(ev)
		if ev.IsEnd() {
			e.latches.Sort = true
			return ir.Event{}, false
		}
		if e.filter[ev.Type] {
			return ir.Event{}, false
		}
		return e.emit(ev)
	}

	if e.Processing() || len(e.events) == 0 {
		return ir.Event{}, false
	}

	if e.eventIndex >= len(e.events) {
		e.Calculate()
		e.latches.Sort = true
		return ir.Event{}, false
	}

	e.enterSort()
	for e.eventIndex < len(e.events) {
		ev := e.events[e.eventIndex]
		e.eventIndex++
		e.setCurrent(ev)
		e.array = ir.Apply(e.array, ev)
		if e.filter[ev.Type] {
			continue
		}
		return e.emit(ev)
	}
	return ir.Event{}, false
}

func (e *Engine) enterSort() {
	e.phase = PhaseSort
	e.traversalIndex = 0
	e.shuffleIndex = 0
	e.shuffleFrames = 0
	e.traverseFrames = 0
}

// StepTraverse reads the next index, subject to the traverse frame-skip.
// Wrapping past the last index latches Traverse and starts a new pass.
func (e *Engine) StepTraverse() (ir.Event, bool) {
	if e.Processing() || len(e.array) == 0 {
		return ir.Event{}, false
	}

	e.phase = PhaseTraverse
	e.eventIndex = 0
	e.shuffleIndex = 0
	e.shuffleFrames = 0

	frame := e.traverseFrames
	e.traverseFrames++
	if frame%e.traverseSkip != 0 {
		return ir.Event{}, false
	}

	if e.traversalIndex < 0 || e.traversalIndex >= len(e.array) {
		e.traversalIndex = 0
		e.latches.Traverse = true
	}

	i := e.traversalIndex
	e.traversalIndex++
	return e.emit(ir.Read(i, e.array[i]))
}

// IsDone reports whether the full cycle has completed.
func (e *Engine) IsDone() bool {
	return e.phase == PhaseDone
}

// IsDoneShuffle reports whether the shuffle cursor has passed the array.
func (e *Engine) IsDoneShuffle() bool {
	return e.shuffleIndex >= len(e.array)
}

// IsDoneSort reports whether the Sort phase has nothing left to return.
// It is false while a calculation is in flight.
func (e *Engine) IsDoneSort() bool {
	if e.Processing() {
		return false
	}
	if len(e.array) == 0 {
		return true
	}
	if e.algo.Descriptor().Precompute {
		if e.eventIndex < 0 || e.eventIndex >= len(e.events) {
			return true
		}
		return e.events[e.eventIndex].IsEnd()
	}
	return e.hasCurrent && e.current.IsEnd()
}

// IsDoneTraverse reports whether the traverse cursor has passed the array.
func (e *Engine) IsDoneTraverse() bool {
	return e.traversalIndex >= len(e.array)
}

// TriggerDone returns and clears the Done latch.
func (e *Engine) TriggerDone() bool {
	return take(&e.latches.Done)
}

// TriggerShuffle returns and clears the Shuffle latch.
func (e *Engine) TriggerShuffle() bool {
	return take(&e.latches.Shuffle)
}

// TriggerSort returns and clears the Sort latch.
func (e *Engine) TriggerSort() bool {
	return take(&e.latches.Sort)
}

// TriggerTraverse returns and clears the Traverse latch.
func (e *Engine) TriggerTraverse() bool {
	return take(&e.latches.Traverse)
}

func take(flag *bool) bool {
	v := *flag
	*flag = false
	return v
}

func (e *Engine) setCurrent(ev ir.Event) {
	e.current = ev
	e.hasCurrent = true
}

// emit stamps ev, records it as current and notifies the observer and
// metrics. Every event a stepping operation returns passes through here.
func (e *Engine) emit(ev ir.Event) (ir.Event, bool) {
	e.setCurrent(ev)
	seq := e.clock.Next()
	e.metrics.EventStepped(context.Background(), e.phase.String(), ev.Type.String())
	if e.observer != nil {
		e.observer(Played{Seq: seq, Phase: e.phase, Event: ev})
	}
	return ev, true
}
