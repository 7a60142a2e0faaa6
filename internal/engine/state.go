package engine

import (
	"github.com/roach88/sortstep/internal/ir"
)

// State is the serializable snapshot of an Engine.
//
// It captures everything needed to resume playback mid-cycle: the array,
// every cursor and frame counter, the selected algorithm, phase, latches,
// filter mask, renderer settings, the clock position and the adopted log.
// Live-step strategy progress is not captured; it restarts on Restore.
type State struct {
	Version        string           `json:"version"`
	Algorithm      ir.AlgorithmType `json:"algorithm"`
	Array          []int            `json:"array"`
	ArraySize      int              `json:"array_size"`
	Phase          Phase            `json:"phase"`
	EventIndex     int              `json:"event_index"`
	ShuffleIndex   int              `json:"shuffle_index"`
	TraversalIndex int              `json:"traversal_index"`
	ShuffleSkip    int              `json:"shuffle_skip"`
	TraverseSkip   int              `json:"traverse_skip"`
	ShuffleFrames  int              `json:"shuffle_frames"`
	TraverseFrames int              `json:"traverse_frames"`
	Filter         []ir.EventType   `json:"filter"`
	Latches        Latches          `json:"latches"`
	Scale          ir.Scale         `json:"scale"`
	KeyOffset      int              `json:"key_offset"`
	KeyOutput      bool             `json:"key_output"`
	Seq            int64            `json:"seq"`
	Events         []ir.Event       `json:"events"`
}

// Snapshot captures the engine state. An in-flight calculation is not
// waited for; the snapshot holds the last adopted log.
func (e *Engine) Snapshot() State {
	e.poll()

	var filter []ir.EventType
	for t, on := range e.filter {
		if on {
			filter = append(filter, ir.EventType(t))
		}
	}

	return State{
		Version:        ir.LogVersion,
		Algorithm:      e.algo.Descriptor().Type,
		Array:          append([]int(nil), e.array...),
		ArraySize:      e.arraySize,
		Phase:          e.phase,
		EventIndex:     e.eventIndex,
		ShuffleIndex:   e.shuffleIndex,
		TraversalIndex: e.traversalIndex,
		ShuffleSkip:    e.shuffleSkip,
		TraverseSkip:   e.traverseSkip,
		ShuffleFrames:  e.shuffleFrames,
		TraverseFrames: e.traverseFrames,
		Filter:         filter,
		Latches:        e.latches,
		Scale:          e.scale.Clone(),
		KeyOffset:      e.keyOffset,
		KeyOutput:      e.keyOutput,
		Seq:            e.clock.Current(),
		Events:         append([]ir.Event(nil), e.events...),
	}
}

// Restore replaces the engine state with s. Any in-flight calculation is
// cancelled first. On validation failure the engine is left unchanged and a
// *StateError names the offending field.
//
// A precompute algorithm restored without a log gets a fresh calculation
// over the restored array.
func (e *Engine) Restore(s State) error {
	if err := validateState(s); err != nil {
		return err
	}
	alg, ok := e.catalog.Lookup(s.Algorithm)
	if !ok {
		return &StateError{Code: ErrCodeUnknownAlgorithm, Field: "algorithm", Message: "no such algorithm: " + s.Algorithm.String()}
	}

	e.StopCalculating()
	e.catalog.ResetAll()

	e.algo = alg
	e.array = append(make([]int, 0, len(s.Array)), s.Array...)
	e.arraySize = s.ArraySize
	e.phase = s.Phase
	e.events = append([]ir.Event(nil), s.Events...)
	e.eventIndex = s.EventIndex
	e.shuffleIndex = s.ShuffleIndex
	e.traversalIndex = s.TraversalIndex
	e.shuffleSkip = s.ShuffleSkip
	e.traverseSkip = s.TraverseSkip
	e.shuffleFrames = s.ShuffleFrames
	e.traverseFrames = s.TraverseFrames
	e.filter = [ir.EventTypeCount]bool{}
	for _, t := range s.Filter {
		e.filter[t] = true
	}
	e.latches = s.Latches
	e.scale = s.Scale.Clone()
	e.keyOffset = s.KeyOffset
	e.keyOutput = s.KeyOutput
	e.current = ir.Event{}
	e.hasCurrent = false
	e.clock.set(s.Seq)

	if alg.Descriptor().Precompute && len(e.events) == 0 && len(e.array) > 0 {
		e.Calculate()
	}

	e.logger.Debug("state restored",
		"algorithm", s.Algorithm.String(),
		"phase", s.Phase.String(),
		"size", len(s.Array),
		"seq", s.Seq,
	)
	return nil
}

func validateState(s State) error {
	n := len(s.Array)
	switch {
	case s.Version != ir.LogVersion:
		return invalidState("version", "unsupported version %q", s.Version)
	case !s.Algorithm.Valid():
		return &StateError{Code: ErrCodeUnknownAlgorithm, Field: "algorithm", Message: "no such algorithm: " + s.Algorithm.String()}
	case !s.Phase.Valid():
		return invalidState("phase", "unknown phase %d", int(s.Phase))
	case n > MaxArraySize:
		return invalidState("array", "length %d exceeds %d", n, MaxArraySize)
	case s.ArraySize < n || s.ArraySize > MaxArraySize:
		return invalidState("array_size", "%d out of range [%d, %d]", s.ArraySize, n, MaxArraySize)
	case s.EventIndex < 0 || s.EventIndex > len(s.Events):
		return invalidState("event_index", "%d out of range [0, %d]", s.EventIndex, len(s.Events))
	case s.ShuffleIndex < 0 || s.ShuffleIndex > n:
		return invalidState("shuffle_index", "%d out of range [0, %d]", s.ShuffleIndex, n)
	case s.TraversalIndex < 0 || s.TraversalIndex > n:
		return invalidState("traversal_index", "%d out of range [0, %d]", s.TraversalIndex, n)
	case s.ShuffleSkip < 1:
		return invalidState("shuffle_skip", "must be at least 1, got %d", s.ShuffleSkip)
	case s.TraverseSkip < 1:
		return invalidState("traverse_skip", "must be at least 1, got %d", s.TraverseSkip)
	case s.ShuffleFrames < 0 || s.TraverseFrames < 0:
		return invalidState("frames", "frame counters must not be negative")
	case s.Seq < 0:
		return invalidState("seq", "must not be negative, got %d", s.Seq)
	}
	for _, t := range s.Filter {
		if !t.Valid() {
			return invalidState("filter", "unknown event type %d", int(t))
		}
	}
	return nil
}
