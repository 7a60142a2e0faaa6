package ir

// Apply performs the array side effect of ev and returns the (possibly
// shortened) array. Indices outside the array are ignored, so a log recorded
// against a larger array degrades to a no-op instead of panicking.
//
// Compare, Read, End and None have no side effect.
func Apply(array []int, ev Event) []int {
	n := len(array)
	inRange := func(i int) bool { return i >= 0 && i < n }

	switch ev.Type {
	case EventSwap:
		if inRange(ev.ValueA) && inRange(ev.ValueB) {
			array[ev.ValueA], array[ev.ValueB] = array[ev.ValueB], array[ev.ValueA]
		}
	case EventMove:
		if inRange(ev.ValueA) && inRange(ev.ValueB) {
			array[ev.ValueA] = array[ev.ValueB]
		}
	case EventSet:
		if inRange(ev.ValueA) {
			array[ev.ValueA] = ev.ValueB
		}
	case EventRemove:
		if inRange(ev.ValueA) {
			array = append(array[:ev.ValueA], array[ev.ValueA+1:]...)
		}
	}
	return array
}

// Replay applies every event of log to a copy of input and returns the result.
// Events after the first End are not applied.
func Replay(input []int, log []Event) []int {
	out := append([]int(nil), input...)
	for _, ev := range log {
		if ev.IsEnd() {
			break
		}
		out = Apply(out, ev)
	}
	return out
}

// Count tallies log entries by event type.
func Count(log []Event) [EventTypeCount]int {
	var counts [EventTypeCount]int
	for _, ev := range log {
		if ev.Type.Valid() {
			counts[ev.Type]++
		}
	}
	return counts
}
