package ir

import (
	"fmt"
	"strings"
)

// EventType is the kind of primitive operation an Event records.
//
// The numeric values are stable: they index the engine's filter mask and are
// persisted in the store.
type EventType int

const (
	EventNone EventType = iota
	EventCompare
	EventSwap
	EventMove
	EventSet
	EventRead
	EventRemove
	EventEnd
)

// EventTypeCount is the number of distinct event types, including EventNone.
const EventTypeCount = 8

var eventTypeNames = [EventTypeCount]string{
	"none", "compare", "swap", "move", "set", "read", "remove", "end",
}

// String returns the lowercase name of the event type.
func (t EventType) String() string {
	if t < 0 || int(t) >= EventTypeCount {
		return fmt.Sprintf("event_type(%d)", int(t))
	}
	return eventTypeNames[t]
}

// Valid reports whether t is one of the declared event types.
func (t EventType) Valid() bool {
	return t >= 0 && int(t) < EventTypeCount
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid event type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EventType) UnmarshalText(text []byte) error {
	parsed, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEventType parses an event type name. Matching is case-insensitive.
func ParseEventType(s string) (EventType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), nil
		}
	}
	return EventNone, fmt.Errorf("unknown event type %q", s)
}

// ElementKind describes how an Event touched one array element.
type ElementKind int

const (
	ElementNone ElementKind = iota
	ElementRead
	ElementWrite
	ElementRemove
)

var elementKindNames = [...]string{"none", "read", "write", "remove"}

// String returns the lowercase name of the element kind.
func (k ElementKind) String() string {
	if k < 0 || int(k) >= len(elementKindNames) {
		return fmt.Sprintf("element_kind(%d)", int(k))
	}
	return elementKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k ElementKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(elementKindNames) {
		return nil, fmt.Errorf("invalid element kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ElementKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range elementKindNames {
		if n == name {
			*k = ElementKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown element kind %q", string(text))
}

// ElementEvent records one element touched by an Event.
type ElementEvent struct {
	Kind  ElementKind `json:"kind" yaml:"kind"`
	Index int         `json:"index" yaml:"index"`
}

// Event is one entry of an algorithm's log.
//
// Payload meaning by type:
//   - Compare, Swap, Move: ValueA and ValueB are the two indices
//   - Set: ValueA is the index, ValueB the written value
//   - Read: ValueA is the index, ValueB the value read
//   - Remove: ValueA is the removed index
//   - End: no elements, zero payload
type Event struct {
	Type     EventType      `json:"type" yaml:"type"`
	Elements []ElementEvent `json:"elements" yaml:"elements"`
	ValueA   int            `json:"value_a" yaml:"value_a"`
	ValueB   int            `json:"value_b" yaml:"value_b"`
}

// Compare builds the event for "is array[i] greater than array[j]".
func Compare(i, j int) Event {
	return Event{
		Type:     EventCompare,
		Elements: []ElementEvent{{ElementRead, i}, {ElementRead, j}},
		ValueA:   i,
		ValueB:   j,
	}
}

// Swap builds the event for exchanging array[i] and array[j].
func Swap(i, j int) Event {
	return Event{
		Type:     EventSwap,
		Elements: []ElementEvent{{ElementWrite, i}, {ElementWrite, j}},
		ValueA:   i,
		ValueB:   j,
	}
}

// Move builds the event for the one-directional copy array[i] = array[j].
func Move(i, j int) Event {
	return Event{
		Type:     EventMove,
		Elements: []ElementEvent{{ElementWrite, i}, {ElementRead, j}},
		ValueA:   i,
		ValueB:   j,
	}
}

// Set builds the event for array[i] = v.
func Set(i, v int) Event {
	return Event{
		Type:     EventSet,
		Elements: []ElementEvent{{ElementWrite, i}},
		ValueA:   i,
		ValueB:   v,
	}
}

// Read builds the event for observing array[i], which held v.
func Read(i, v int) Event {
	return Event{
		Type:     EventRead,
		Elements: []ElementEvent{{ElementRead, i}},
		ValueA:   i,
		ValueB:   v,
	}
}

// Remove builds the event for erasing the element at index i.
func Remove(i int) Event {
	return Event{
		Type:     EventRemove,
		Elements: []ElementEvent{{ElementRemove, i}},
		ValueA:   i,
	}
}

// End builds the terminal event of a log.
func End() Event {
	return Event{Type: EventEnd, Elements: []ElementEvent{}}
}

// IsEnd reports whether e terminates a log.
func (e Event) IsEnd() bool {
	return e.Type == EventEnd
}

// Mutates reports whether applying e changes the array.
func (e Event) Mutates() bool {
	switch e.Type {
	case EventSwap, EventMove, EventSet, EventRemove:
		return true
	}
	return false
}

// String renders e in the compact trace form used by scenarios and the CLI,
// e.g. "compare 0 1", "set 3 7", "remove 4", "end".
func (e Event) String() string {
	switch e.Type {
	case EventEnd, EventNone:
		return e.Type.String()
	case EventRemove:
		return fmt.Sprintf("%s %d", e.Type, e.ValueA)
	default:
		return fmt.Sprintf("%s %d %d", e.Type, e.ValueA, e.ValueB)
	}
}
