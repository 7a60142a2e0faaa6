package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
)

// Assertion validates the trace or final state of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type" json:"type"`

	// Event is the event type counted by trace_count.
	Event string `yaml:"event,omitempty" json:"event,omitempty"`

	// Count is the expected number for trace_count and trigger_count.
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Events are event patterns for trace_order and trace_prefix. A pattern
	// is either a full event ("swap 0 1") or a bare type ("swap").
	Events []string `yaml:"events,omitempty" json:"events,omitempty"`

	// Values is the expected array for final_array.
	Values []int `yaml:"values,omitempty" json:"values,omitempty"`

	// Phases is the expected phase sequence for phase_order.
	Phases []string `yaml:"phases,omitempty" json:"phases,omitempty"`

	// Latch names the latch counted by trigger_count.
	Latch string `yaml:"latch,omitempty" json:"latch,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalSorted  = "final_sorted"
	AssertFinalArray   = "final_array"
	AssertTraceCount   = "trace_count"
	AssertTraceOrder   = "trace_order"
	AssertTracePrefix  = "trace_prefix"
	AssertPhaseOrder   = "phase_order"
	AssertTriggerCount = "trigger_count"
)

// Latch names used by trigger_count and Result.Triggers.
const (
	LatchShuffle  = "shuffle"
	LatchSort     = "sort"
	LatchTraverse = "traverse"
	LatchDone     = "done"
)

var latchNames = []string{LatchShuffle, LatchSort, LatchTraverse, LatchDone}

// maxTraceLines caps the trace dump in an AssertionError.
const maxTraceLines = 40

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace (%d events):\n", len(e.Trace))
		for i, te := range e.Trace {
			if i == maxTraceLines {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Trace)-maxTraceLines)
				break
			}
			fmt.Fprintf(&buf, "  [%d] %s %s\n", te.Seq, te.Phase, te.Event)
		}
	}

	return buf.String()
}

// matchEvent reports whether ev matches pattern: either its full String()
// form or its bare type name.
func matchEvent(pattern string, ev ir.Event) bool {
	pattern = strings.Join(strings.Fields(pattern), " ")
	return pattern == ev.String() || pattern == ev.Type.String()
}

func assertFinalSorted(result *Result) error {
	if algorithm.IsSorted(result.Final) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalSorted,
		Expected: "final array in non-decreasing order",
		Actual:   fmt.Sprint(result.Final),
		Trace:    result.Trace,
	}
}

func assertFinalArray(result *Result, a Assertion) error {
	if slices.Equal(result.Final, a.Values) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalArray,
		Expected: fmt.Sprint(a.Values),
		Actual:   fmt.Sprint(result.Final),
		Trace:    result.Trace,
	}
}

func assertTraceCount(result *Result, a Assertion) error {
	count := 0
	for _, te := range result.Trace {
		if te.Event.Type.String() == a.Event {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Event),
		Actual:   fmt.Sprintf("%d %s events", count, a.Event),
		Trace:    result.Trace,
	}
}

// assertTraceOrder checks that the patterns match events in order.
// Intervening events are allowed.
func assertTraceOrder(result *Result, a Assertion) error {
	next := 0
	for _, te := range result.Trace {
		if next < len(a.Events) && matchEvent(a.Events[next], te.Event) {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("events in order: %v", a.Events),
		Actual:   fmt.Sprintf("no match for %q after %d matched", a.Events[next], next),
		Trace:    result.Trace,
	}
}

// assertTracePrefix checks that the trace starts with exactly the patterns.
func assertTracePrefix(result *Result, a Assertion) error {
	for i, pattern := range a.Events {
		if i >= len(result.Trace) {
			return &AssertionError{
				Type:     AssertTracePrefix,
				Expected: fmt.Sprintf("at least %d events", len(a.Events)),
				Actual:   fmt.Sprintf("%d events", len(result.Trace)),
				Trace:    result.Trace,
			}
		}
		if !matchEvent(pattern, result.Trace[i].Event) {
			return &AssertionError{
				Type:     AssertTracePrefix,
				Expected: fmt.Sprintf("event %d to be %q", i, pattern),
				Actual:   result.Trace[i].Event.String(),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertPhaseOrder(result *Result, a Assertion) error {
	if slices.Equal(result.Phases, a.Phases) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPhaseOrder,
		Expected: fmt.Sprint(a.Phases),
		Actual:   fmt.Sprint(result.Phases),
	}
}

func assertTriggerCount(result *Result, a Assertion) error {
	if got := result.Triggers[a.Latch]; got != a.Count {
		return &AssertionError{
			Type:     AssertTriggerCount,
			Expected: fmt.Sprintf("%s latch read %d times", a.Latch, a.Count),
			Actual:   fmt.Sprintf("%d times", got),
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalSorted:
			err = assertFinalSorted(result)
		case AssertFinalArray:
			err = assertFinalArray(result, a)
		case AssertTraceCount:
			err = assertTraceCount(result, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result, a)
		case AssertTracePrefix:
			err = assertTracePrefix(result, a)
		case AssertPhaseOrder:
			err = assertPhaseOrder(result, a)
		case AssertTriggerCount:
			err = assertTriggerCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
