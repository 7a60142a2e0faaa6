package harness

import (
	"github.com/roach88/sortstep/internal/ir"
)

// TraceEvent is one event the engine returned during a scenario run.
type TraceEvent struct {
	Seq   int64    `json:"seq"`
	Phase string   `json:"phase"`
	Event ir.Event `json:"event"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every returned event in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine array after the run.
	Final []int `json:"final"`

	// Phases lists the phases seen in the trace, consecutive repeats folded.
	Phases []string `json:"phases"`

	// Triggers counts how often each latch read true during the run.
	Triggers map[string]int `json:"triggers"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		Final:    []int{},
		Phases:   []string{},
		Triggers: map[string]int{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record appends a played event and folds its phase into Phases.
func (r *Result) record(seq int64, phase string, ev ir.Event) {
	r.Trace = append(r.Trace, TraceEvent{Seq: seq, Phase: phase, Event: ev})
	if n := len(r.Phases); n == 0 || r.Phases[n-1] != phase {
		r.Phases = append(r.Phases, phase)
	}
}
