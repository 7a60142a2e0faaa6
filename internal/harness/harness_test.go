package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceStrings(r *Result) []string {
	out := make([]string, len(r.Trace))
	for i, te := range r.Trace {
		out[i] = te.Event.String()
	}
	return out
}

func TestRun_BubbleTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "bubble_trace",
		Description: "reversed triple",
		Algorithm:   "bubble",
		Input:       InputSpec{Values: []int{2, 1, 0}},
		Assertions:  []Assertion{{Type: AssertFinalSorted}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{
		"compare 0 1", "swap 0 1",
		"compare 1 2", "swap 1 2",
		"compare 0 1", "swap 0 1",
		"end",
	}, traceStrings(result))
	assert.Equal(t, []int{0, 1, 2}, result.Final)
	assert.Equal(t, []string{"sort"}, result.Phases)
	assert.Equal(t, 1, result.Triggers[LatchSort])

	for i, te := range result.Trace {
		assert.Equal(t, int64(i+1), te.Seq)
	}
}

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_FailedAssertionsReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_expectations",
		Description: "assertions that cannot hold",
		Algorithm:   "insertion",
		Input:       InputSpec{Values: []int{1, 0}},
		Assertions: []Assertion{
			{Type: AssertFinalArray, Values: []int{1, 0}},
			{Type: AssertTraceCount, Event: "set", Count: 9},
			{Type: AssertFinalSorted},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[1], "assertions[1]")
}

func TestRun_InvalidScenario(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Description: "x", Algorithm: "timsort"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestRun_CycleDeterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "cycle_merge",
		Description: "seeded cycle",
		Algorithm:   "merge",
		Input:       InputSpec{Kind: InputSorted, Size: 10},
		Mode:        ModeCycle,
		Seed:        11,
		Assertions: []Assertion{
			{Type: AssertFinalSorted},
			{Type: AssertPhaseOrder, Phases: []string{"shuffle", "sort", "traverse"}},
			{Type: AssertTriggerCount, Latch: LatchDone, Count: 1},
		},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, first.Pass, first.Errors)

	second, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, traceStrings(first), traceStrings(second))

	traverse := 0
	for _, te := range first.Trace {
		if te.Phase == "traverse" {
			assert.Equal(t, "read", te.Event.Type.String())
			traverse++
		}
	}
	assert.Equal(t, 10, traverse)
}

func TestRun_TraverseSkip(t *testing.T) {
	scenario := &Scenario{
		Name:         "traverse_skip",
		Description:  "every other traverse tick reads",
		Algorithm:    "bubble",
		Input:        InputSpec{Kind: InputSorted, Size: 6},
		Mode:         ModeCycle,
		TraverseSkip: 2,
		Assertions:   []Assertion{{Type: AssertFinalSorted}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	var reads []string
	for _, te := range result.Trace {
		if te.Phase == "traverse" {
			reads = append(reads, te.Event.String())
		}
	}
	assert.Equal(t, []string{"read 0 0", "read 1 1", "read 2 2", "read 3 3", "read 4 4", "read 5 5"}, reads)
}

func TestRun_MaxSteps(t *testing.T) {
	scenario := &Scenario{
		Name:        "bogo_bounded",
		Description: "bogo sort cannot finish in five steps",
		Algorithm:   "bogo",
		Input:       InputSpec{Kind: InputReversed, Size: 12},
		MaxSteps:    5,
		Assertions:  []Assertion{{Type: AssertFinalSorted}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish within 5 steps")
}

func TestRunContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, &Scenario{
		Name:        "canceled",
		Description: "never runs",
		Algorithm:   "bubble",
		Input:       InputSpec{Kind: InputReversed, Size: 50},
		Assertions:  []Assertion{{Type: AssertFinalSorted}},
	})
	require.ErrorIs(t, err, context.Canceled)
}
