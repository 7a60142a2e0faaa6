package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", tempDB(t))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No runs found")
}

func TestReplayVerifiesRuns(t *testing.T) {
	db := tempDB(t)
	first := seedRun(t, db, []int{5, 3, 9, 1, 1})
	second := seedRun(t, db, []int{2, 0, 1})

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	var result ReplayResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.AllOK)
	require.Equal(t, 2, result.TotalRuns)

	assert.Equal(t, first.ID, result.Runs[0].RunID)
	assert.Equal(t, second.ID, result.Runs[1].RunID)
	for _, r := range result.Runs {
		assert.True(t, r.OutputMatches)
		assert.True(t, r.LogIntact)
		assert.True(t, r.Recomputed)
		assert.True(t, r.Deterministic)
		assert.Equal(t, "heap", r.Algorithm)
	}
}

func TestReplaySingleRunText(t *testing.T) {
	db := tempDB(t)
	run := seedRun(t, db, []int{4, 2, 3})

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", db, "--run", run.ID, "--no-recalc")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Replay Summary: 1 run(s)")
	assert.Contains(t, out.String(), run.ID)
	assert.Contains(t, out.String(), "All runs verified")
}

func TestReplayUnknownRun(t *testing.T) {
	_, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", tempDB(t), "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found")
}

func TestReplayDetectsMismatch(t *testing.T) {
	db := tempDB(t)
	ctx := context.Background()

	st, err := store.Open(db)
	require.NoError(t, err)
	a, _ := algorithm.NewCatalog().Lookup(ir.AlgorithmBubble)
	input := []int{1, 0}
	log, err := a.Calculate(ctx, input)
	require.NoError(t, err)
	run, err := store.NewRun(ir.AlgorithmBubble, input, log)
	require.NoError(t, err)
	run.Output = []int{1, 0}
	_, err = st.WriteRun(ctx, run, log)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ReplayResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_REPLAY", resp.Error.Code)
	assert.False(t, result.AllOK)
	require.Len(t, result.Runs, 1)
	assert.False(t, result.Runs[0].OutputMatches)
	assert.True(t, result.Runs[0].Deterministic)
}

func TestReplayAlgorithmFilter(t *testing.T) {
	db := tempDB(t)
	seedRun(t, db, []int{3, 1, 2})

	st, err := store.Open(db)
	require.NoError(t, err)
	a, _ := algorithm.NewCatalog().Lookup(ir.AlgorithmBubble)
	input := []int{2, 1, 0}
	log, err := a.Calculate(context.Background(), input)
	require.NoError(t, err)
	run, err := store.NewRun(ir.AlgorithmBubble, input, log)
	require.NoError(t, err)
	bubble, err := st.WriteRun(context.Background(), run, log)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", db, "--algorithm", "bubble")
	require.NoError(t, err)

	var result ReplayResult
	decodeData(t, out, &result)
	require.Equal(t, 1, result.TotalRuns)
	assert.Equal(t, bubble.ID, result.Runs[0].RunID)
	assert.Equal(t, "bubble", result.Runs[0].Algorithm)
}

func TestReplayFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown algorithm", []string{"--algorithm", "nope"}, "invalid algorithm"},
		{"run and algorithm", []string{"--run", "x", "--algorithm", "heap"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", tempDB(t)}, tt.args...)
			_, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
