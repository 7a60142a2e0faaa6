package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortstep/internal/store"
)

func newRun(format string) *RootOptions {
	return &RootOptions{Format: format}
}

func TestRun_SortPhaseText(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("text")),
		"--algorithm", "bubble", "--input", "2,1,0", "--phase", "sort")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "sort     compare 0 1")
	assert.Contains(t, text, "sort     swap 1 2")
	assert.Contains(t, text, "sort     end")
	assert.Contains(t, text, "✓ bubble (precompute): 3 values, 7 events, seq 7")
}

func TestRun_CycleJSON(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "insertion", "--size", "8", "--seed", "3")
	require.NoError(t, err)

	var summary RunSummary
	resp := decodeData(t, out, &summary)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "insertion", summary.Algorithm)
	assert.Equal(t, "precompute", summary.Mode)
	assert.True(t, summary.Finished)
	assert.True(t, summary.Sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, summary.Final)
	require.Len(t, summary.Trace, summary.Events)

	phases := map[string]int{}
	for i, p := range summary.Trace {
		assert.Equal(t, int64(i+1), p.Seq)
		phases[p.Phase]++
		assert.NotEqual(t, "end", p.Event.Type.String(), "End is never played in a full cycle")
	}
	assert.Equal(t, 8, phases["shuffle"])
	assert.Equal(t, 8, phases["traverse"])
	assert.Equal(t, "read 7 7", summary.Trace[len(summary.Trace)-1].Event.String())
}

func TestRun_Samples(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "bubble", "--samples", "0,0.5,1,2,-1", "--phase", "sort", "--quiet")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.Equal(t, 5, summary.Size)
	assert.True(t, summary.Sorted)
	// Samples clamp to [0,1] and scale by the sample count.
	assert.Equal(t, []int{0, 0, 2, 5, 5}, summary.Final)
}

func TestRun_QuietWithFilter(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "bubble", "--input", "3,2,1", "--phase", "sort", "--filter", "compare", "--quiet")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.Empty(t, summary.Trace)
	// 3 swaps and End; compares are applied silently.
	assert.Equal(t, 4, summary.Events)
	assert.Equal(t, []int{1, 2, 3}, summary.Final)
}

func TestRun_KeyOutput(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "bubble", "--input", "0,1", "--phase", "sort", "--key-output")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	require.Len(t, summary.Trace, 2)
	require.NotNil(t, summary.Trace[0].Key)
	assert.InDelta(t, 0.0, *summary.Trace[0].Key, 1e-9)
	assert.Nil(t, summary.Trace[1].Key)
}

func TestRun_LiveStrategy(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "stalin", "--input", "3,1,2,0", "--phase", "sort")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.Equal(t, "live", summary.Mode)
	assert.True(t, summary.Finished)
	assert.Equal(t, []int{3}, summary.Final)
	require.Len(t, summary.Trace, 3)
	for _, p := range summary.Trace {
		assert.Equal(t, "remove 1", p.Event.String())
	}
}

func TestRun_ConfigFile(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "sortstep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  algorithm: selection\n  size: 5\n  seed: 9\n"), 0o644))

	opts := &RootOptions{Format: "json", Config: path}
	out, err := execute(t, NewRunCommand(opts), "--quiet")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.Equal(t, "selection", summary.Algorithm)
	assert.Equal(t, 5, summary.Size)
	assert.True(t, summary.Finished)
	assert.True(t, summary.Sorted)
}

func TestRun_FlagsOverrideConfig(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "sortstep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  algorithm: selection\n  size: 5\n"), 0o644))

	opts := &RootOptions{Format: "json", Config: path}
	out, err := execute(t, NewRunCommand(opts), "--quiet", "--algorithm", "merge", "--size", "3")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.Equal(t, "merge", summary.Algorithm)
	assert.Equal(t, 3, summary.Size)
}

func TestRun_RecordsRun(t *testing.T) {
	isolateConfig(t)
	db := tempDB(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "heap", "--size", "16", "--seed", "5", "--quiet", "--db", db)
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	require.NotEmpty(t, summary.RunID)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, "heap", run.Algorithm.String())
	assert.Len(t, run.Input, 16)
	assert.Equal(t, summary.Final, run.Output)

	check, err := st.CheckRun(context.Background(), run.ID, nil)
	require.NoError(t, err)
	assert.True(t, check.OK())
}

func TestRun_SaveAndResume(t *testing.T) {
	isolateConfig(t)
	db := tempDB(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "bubble", "--size", "6", "--seed", "1", "--max-steps", "5", "--save", "demo", "--db", db, "--quiet")
	require.NoError(t, err)

	var first RunSummary
	decodeData(t, out, &first)
	assert.False(t, first.Finished)
	assert.Equal(t, "demo", first.Snapshot)
	assert.Equal(t, int64(5), first.Seq)
	assert.Empty(t, first.RunID, "unfinished playback records no run")

	out, err = execute(t, NewRunCommand(newRun("json")), "--resume", "demo", "--db", db)
	require.NoError(t, err)

	var resumed RunSummary
	decodeData(t, out, &resumed)
	assert.True(t, resumed.Finished)
	assert.True(t, resumed.Sorted)
	require.NotEmpty(t, resumed.Trace)
	assert.Equal(t, int64(6), resumed.Trace[0].Seq)
	assert.Equal(t, "shuffle", resumed.Trace[0].Phase)
	assert.NotEmpty(t, resumed.RunID)
}

func TestRun_Errors(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown algorithm", []string{"--algorithm", "timsort"}, "invalid settings"},
		{"size too large", []string{"--size", "5000"}, "invalid settings"},
		{"bad filter", []string{"--filter", "peek"}, "invalid settings"},
		{"bad phase", []string{"--phase", "traverse"}, "invalid phase"},
		{"save without db", []string{"--save", "x"}, "need a database"},
		{"input and samples", []string{"--input", "1,2", "--samples", "0.5"}, "mutually exclusive"},
		{"missing snapshot", []string{"--resume", "nope", "--db", tempDB(t)}, "snapshot not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewRunCommand(newRun("text")), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestRun_PacedWithMetrics(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, NewRunCommand(newRun("json")),
		"--algorithm", "quick", "--size", "3", "--rate", "2000", "--metrics-addr", "127.0.0.1:0", "--quiet")
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, out, &summary)
	assert.True(t, summary.Finished)
	assert.True(t, summary.Sorted)
}
