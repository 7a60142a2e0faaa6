package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortstep/internal/store"
)

func TestVerify_SelectedAlgorithms(t *testing.T) {
	out, err := execute(t, NewVerifyCommand(&RootOptions{Format: "json"}),
		"--algorithm", "bubble,heap", "--sizes", "0,5", "--kinds", "sorted,random")
	require.NoError(t, err)

	var result VerifyResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, result.Total)
	assert.Equal(t, 8, result.Passed)
	for _, vc := range result.Cases {
		assert.True(t, vc.Pass, "%s %s/%d: %v", vc.Algorithm, vc.Kind, vc.Size, vc.Errors)
		assert.NotEmpty(t, vc.LogHash)
		assert.GreaterOrEqual(t, vc.Events, 1)
	}
}

func TestVerify_AllPrecomputeText(t *testing.T) {
	out, err := execute(t, NewVerifyCommand(&RootOptions{Format: "text"}), "--sizes", "0,1,9", "--kinds", "reversed,zeros")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "radix_lsd")
	assert.NotContains(t, text, "stalin")
	assert.Contains(t, text, "All cases passed")
}

func TestVerify_RecordsRuns(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, NewVerifyCommand(&RootOptions{Format: "json"}),
		"--algorithm", "merge", "--sizes", "3,4", "--kinds", "reversed", "--db", db)
	require.NoError(t, err)

	var result VerifyResult
	decodeData(t, out, &result)
	require.Len(t, result.Cases, 2)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, result.Cases[0].RunID, runs[0].ID)
	assert.Equal(t, result.Cases[0].LogHash, runs[0].LogHash)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"live algorithm", []string{"--algorithm", "stalin"}, "has no precomputed log"},
		{"unknown algorithm", []string{"--algorithm", "timsort"}, "invalid algorithm"},
		{"bad size", []string{"--sizes", "1001"}, "out of range"},
		{"bad kind", []string{"--kinds", "sawtooth"}, "invalid kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewVerifyCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
