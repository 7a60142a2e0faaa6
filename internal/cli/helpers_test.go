package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
)

// rawResponse is CLIResponse with the payload left undecoded.
type rawResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

// decodeData decodes a JSON response and its payload into v.
func decodeData(t *testing.T, buf *bytes.Buffer, v any) rawResponse {
	t.Helper()
	var resp rawResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	require.NoError(t, json.Unmarshal(resp.Data, v))
	return resp
}

// isolateConfig keeps config.Load from finding a stray .sortstep.yaml.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	return out, cmd.Execute()
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "runs.db")
}

// seedRun stores the heap sort run of input in the database at path.
func seedRun(t *testing.T, path string, input []int) store.Run {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	a, ok := algorithm.NewCatalog().Lookup(ir.AlgorithmHeap)
	require.True(t, ok)
	log, err := a.Calculate(ctx, input)
	require.NoError(t, err)

	run, err := store.NewRun(ir.AlgorithmHeap, input, log)
	require.NoError(t, err)
	stored, err := st.WriteRun(ctx, run, log)
	require.NoError(t, err)
	return stored
}
