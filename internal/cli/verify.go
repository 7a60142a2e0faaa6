package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
	"github.com/roach88/sortstep/internal/testutil"
)

// Input shapes verified by default.
var defaultVerifyKinds = []string{"sorted", "reversed", "random"}

var defaultVerifySizes = []int{0, 1, 2, 7, 32, 100}

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Algorithms []string
	Sizes      []int
	Kinds      []string
	Seed       uint64
	Database   string
}

// VerifyCase is the outcome of one algorithm over one input.
type VerifyCase struct {
	Algorithm string   `json:"algorithm"`
	Kind      string   `json:"kind"`
	Size      int      `json:"size"`
	Events    int      `json:"events"`
	LogHash   string   `json:"log_hash"`
	Pass      bool     `json:"pass"`
	Errors    []string `json:"errors,omitempty"`
	RunID     string   `json:"run_id,omitempty"`
}

// VerifyResult holds every verified case.
type VerifyResult struct {
	Cases  []VerifyCase `json:"cases"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Total  int          `json:"total"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every precompute algorithm against generated inputs",
		Long: `Calculate the log of each precompute algorithm over sorted, reversed and
random inputs of several sizes, replay it onto the input and check that:

  - the replayed array is sorted
  - it is a permutation of the input
  - the log ends with exactly one End event

With --db every calculated log is recorded as a run.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (unknown algorithm, bad size, etc.)

Examples:
  sortstep verify
  sortstep verify --algorithm heap,radix_msd_16 --sizes 0,5,1000
  sortstep verify --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Algorithms, "algorithm", "a", nil, "algorithm tags to verify (default all precompute)")
	cmd.Flags().IntSliceVar(&opts.Sizes, "sizes", defaultVerifySizes, "input sizes")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kinds", defaultVerifyKinds, "input shapes (sorted,reversed,random,zeros)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "seed for random inputs")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record every calculated log in this database")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	catalog := algorithm.NewCatalog()
	algos, err := verifyTargets(catalog, opts.Algorithms)
	if err != nil {
		return err
	}
	for _, n := range opts.Sizes {
		if n < 0 || n > 1000 {
			return NewExitError(ExitCommandError, fmt.Sprintf("size %d out of range [0, 1000]", n))
		}
	}
	for _, kind := range opts.Kinds {
		if _, err := verifyInput(kind, 0, 0); err != nil {
			return WrapExitError(ExitCommandError, "invalid kind", err)
		}
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = openStore(opts.Database)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	var result VerifyResult
	for _, a := range algos {
		for _, kind := range opts.Kinds {
			for _, n := range opts.Sizes {
				input, _ := verifyInput(kind, n, opts.Seed)
				vc, err := verifyCase(ctx, st, a, kind, input)
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("%s on %s/%d", a.Descriptor().Type, kind, n), err)
				}
				f.VerboseLog("%s %s/%d: %d events", vc.Algorithm, kind, n, vc.Events)

				result.Cases = append(result.Cases, vc)
				if vc.Pass {
					result.Passed++
				} else {
					result.Failed++
				}
			}
		}
	}
	result.Total = len(result.Cases)

	var failure *CLIError
	if result.Failed > 0 {
		failure = &CLIError{
			Code:    "E_VERIFY",
			Message: fmt.Sprintf("%d case(s) failed", result.Failed),
		}
	}
	if f.Format == "json" {
		return f.Result(result, failure)
	}
	return outputVerifyText(f, result, failure)
}

// verifyTargets resolves tags to precompute algorithms, or every precompute
// algorithm when tags is empty.
func verifyTargets(catalog *algorithm.Catalog, tags []string) ([]algorithm.Algorithm, error) {
	var out []algorithm.Algorithm
	if len(tags) == 0 {
		for _, d := range catalog.Descriptors() {
			if !d.Precompute {
				continue
			}
			a, _ := catalog.Lookup(d.Type)
			out = append(out, a)
		}
		return out, nil
	}

	for _, tag := range tags {
		t, err := ir.ParseAlgorithmType(tag)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid algorithm", err)
		}
		a, ok := catalog.Lookup(t)
		if !ok || !a.Descriptor().Precompute {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("algorithm %s has no precomputed log", tag))
		}
		out = append(out, a)
	}
	return out, nil
}

func verifyInput(kind string, n int, seed uint64) ([]int, error) {
	switch kind {
	case "sorted":
		return testutil.Sorted(n), nil
	case "reversed":
		return testutil.Reversed(n), nil
	case "zeros":
		return testutil.Zeros(n), nil
	case "random":
		return testutil.Random(testutil.NewRand(seed+uint64(n)), n), nil
	default:
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
}

func verifyCase(ctx context.Context, st *store.Store, a algorithm.Algorithm, kind string, input []int) (VerifyCase, error) {
	desc := a.Descriptor()
	log, err := a.Calculate(ctx, input)
	if err != nil {
		return VerifyCase{}, err
	}

	vc := VerifyCase{
		Algorithm: desc.Type.String(),
		Kind:      kind,
		Size:      len(input),
		Events:    len(log),
	}
	vc.LogHash, err = ir.LogHash(log)
	if err != nil {
		return VerifyCase{}, err
	}

	out := ir.Replay(input, log)
	if !algorithm.IsSorted(out) {
		vc.Errors = append(vc.Errors, "replayed array is not sorted")
	}
	if !testutil.SameMultiset(input, out) {
		vc.Errors = append(vc.Errors, "replayed array is not a permutation of the input")
	}
	ends := ir.Count(log)[ir.EventEnd]
	if ends != 1 || len(log) == 0 || !log[len(log)-1].IsEnd() {
		vc.Errors = append(vc.Errors, fmt.Sprintf("log must end with exactly one End, has %d", ends))
	}
	vc.Pass = len(vc.Errors) == 0

	if st != nil {
		run, err := store.NewRun(desc.Type, input, log)
		if err != nil {
			return VerifyCase{}, err
		}
		run, err = st.WriteRun(ctx, run, log)
		if err != nil {
			return VerifyCase{}, err
		}
		vc.RunID = run.ID
	}
	return vc, nil
}

func outputVerifyText(f *OutputFormatter, result VerifyResult, failure *CLIError) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(f.Writer)
	tbl.SetStyle(table.StyleLight)

	if f.Verbose {
		tbl.AppendHeader(table.Row{"", "Algorithm", "Input", "Size", "Events"})
		for _, vc := range result.Cases {
			tbl.AppendRow(table.Row{f.Mark(vc.Pass), vc.Algorithm, vc.Kind, vc.Size, humanize.Comma(int64(vc.Events))})
		}
	} else {
		tbl.AppendHeader(table.Row{"", "Algorithm", "Cases", "Events"})
		for _, row := range summarizeByAlgorithm(result.Cases) {
			tbl.AppendRow(table.Row{f.Mark(row.pass), row.algorithm, row.cases, humanize.Comma(row.events)})
		}
	}
	tbl.Render()

	for _, vc := range result.Cases {
		for _, e := range vc.Errors {
			fmt.Fprintf(f.Writer, "%s %s/%d: %s\n", vc.Algorithm, vc.Kind, vc.Size, e)
		}
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Verify Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	fmt.Fprintf(f.Writer, "%s All cases passed\n", f.Mark(true))
	return nil
}

type algorithmSummary struct {
	algorithm string
	cases     int
	events    int64
	pass      bool
}

// summarizeByAlgorithm folds cases into one row per algorithm, in first-seen
// order.
func summarizeByAlgorithm(cases []VerifyCase) []algorithmSummary {
	var rows []algorithmSummary
	index := make(map[string]int)
	for _, vc := range cases {
		i, ok := index[vc.Algorithm]
		if !ok {
			i = len(rows)
			index[vc.Algorithm] = i
			rows = append(rows, algorithmSummary{algorithm: vc.Algorithm, pass: true})
		}
		rows[i].cases++
		rows[i].events += int64(vc.Events)
		rows[i].pass = rows[i].pass && vc.Pass
	}
	return rows
}
