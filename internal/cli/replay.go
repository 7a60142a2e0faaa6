package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID      string // optional - specific run only
	Algorithms []string
	NoRecalc   bool
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Seq           int64  `json:"seq"`
	Algorithm     string `json:"algorithm"`
	Size          int    `json:"size"`
	Events        int    `json:"events"`
	OutputMatches bool   `json:"output_matches"`
	LogIntact     bool   `json:"log_intact"`
	Recomputed    bool   `json:"recomputed"`
	Deterministic bool   `json:"deterministic"`
	OK            bool   `json:"ok"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs      []ReplayRunResult `json:"runs"`
	TotalRuns int               `json:"total_runs"`
	AllOK     bool              `json:"all_ok"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored runs and verify determinism",
		Long: `Re-read stored runs, replay each event log onto its stored input and
verify the result.

For every run this checks that:
  - the replayed array equals the stored output
  - the stored events still hash to the stored log hash
  - recalculating the algorithm on the stored input yields the same log
    hash (skipped with --no-recalc)

Exit codes:
  0 - All runs verified
  1 - Verification failed (mismatch detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  sortstep replay --db ./runs.db
  sortstep replay --db ./runs.db --run 0190f5c2-...
  sortstep replay --db ./runs.db --algorithm heap,quick_lr
  sortstep replay --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")
	cmd.Flags().StringSliceVarP(&opts.Algorithms, "algorithm", "a", nil, "replay runs of these algorithm tags only")
	cmd.Flags().BoolVar(&opts.NoRecalc, "no-recalc", false, "skip recalculating logs")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.RunID != "" && len(opts.Algorithms) > 0 {
		return NewExitError(ExitCommandError, "--run and --algorithm are mutually exclusive")
	}
	algos := make([]ir.AlgorithmType, 0, len(opts.Algorithms))
	for _, tag := range opts.Algorithms {
		t, err := ir.ParseAlgorithmType(tag)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid algorithm", err)
		}
		algos = append(algos, t)
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var calc store.Calculator
	if !opts.NoRecalc {
		calc = catalogCalculator{catalog: algorithm.NewCatalog()}
	}

	var checks []store.RunCheck
	if opts.RunID != "" {
		check, err := st.CheckRun(ctx, opts.RunID, calc)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", opts.RunID), err)
		}
		checks = []store.RunCheck{check}
	} else {
		checks, err = st.CheckAllRuns(ctx, calc, algos...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay runs", err)
		}
	}

	result := ReplayResult{
		Runs:      make([]ReplayRunResult, 0, len(checks)),
		TotalRuns: len(checks),
		AllOK:     true,
	}
	for _, c := range checks {
		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:         c.Run.ID,
			Seq:           c.Run.Seq,
			Algorithm:     c.Run.Algorithm.String(),
			Size:          len(c.Run.Input),
			Events:        c.Run.EventCount,
			OutputMatches: c.OutputMatches,
			LogIntact:     c.LogIntact,
			Recomputed:    c.Recomputed,
			Deterministic: c.Deterministic,
			OK:            c.OK(),
		})
		if !c.OK() {
			result.AllOK = false
		}
	}

	var failure *CLIError
	if !result.AllOK {
		failure = &CLIError{
			Code:    "E_REPLAY",
			Message: "replay verification failed",
		}
	}
	if f.Format == "json" {
		return f.Result(result, failure)
	}
	return outputReplayText(f, result)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"", "Seq", "Run", "Algorithm", "Size", "Events", "Output", "Log", "Recalc"})
	for _, r := range result.Runs {
		recalc := "-"
		if r.Recomputed {
			recalc = f.Mark(r.Deterministic)
		}
		tbl.AppendRow(table.Row{
			f.Mark(r.OK), r.Seq, r.RunID, r.Algorithm, r.Size,
			humanize.Comma(int64(r.Events)), f.Mark(r.OutputMatches), f.Mark(r.LogIntact), recalc,
		})
	}
	tbl.Render()

	if result.AllOK {
		fmt.Fprintf(w, "%s All runs verified\n", f.Mark(true))
		return nil
	}

	fmt.Fprintf(w, "%s Replay verification failed\n", f.Mark(false))
	// Verification failure = exit code 1
	return NewExitError(ExitFailure, "replay verification failed")
}
