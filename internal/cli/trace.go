package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string   // optional - defaults to the latest run
	Types    []string // optional - filter to specific event types
}

// TraceRun describes the traced run.
type TraceRun struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Algorithm     string `json:"algorithm"`
	Input         []int  `json:"input"`
	Output        []int  `json:"output"`
	InputHash     string `json:"input_hash"`
	LogHash       string `json:"log_hash"`
	EventCount    int    `json:"event_count"`
	EngineVersion string `json:"engine_version"`
	LogVersion    string `json:"log_version"`
}

// TraceStats counts the traced log by event type.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	ByType      map[string]int `json:"by_type"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run    TraceRun   `json:"run"`
	Events []ir.Event `json:"events"`
	Stats  TraceStats `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the stored event log of a run",
		Long: `Print the event log recorded for a run, in log order.

Without --run the most recent run is shown. --type restricts the listing
to the given event types; the statistics always cover the listed events.

Examples:
  sortstep trace --db ./runs.db
  sortstep trace --db ./runs.db --run 0190f5c2-... --type swap,set
  sortstep trace --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (default latest)")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "event types to show")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	types := make([]ir.EventType, 0, len(opts.Types))
	for _, name := range opts.Types {
		t, err := ir.ParseEventType(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid event type", err)
		}
		types = append(types, t)
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var run store.Run
	if opts.RunID != "" {
		run, err = st.ReadRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, sql.ErrNoRows) {
		if opts.RunID == "" {
			return NewExitError(ExitCommandError, "no runs found in database")
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadRunEvents(ctx, run.ID, types...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		Run:    toTraceRun(run),
		Events: events,
		Stats:  traceStats(events),
	}
	if f.Format == "json" {
		return f.Success(result)
	}
	outputTraceText(f, result)
	return nil
}

func toTraceRun(run store.Run) TraceRun {
	return TraceRun{
		ID:            run.ID,
		Seq:           run.Seq,
		Algorithm:     run.Algorithm.String(),
		Input:         run.Input,
		Output:        run.Output,
		InputHash:     run.InputHash,
		LogHash:       run.LogHash,
		EventCount:    run.EventCount,
		EngineVersion: run.EngineVersion,
		LogVersion:    run.LogVersion,
	}
}

func traceStats(events []ir.Event) TraceStats {
	counts := ir.Count(events)
	stats := TraceStats{TotalEvents: len(events), ByType: map[string]int{}}
	for t, n := range counts {
		if n > 0 {
			stats.ByType[ir.EventType(t).String()] = n
		}
	}
	return stats
}

func outputTraceText(f *OutputFormatter, result TraceResult) {
	w := f.Writer
	run := result.Run

	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "  algorithm: %s\n", run.Algorithm)
	fmt.Fprintf(w, "  size: %d, events: %s\n", len(run.Input), humanize.Comma(int64(run.EventCount)))
	if f.Verbose {
		fmt.Fprintf(w, "  input: %v\n", run.Input)
		fmt.Fprintf(w, "  output: %v\n", run.Output)
		fmt.Fprintf(w, "  input hash: %s\n", run.InputHash)
		fmt.Fprintf(w, "  log hash: %s\n", run.LogHash)
		fmt.Fprintf(w, "  versions: engine %s, log %s\n", run.EngineVersion, run.LogVersion)
	}
	fmt.Fprintln(w)

	for i, ev := range result.Events {
		fmt.Fprintf(w, "%6d  %s\n", i, ev)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s event(s)", humanize.Comma(int64(result.Stats.TotalEvents)))
	for t := ir.EventType(0); t < ir.EventTypeCount; t++ {
		if n := result.Stats.ByType[t.String()]; n > 0 {
			fmt.Fprintf(w, ", %s %d", t, n)
		}
	}
	fmt.Fprintln(w)
}
