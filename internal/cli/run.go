package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/config"
	"github.com/roach88/sortstep/internal/engine"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/observability"
	"github.com/roach88/sortstep/internal/store"
)

// Phases the run command can drive.
const (
	runPhaseAll  = "all"
	runPhaseSort = "sort"
)

const metricsShutdownTimeout = 2 * time.Second

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Size         int
	Algorithm    string
	Input        []int
	Samples      []float64
	Filter       []string
	Seed         uint64
	ShuffleSkip  int
	TraverseSkip int
	KeyOffset    int
	KeyOutput    bool
	Rate         float64
	Database     string
	MetricsAddr  string

	Phase    string // "all" | "sort"
	Quiet    bool
	MaxSteps int
	Save     string
	Resume   string
}

// PlayedEvent is one event printed by the run command.
type PlayedEvent struct {
	Seq   int64    `json:"seq"`
	Phase string   `json:"phase"`
	Event ir.Event `json:"event"`
	Key   *float64 `json:"key,omitempty"`
}

// RunSummary is the outcome of the run command.
type RunSummary struct {
	Algorithm string        `json:"algorithm"`
	Mode      string        `json:"mode"`
	Size      int           `json:"size"`
	Events    int           `json:"events"`
	Seq       int64         `json:"seq"`
	Finished  bool          `json:"finished"`
	Sorted    bool          `json:"sorted"`
	Final     []int         `json:"final"`
	RunID     string        `json:"run_id,omitempty"`
	Snapshot  string        `json:"snapshot,omitempty"`
	Elapsed   string        `json:"elapsed"`
	Trace     []PlayedEvent `json:"trace,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play an algorithm through Shuffle, Sort and Traverse",
		Long: `Build an array, select an algorithm and step the engine, printing every
event it returns.

Flags override the config file (engine.*, playback.rate, store.path,
metrics.addr). With a database the precomputed Sort log is recorded as a
run; --save and --resume store and restore full engine snapshots.

Examples:
  sortstep run --algorithm heap --size 64
  sortstep run --algorithm quick --input 5,3,9,1 --phase sort
  sortstep run --algorithm shell --samples 0.1,0.8,0.35,0.6
  sortstep run --algorithm radix_lsd_16 --size 1000 --quiet --db ./runs.db
  sortstep run --algorithm bubble --rate 30 --filter compare --metrics-addr :9090
  sortstep run --db ./runs.db --save demo --max-steps 500
  sortstep run --db ./runs.db --resume demo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayback(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Size, "size", "n", config.DefaultEngineSize, "array size (0-1000), identity array before shuffling")
	cmd.Flags().StringVarP(&opts.Algorithm, "algorithm", "a", config.DefaultEngineAlgorithm, "algorithm tag (see 'sortstep algorithms')")
	cmd.Flags().IntSliceVar(&opts.Input, "input", nil, "explicit input values instead of --size")
	cmd.Flags().Float64SliceVar(&opts.Samples, "samples", nil, "normalized samples in [0,1], scaled by their count, instead of --size")
	cmd.Flags().StringSliceVar(&opts.Filter, "filter", nil, "event types to suppress (compare,swap,move,set,read,remove)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for shuffling and live strategies (0 picks one)")
	cmd.Flags().IntVar(&opts.ShuffleSkip, "shuffle-skip", config.DefaultEngineShuffleSkip, "play one shuffle swap every N ticks")
	cmd.Flags().IntVar(&opts.TraverseSkip, "traverse-skip", config.DefaultEngineTraverseSkip, "play one traverse read every N ticks")
	cmd.Flags().IntVar(&opts.KeyOffset, "key-offset", config.DefaultEngineKeyOffset, "offset added to mapped keys, in semitones")
	cmd.Flags().BoolVar(&opts.KeyOutput, "key-output", false, "print the scale-mapped key of each event's first element")
	cmd.Flags().Float64Var(&opts.Rate, "rate", config.DefaultPlaybackRate, "ticks per second (0 = unpaced)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for runs and snapshots")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	cmd.Flags().StringVar(&opts.Phase, "phase", runPhaseAll, "phases to drive (all|sort)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the summary")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "stop after N ticks (0 = until finished)")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save an engine snapshot under this name when stopping")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "restore the named engine snapshot instead of building an array")

	return cmd
}

// applyRunFlags overrides cfg with every flag the user set.
func applyRunFlags(cmd *cobra.Command, opts *RunOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Engine.Size = opts.Size
	}
	if flags.Changed("algorithm") {
		cfg.Engine.Algorithm = opts.Algorithm
	}
	if flags.Changed("filter") {
		cfg.Engine.Filter = opts.Filter
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed = opts.Seed
	}
	if flags.Changed("shuffle-skip") {
		cfg.Engine.ShuffleSkip = opts.ShuffleSkip
	}
	if flags.Changed("traverse-skip") {
		cfg.Engine.TraverseSkip = opts.TraverseSkip
	}
	if flags.Changed("key-offset") {
		cfg.Engine.KeyOffset = opts.KeyOffset
	}
	if flags.Changed("rate") {
		cfg.Playback.Rate = opts.Rate
	}
	if flags.Changed("db") {
		cfg.Store.Path = opts.Database
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
}

func runPlayback(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}
	if opts.Phase != runPhaseAll && opts.Phase != runPhaseSort {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid phase %q: must be %q or %q", opts.Phase, runPhaseAll, runPhaseSort))
	}
	if cmd.Flags().Changed("input") && cmd.Flags().Changed("samples") {
		return NewExitError(ExitCommandError, "--input and --samples are mutually exclusive")
	}
	if opts.MaxSteps < 0 {
		return NewExitError(ExitCommandError, "max-steps must not be negative")
	}
	if (opts.Save != "" || opts.Resume != "") && cfg.Store.Path == "" {
		return NewExitError(ExitCommandError, "--save and --resume need a database (--db or store.path)")
	}
	algo, _ := cfg.AlgorithmType()
	filters, _ := cfg.FilterTypes()

	logger := opts.newLogger(cmd.ErrOrStderr())
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = openStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	metrics, shutdownMetrics, err := startMetrics(cfg.Metrics.Addr, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start metrics server", err)
	}
	defer shutdownMetrics()

	rng := newRand(cfg.Engine.Seed)
	catalog := algorithm.NewCatalog(algorithm.WithRand(rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))))

	var (
		last    engine.Played
		hasLast bool
	)
	eng := engine.New(
		engine.WithLogger(logger),
		engine.WithCatalog(catalog),
		engine.WithRand(rng),
		engine.WithMetrics(metrics),
		engine.WithAlgorithm(algo),
		engine.WithObserver(func(p engine.Played) {
			last, hasLast = p, true
		}),
	)
	defer eng.Close()

	if opts.Resume != "" {
		if err := resumeSnapshot(ctx, st, eng, opts.Resume); err != nil {
			return err
		}
		logger.Info("snapshot restored", "name", opts.Resume, "algorithm", eng.Algorithm().Type.String(), "phase", eng.Phase().String())
	} else {
		for _, t := range filters {
			eng.SetFilter(t, true)
		}
		eng.SetShuffleSkip(cfg.Engine.ShuffleSkip)
		eng.SetTraverseSkip(cfg.Engine.TraverseSkip)
		eng.SetKeyOffset(cfg.Engine.KeyOffset)
		switch {
		case cmd.Flags().Changed("input"):
			eng.Load(opts.Input)
		case cmd.Flags().Changed("samples"):
			eng.LoadNormalized(opts.Samples)
		default:
			eng.ResetSize(cfg.Engine.Size)
		}
	}
	if cmd.Flags().Changed("key-output") {
		eng.SetKeyOutput(opts.KeyOutput)
	}

	var limiter *rate.Limiter
	if cfg.Playback.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Playback.Rate), 1)
	}

	desc := eng.Algorithm()
	summary := RunSummary{
		Algorithm: desc.Type.String(),
		Mode:      desc.Mode(),
		Size:      eng.Size(),
	}
	sortInput := eng.Values()
	start := time.Now()

	for tick := 0; opts.MaxSteps == 0 || tick < opts.MaxSteps; tick++ {
		if opts.Phase == runPhaseAll && eng.IsDone() {
			summary.Finished = true
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		if err := eng.Wait(ctx); err != nil {
			break
		}

		var ok bool
		if opts.Phase == runPhaseSort {
			_, ok = eng.StepSort()
		} else {
			_, ok = eng.Step()
		}

		if hasLast {
			hasLast = false
			summary.Events++
			played := toPlayedEvent(eng, last)
			if played.Phase == engine.PhaseShuffle.String() {
				sortInput = eng.Values()
			}
			if !opts.Quiet {
				if opts.Format == "json" {
					summary.Trace = append(summary.Trace, played)
				} else {
					printPlayed(f, played)
				}
			}
		}

		if opts.Phase == runPhaseSort && !ok && (desc.Precompute || eng.IsDoneSort()) {
			summary.Finished = true
			break
		}
	}
	if ctx.Err() != nil {
		logger.Info("playback interrupted", "events", summary.Events)
	}

	// Store writes outlive an interrupt so --save still captures the position.
	storeCtx := context.WithoutCancel(ctx)

	if st != nil && desc.Precompute && summary.Finished {
		run, err := recordRun(storeCtx, st, catalog, desc.Type, sortInput)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		summary.RunID = run.ID
		logger.Debug("run recorded", "id", run.ID, "seq", run.Seq, "events", run.EventCount)
	}

	if opts.Save != "" {
		if err := saveSnapshot(storeCtx, st, eng, opts.Save); err != nil {
			return WrapExitError(ExitCommandError, "failed to save snapshot", err)
		}
		summary.Snapshot = opts.Save
	}

	summary.Final = eng.Values()
	summary.Sorted = algorithm.IsSorted(summary.Final)
	summary.Seq = eng.Snapshot().Seq
	summary.Elapsed = time.Since(start).Round(time.Microsecond).String()

	if opts.Format == "json" {
		return writeJSON(f.Writer, CLIResponse{Status: "ok", Data: summary})
	}
	printRunSummary(f, summary)
	return nil
}

func toPlayedEvent(eng *engine.Engine, p engine.Played) PlayedEvent {
	played := PlayedEvent{Seq: p.Seq, Phase: p.Phase.String(), Event: p.Event}
	if eng.KeyOutput() && len(p.Event.Elements) > 0 {
		if i := p.Event.Elements[0].Index; i >= 0 && i < eng.Size() {
			key := eng.MappedValue(i)
			played.Key = &key
		}
	}
	return played
}

func printPlayed(f *OutputFormatter, p PlayedEvent) {
	if p.Key != nil {
		fmt.Fprintf(f.Writer, "%6d  %-8s %-16s key=%.4f\n", p.Seq, p.Phase, p.Event, *p.Key)
		return
	}
	fmt.Fprintf(f.Writer, "%6d  %-8s %s\n", p.Seq, p.Phase, p.Event)
}

func printRunSummary(f *OutputFormatter, s RunSummary) {
	w := f.Writer
	fmt.Fprintf(w, "%s %s (%s): %s values, %s events, seq %d, %s\n",
		f.Mark(s.Sorted), s.Algorithm, s.Mode,
		humanize.Comma(int64(s.Size)), humanize.Comma(int64(s.Events)), s.Seq, s.Elapsed)
	if !s.Finished {
		fmt.Fprintln(w, "  stopped before the cycle finished")
	}
	if s.RunID != "" {
		fmt.Fprintf(w, "  run: %s\n", s.RunID)
	}
	if s.Snapshot != "" {
		fmt.Fprintf(w, "  snapshot: %s\n", s.Snapshot)
	}
	if f.Verbose {
		fmt.Fprintf(w, "  final: %v\n", s.Final)
	}
}

// recordRun recalculates the log for input and stores it as a run.
func recordRun(ctx context.Context, st *store.Store, catalog *algorithm.Catalog, algo ir.AlgorithmType, input []int) (store.Run, error) {
	log, err := catalogCalculator{catalog: catalog}.Calculate(ctx, algo, input)
	if err != nil {
		return store.Run{}, err
	}
	run, err := store.NewRun(algo, input, log)
	if err != nil {
		return store.Run{}, err
	}
	return st.WriteRun(ctx, run, log)
}

func saveSnapshot(ctx context.Context, st *store.Store, eng *engine.Engine, name string) error {
	state := eng.Snapshot()
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return st.SaveSnapshot(ctx, name, state.Seq, blob)
}

func resumeSnapshot(ctx context.Context, st *store.Store, eng *engine.Engine, name string) error {
	blob, _, err := st.LoadSnapshot(ctx, name)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("snapshot not found: %s", name))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	var state engine.State
	if err := json.Unmarshal(blob, &state); err != nil {
		return WrapExitError(ExitCommandError, "failed to decode snapshot", err)
	}
	if err := eng.Restore(state); err != nil {
		return WrapExitError(ExitCommandError, "failed to restore snapshot", err)
	}
	return nil
}

// startMetrics serves engine metrics on addr. An empty addr disables
// metrics; the returned shutdown func is always safe to call.
func startMetrics(addr string, logger *slog.Logger) (*observability.EngineMetrics, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	mp, handler, err := observability.PrometheusProvider()
	if err != nil {
		return nil, nil, err
	}
	em, err := observability.NewEngineMetrics(mp.Meter(observability.MeterName))
	if err != nil {
		return nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn("meter provider shutdown", "error", err)
		}
	}
	return em, shutdown, nil
}
