package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/roach88/sortstep/internal/algorithm"
	"github.com/roach88/sortstep/internal/ir"
	"github.com/roach88/sortstep/internal/observability"
)

// MaxArraySize bounds the array length accepted by ResetSize and
// LoadNormalized.
const MaxArraySize = 1000

// DefaultAlgorithm is selected by New unless WithAlgorithm overrides it.
const DefaultAlgorithm = ir.AlgorithmBubble

// Played is one event handed to a caller, stamped with the engine clock.
type Played struct {
	Seq   int64    `json:"seq"`
	Phase Phase    `json:"phase"`
	Event ir.Event `json:"event"`
}

// Observer receives every event the stepping operations return, in order.
// It runs on the caller's goroutine and must not call back into the Engine.
type Observer func(Played)

// Engine is the orchestrator of one array, one selected algorithm and the
// phase cycle over them.
//
// CRITICAL: Engine is not safe for concurrent use. All methods must be
// called from one goroutine; the only other goroutine is the engine's own
// calculation worker, which never touches these fields.
//
// INVARIANTS:
//   - At most one worker is in flight
//   - events is replaced only by adopting a finished, uncancelled worker
//   - len(array) <= MaxArraySize
//   - shuffleSkip, traverseSkip >= 1
type Engine struct {
	logger   *slog.Logger
	catalog  *algorithm.Catalog
	metrics  *observability.EngineMetrics
	clock    *Clock
	observer Observer
	rng      *rand.Rand

	algo      algorithm.Algorithm
	array     []int
	arraySize int

	events         []ir.Event
	eventIndex     int
	shuffleIndex   int
	traversalIndex int
	shuffleSkip    int
	traverseSkip   int
	shuffleFrames  int
	traverseFrames int

	filter  [ir.EventTypeCount]bool
	phase   Phase
	latches Latches

	current    ir.Event
	hasCurrent bool

	scale     ir.Scale
	keyOffset int
	keyOutput bool

	worker *worker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithCatalog sets the algorithm catalog. Tests pass a catalog built with
// a seeded random source so live-step algorithms are reproducible.
func WithCatalog(c *algorithm.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithRand sets the random source of Shuffle and the Shuffle phase.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithMetrics records calculations and stepped events on em.
func WithMetrics(em *observability.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = em
	}
}

// WithObserver registers fn to receive every returned event.
func WithObserver(fn Observer) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithClock sets the logical clock used to stamp returned events.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSize sets the initial array length (identity contents).
func WithSize(n int) Option {
	return func(e *Engine) {
		e.arraySize = n
	}
}

// WithAlgorithm sets the initially selected algorithm.
func WithAlgorithm(t ir.AlgorithmType) Option {
	return func(e *Engine) {
		if a, ok := e.catalogOrDefault().Lookup(t); ok {
			e.algo = a
		}
	}
}

// New creates an Engine in the Shuffle phase over the identity array of
// the configured size. No calculation is started.
func New(opts ...Option) *Engine {
	e := &Engine{
		shuffleSkip:  1,
		traverseSkip: 1,
		scale:        ir.Chromatic(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.catalogOrDefault()
	if e.clock == nil {
		e.clock = NewClock()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.algo == nil {
		e.algo, _ = e.catalog.Lookup(DefaultAlgorithm)
	}

	e.resetData()
	e.resetArray(e.arraySize)
	return e
}

func (e *Engine) catalogOrDefault() *algorithm.Catalog {
	if e.catalog == nil {
		e.catalog = algorithm.NewCatalog()
	}
	return e.catalog
}

// Close cancels and joins any in-flight calculation.
func (e *Engine) Close() {
	e.StopCalculating()
}

// SelectAlgorithm switches the active algorithm. A calculation already in
// flight is not cancelled; its log is adopted when it finishes.
func (e *Engine) SelectAlgorithm(t ir.AlgorithmType) error {
	a, ok := e.catalog.Lookup(t)
	if !ok {
		return &StateError{Code: ErrCodeUnknownAlgorithm, Message: "no such algorithm: " + t.String()}
	}
	if e.worker != nil && e.worker.algorithm != t {
		e.logger.Debug("algorithm switched during calculation",
			"from", e.worker.algorithm.String(),
			"to", t.String(),
		)
	}
	e.algo = a
	return nil
}

// Algorithm returns the descriptor of the selected algorithm.
func (e *Engine) Algorithm() ir.Descriptor {
	return e.algo.Descriptor()
}

// Catalog returns the engine's algorithm catalog.
func (e *Engine) Catalog() *algorithm.Catalog {
	return e.catalog
}

// ResetSize stops any calculation, replaces the array with [0..n-1]
// (n clamped to [0, MaxArraySize]), rewinds every cursor to the start of the
// Shuffle phase and primes a calculation.
func (e *Engine) ResetSize(n int) {
	e.StopCalculating()
	e.resetData()
	e.resetArray(n)
	e.Calculate()
}

// Reset is ResetSize with the current array size.
func (e *Engine) Reset() {
	e.ResetSize(e.arraySize)
}

// Shuffle resets, randomizes the array uniformly and primes a calculation.
// The engine stays in the Shuffle phase, so Step still plays the shuffle
// animation on top of the randomized array.
func (e *Engine) Shuffle() {
	e.StopCalculating()
	e.resetData()
	e.resetArray(e.arraySize)
	e.rng.Shuffle(len(e.array), func(i, j int) {
		e.array[i], e.array[j] = e.array[j], e.array[i]
	})
	e.Calculate()
}

func (e *Engine) resetData() {
	e.events = nil
	e.eventIndex = 0
	e.shuffleIndex = 0
	e.traversalIndex = 0
	e.shuffleFrames = 0
	e.traverseFrames = 0
	e.phase = PhaseShuffle
	e.current = ir.Event{}
	e.hasCurrent = false
	e.catalog.ResetAll()
}

// resetArray must only run with no worker in flight.
func (e *Engine) resetArray(n int) {
	n = clampSize(n)
	e.arraySize = n
	e.array = make([]int, n)
	for i := range e.array {
		e.array[i] = i
	}
}

func clampSize(n int) int {
	return max(0, min(n, MaxArraySize))
}

// Calculate starts a background calculation of the selected algorithm over
// a snapshot of the array. It is a no-op while one is already in flight.
// Live-step algorithms have nothing to precompute and finish immediately.
func (e *Engine) Calculate() {
	e.poll()
	if e.worker != nil {
		e.logger.Debug("calculation already in flight", "algorithm", e.worker.algorithm.String())
		return
	}
	if !e.algo.Descriptor().Precompute {
		e.events = nil
		e.eventIndex = 0
		return
	}
	input := append([]int(nil), e.array...)
	e.worker = startWorker(e.algo, input, e.logger, e.metrics)
	e.logger.Debug("calculation started",
		"algorithm", e.algo.Descriptor().Type.String(),
		"size", len(input),
	)
}

// StopCalculating cancels and joins the in-flight calculation, discarding
// its result. The engine's current log is left untouched.
func (e *Engine) StopCalculating() {
	if e.worker == nil {
		return
	}
	w := e.worker
	e.worker = nil
	w.cancelAndJoin()
	e.logger.Debug("calculation stopped", "algorithm", w.algorithm.String())
}

// Processing reports whether a calculation is in flight.
func (e *Engine) Processing() bool {
	e.poll()
	return e.worker != nil
}

// Wait blocks until the in-flight calculation (if any) finishes and its log
// is adopted, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	if e.worker == nil {
		return nil
	}
	if err := e.worker.wait(ctx); err != nil {
		return err
	}
	e.poll()
	return nil
}

// poll adopts the worker's log once it has finished.
func (e *Engine) poll() {
	if e.worker == nil || !e.worker.finished() {
		return
	}
	w := e.worker
	e.worker = nil
	w.cancel()

	switch {
	case errors.Is(w.err, context.Canceled):
		// Cancelled runs never publish.
		return
	case w.err != nil:
		e.logger.Warn("calculation failed, continuing with empty log",
			"algorithm", w.algorithm.String(),
			"error", w.err,
		)
		e.events = nil
	default:
		e.events = w.log
		e.logger.Debug("calculation adopted",
			"algorithm", w.algorithm.String(),
			"events", len(w.log),
		)
	}
	e.eventIndex = 0
}

// Log returns a copy of the adopted event log.
func (e *Engine) Log() []ir.Event {
	e.poll()
	return append([]ir.Event(nil), e.events...)
}

// At returns array[i], or 0 when i is out of range.
func (e *Engine) At(i int) int {
	if i < 0 || i >= len(e.array) {
		return 0
	}
	return e.array[i]
}

// Size returns the current array length. Stalin sort can shrink it below
// the configured size.
func (e *Engine) Size() int {
	return len(e.array)
}

// Values returns a copy of the array.
func (e *Engine) Values() []int {
	return append([]int(nil), e.array...)
}

// ChangeValue writes v at i when i is in range and requests a new
// calculation (a no-op while one is in flight).
func (e *Engine) ChangeValue(i, v int) {
	if i >= 0 && i < len(e.array) {
		e.array[i] = v
	}
	e.Calculate()
}

// SetFilter suppresses (on) or restores (off) the return of events of type t.
// Filtered events are still applied to the array.
func (e *Engine) SetFilter(t ir.EventType, on bool) {
	if t.Valid() {
		e.filter[t] = on
	}
}

// Filtered reports whether events of type t are suppressed.
func (e *Engine) Filtered(t ir.EventType) bool {
	return t.Valid() && e.filter[t]
}

// SetShuffleSkip makes the Shuffle phase act on every n-th call (n >= 1).
func (e *Engine) SetShuffleSkip(n int) {
	e.shuffleSkip = max(1, n)
}

// SetTraverseSkip makes the Traverse phase act on every n-th call (n >= 1).
func (e *Engine) SetTraverseSkip(n int) {
	e.traverseSkip = max(1, n)
}

// SetScale stores the value-mapper table for an external renderer.
func (e *Engine) SetScale(s ir.Scale) {
	e.scale = s.Clone()
}

// Scale returns the stored value-mapper table.
func (e *Engine) Scale() ir.Scale {
	return e.scale.Clone()
}

// SetKeyOffset stores the renderer's key offset in semitones.
func (e *Engine) SetKeyOffset(offset int) {
	e.keyOffset = offset
}

// KeyOffset returns the stored key offset.
func (e *Engine) KeyOffset() int {
	return e.keyOffset
}

// SetKeyOutput stores whether the renderer should emit mapped keys.
func (e *Engine) SetKeyOutput(on bool) {
	e.keyOutput = on
}

// KeyOutput returns the stored key-output flag.
func (e *Engine) KeyOutput() bool {
	return e.keyOutput
}

// MappedValue maps array[i] through the stored scale and key offset.
func (e *Engine) MappedValue(i int) float64 {
	return e.scale.Map(e.At(i), e.keyOffset)
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Current returns the last event processed by any stepping operation,
// including events that were filtered from the caller.
func (e *Engine) Current() (ir.Event, bool) {
	return e.current, e.hasCurrent
}

// Load replaces the array with a copy of values (truncated to
// MaxArraySize), rewinds to the start of the Shuffle phase and primes a
// calculation.
func (e *Engine) Load(values []int) {
	e.StopCalculating()
	e.resetData()
	n := clampSize(len(values))
	e.arraySize = n
	e.array = append(make([]int, 0, n), values[:n]...)
	e.Calculate()
}

// LoadNormalized replaces the array with samples scaled to integers: the
// array length becomes len(samples) (capped at MaxArraySize), each sample is
// clamped to [0, 1] and multiplied by that length. A calculation is primed
// as after ResetSize.
func (e *Engine) LoadNormalized(samples []float64) {
	e.StopCalculating()
	e.resetData()
	e.resetArray(len(samples))
	n := len(e.array)
	for i := range e.array {
		x := samples[i]
		if math.IsNaN(x) {
			x = 0
		}
		x = min(max(x, 0), 1)
		e.array[i] = int(x * float64(n))
	}
	e.Calculate()
}
