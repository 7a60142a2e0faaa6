package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCalculationsTotal   = "sortstep.calculations.total"
	metricCalculationDuration = "sortstep.calculation.duration.seconds"
	metricCalculationEvents   = "sortstep.calculation.events.total"
	metricCalculationsFlight  = "sortstep.calculations.inflight"
	metricEventsStepped       = "sortstep.events.stepped.total"

	attrAlgorithm = "algorithm"
	attrStatus    = "status"
	attrPhase     = "phase"
	attrType      = "type"
)

// Calculation outcomes recorded on sortstep.calculations.total.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// calculationBuckets spans sub-millisecond runs up to multi-second bubble
// sorts of the largest arrays.
var calculationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// EngineMetrics holds the OTel instruments recorded by the engine.
type EngineMetrics struct {
	calculations metric.Int64Counter
	duration     metric.Float64Histogram
	logEvents    metric.Int64Counter
	inflight     metric.Int64UpDownCounter
	stepped      metric.Int64Counter
}

// NewEngineMetrics creates engine instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	b := newMetricBuilder(mt)

	em := &EngineMetrics{
		calculations: b.counter(metricCalculationsTotal, "Background calculations by algorithm and outcome", "{calculation}"),
		duration:     b.histogram(metricCalculationDuration, "Background calculation duration in seconds", "s", calculationBuckets...),
		logEvents:    b.counter(metricCalculationEvents, "Events recorded by completed calculations", "{event}"),
		inflight:     b.upDownCounter(metricCalculationsFlight, "Calculations currently running", "{calculation}"),
		stepped:      b.counter(metricEventsStepped, "Events returned to callers by phase and type", "{event}"),
	}

	if b.err != nil {
		return nil, b.err
	}
	return em, nil
}

// CalculationStarted marks a background calculation as in flight.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) CalculationStarted(ctx context.Context, algorithm string) {
	if em == nil {
		return
	}
	em.inflight.Add(ctx, 1, metric.WithAttributes(attribute.String(attrAlgorithm, algorithm)))
}

// CalculationFinished records the outcome of a background calculation.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) CalculationFinished(ctx context.Context, algorithm, status string, events int, elapsed time.Duration) {
	if em == nil {
		return
	}
	algo := attribute.String(attrAlgorithm, algorithm)
	em.inflight.Add(ctx, -1, metric.WithAttributes(algo))
	em.calculations.Add(ctx, 1, metric.WithAttributes(algo, attribute.String(attrStatus, status)))
	em.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(algo))
	if status == StatusCompleted {
		em.logEvents.Add(ctx, int64(events), metric.WithAttributes(algo))
	}
}

// EventStepped counts one event handed to a caller.
// Safe to call on a nil receiver (no-op).
func (em *EngineMetrics) EventStepped(ctx context.Context, phase, eventType string) {
	if em == nil {
		return
	}
	em.stepped.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrPhase, phase),
		attribute.String(attrType, eventType),
	))
}
