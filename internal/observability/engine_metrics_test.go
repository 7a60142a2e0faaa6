package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/roach88/sortstep/internal/observability"
)

func setupEngineMeter(t *testing.T) (*observability.EngineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	em, err := observability.NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return em, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}
	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewEngineMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	em, err := observability.NewEngineMetrics(noopmetric.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, em)
}

func TestEngineMetrics_Calculation(t *testing.T) {
	t.Parallel()

	em, reader := setupEngineMeter(t)
	ctx := context.Background()

	em.CalculationStarted(ctx, "bubble")
	em.CalculationFinished(ctx, "bubble", observability.StatusCompleted, 12, 2*time.Millisecond)
	em.CalculationStarted(ctx, "quick")
	em.CalculationFinished(ctx, "quick", observability.StatusCancelled, 0, time.Millisecond)

	rm := collectMetrics(t, reader)

	total := findMetric(rm, "sortstep.calculations.total")
	require.NotNil(t, total)
	assert.Equal(t, int64(2), sumInt64(t, total))

	events := findMetric(rm, "sortstep.calculation.events.total")
	require.NotNil(t, events)
	assert.Equal(t, int64(12), sumInt64(t, events), "only completed runs count events")

	inflight := findMetric(rm, "sortstep.calculations.inflight")
	require.NotNil(t, inflight)
	assert.Equal(t, int64(0), sumInt64(t, inflight))

	dur := findMetric(rm, "sortstep.calculation.duration.seconds")
	require.NotNil(t, dur)
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestEngineMetrics_EventStepped(t *testing.T) {
	t.Parallel()

	em, reader := setupEngineMeter(t)
	ctx := context.Background()

	em.EventStepped(ctx, "sort", "compare")
	em.EventStepped(ctx, "sort", "swap")
	em.EventStepped(ctx, "traverse", "read")

	stepped := findMetric(collectMetrics(t, reader), "sortstep.events.stepped.total")
	require.NotNil(t, stepped)
	assert.Equal(t, int64(3), sumInt64(t, stepped))
}

func TestEngineMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var em *observability.EngineMetrics

	// Should not panic.
	em.CalculationStarted(context.Background(), "bubble")
	em.CalculationFinished(context.Background(), "bubble", observability.StatusFailed, 0, 0)
	em.EventStepped(context.Background(), "sort", "swap")
}

func TestPrometheusProvider(t *testing.T) {
	t.Parallel()

	mp, handler, err := observability.PrometheusProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	em, err := observability.NewEngineMetrics(mp.Meter(observability.MeterName))
	require.NoError(t, err)
	em.EventStepped(context.Background(), "sort", "swap")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sortstep_events_stepped")
}
