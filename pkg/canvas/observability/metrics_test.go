package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// findMetric locates a metric by name in collected resource metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestOtelMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	rec := NewMetricsRecorder()
	ctx := context.Background()

	rec.RecordMutation(ctx, "branch")
	rec.RecordMutation(ctx, "delete")
	rec.RecordCompletion(ctx, "google/gemini-pro", 150*time.Millisecond, nil)
	rec.RecordCompletion(ctx, "google/gemini-pro", 200*time.Millisecond, errors.New("boom"))
	rec.RecordSnapshot(ctx, "alice", 512)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	mutations, ok := findMetric(rm, "canvas.mutations")
	require.True(t, ok, "canvas.mutations not collected")
	sum := mutations.Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	completions, ok := findMetric(rm, "canvas.completions")
	require.True(t, ok, "canvas.completions not collected")
	csum := completions.Data.(metricdata.Sum[int64])
	require.Len(t, csum.DataPoints, 1)
	assert.Equal(t, int64(2), csum.DataPoints[0].Value)

	cerrs, ok := findMetric(rm, "canvas.completion.errors")
	require.True(t, ok, "canvas.completion.errors not collected")
	esum := cerrs.Data.(metricdata.Sum[int64])
	require.Len(t, esum.DataPoints, 1)
	assert.Equal(t, int64(1), esum.DataPoints[0].Value)

	latency, ok := findMetric(rm, "canvas.completion.latency_ms")
	require.True(t, ok, "canvas.completion.latency_ms not collected")
	hist := latency.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	size, ok := findMetric(rm, "canvas.snapshot.size_bytes")
	require.True(t, ok, "canvas.snapshot.size_bytes not collected")
	shist := size.Data.(metricdata.Histogram[int64])
	require.Len(t, shist.DataPoints, 1)
	assert.Equal(t, int64(512), shist.DataPoints[0].Sum)
}

func TestNoopMetrics(t *testing.T) {
	var rec MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	// Must be safe without any provider configured.
	rec.RecordMutation(ctx, "branch")
	rec.RecordCompletion(ctx, "m", time.Second, errors.New("boom"))
	rec.RecordSnapshot(ctx, "alice", 0)
}
