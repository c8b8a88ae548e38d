package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records canvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordMutation records a store mutation (create, branch, delete, ...).
	RecordMutation(ctx context.Context, op string)

	// RecordCompletion records a completion exchange with its duration
	// and error status.
	RecordCompletion(ctx context.Context, model string, duration time.Duration, err error)

	// RecordSnapshot records a persisted snapshot size.
	RecordSnapshot(ctx context.Context, user string, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	mutations         metric.Int64Counter
	completions       metric.Int64Counter
	completionLatency metric.Float64Histogram
	completionErrors  metric.Int64Counter
	snapshotSize      metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("chatcanvas")

	mutations, err := meter.Int64Counter("canvas.mutations",
		metric.WithDescription("Number of canvas mutations"),
	)
	if err != nil {
		return nil, err
	}

	completions, err := meter.Int64Counter("canvas.completions",
		metric.WithDescription("Number of completion exchanges"),
	)
	if err != nil {
		return nil, err
	}

	completionLatency, err := meter.Float64Histogram("canvas.completion.latency_ms",
		metric.WithDescription("Completion latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	completionErrors, err := meter.Int64Counter("canvas.completion.errors",
		metric.WithDescription("Number of completion failures"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("canvas.snapshot.size_bytes",
		metric.WithDescription("Persisted snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		mutations:         mutations,
		completions:       completions,
		completionLatency: completionLatency,
		completionErrors:  completionErrors,
		snapshotSize:      snapshotSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordMutation records a store mutation.
func (m *otelMetrics) RecordMutation(ctx context.Context, op string) {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
	))
}

// RecordCompletion records a completion exchange.
func (m *otelMetrics) RecordCompletion(ctx context.Context, model string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("model", model),
	}

	m.completions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.completionLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.completionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSnapshot records a persisted snapshot size.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, user string, sizeBytes int64) {
	m.snapshotSize.Record(ctx, sizeBytes, metric.WithAttributes(
		attribute.String("user", user),
	))
}
