package observability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// The OTel global tracer delegates only to the first provider registered via
// otel.SetTracerProvider, so all tracing tests must share one provider. The
// exporter is reset between tests instead of creating a provider per test.
var (
	tracingOnce     sync.Once
	tracingExporter *tracetest.InMemoryExporter
)

func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	tracingOnce.Do(func() {
		tracingExporter = tracetest.NewInMemoryExporter()
		provider := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(tracingExporter),
		)
		otel.SetTracerProvider(provider)
	})
	tracingExporter.Reset()
	return tracingExporter
}

func TestSpanManager_SendSpan(t *testing.T) {
	exporter := setupTracing(t)
	sm := NewSpanManager()

	ctx, span := sm.StartSendSpan(context.Background(), "node-1", "google/gemini-pro")
	sm.AddSpanEvent(ctx, "message.appended", attribute.String("role", "user"))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "canvas.send", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	attrs := spans[0].Attributes
	assert.Contains(t, attrs, attribute.String("node.id", "node-1"))
	assert.Contains(t, attrs, attribute.String("model", "google/gemini-pro"))

	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "message.appended", spans[0].Events[0].Name)
}

func TestSpanManager_CompletionSpanIsChild(t *testing.T) {
	exporter := setupTracing(t)
	sm := NewSpanManager()

	ctx, sendSpan := sm.StartSendSpan(context.Background(), "node-1", "m")
	_, compSpan := sm.StartCompletionSpan(ctx, "m")
	sm.EndSpanWithError(compSpan, nil)
	sm.EndSpanWithError(sendSpan, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	// Exported in end order: completion first.
	assert.Equal(t, "canvas.completion", spans[0].Name)
	assert.Equal(t, "canvas.send", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func TestSpanManager_RecordsError(t *testing.T) {
	exporter := setupTracing(t)
	sm := NewSpanManager()

	_, span := sm.StartSendSpan(context.Background(), "node-1", "m")
	sm.EndSpanWithError(span, errors.New("rate limit"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "rate limit", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}

	ctx, span := sm.StartSendSpan(context.Background(), "node-1", "m")
	assert.NotNil(t, span)

	_, compSpan := sm.StartCompletionSpan(ctx, "m")
	sm.AddSpanEvent(ctx, "ignored")
	sm.EndSpanWithError(compSpan, errors.New("boom"))
	sm.EndSpanWithError(span, nil)
	sm.EndSpanWithError(nil, nil)
}
