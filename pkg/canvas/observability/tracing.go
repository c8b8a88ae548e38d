package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the canvas tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("chatcanvas")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSendSpan starts a span covering a whole send exchange.
	StartSendSpan(ctx context.Context, nodeID, model string) (context.Context, trace.Span)

	// StartCompletionSpan starts a span for the provider call.
	// The completion span should be a child of the send span.
	StartCompletionSpan(ctx context.Context, model string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartSendSpan starts a span covering a whole send exchange.
func (m *otelSpanManager) StartSendSpan(ctx context.Context, nodeID, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canvas.send",
		trace.WithAttributes(
			attribute.String("node.id", nodeID),
			attribute.String("model", model),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartCompletionSpan starts a span for the provider call.
func (m *otelSpanManager) StartCompletionSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "canvas.completion",
		trace.WithAttributes(
			attribute.String("model", model),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
