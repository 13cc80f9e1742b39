package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the tracer used to wrap orchestrator states and
// upstream calls in spans, and the otel meters for runs and states.
type Observability struct {
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	meters         *meters
}

// New installs a tracer provider for serviceName. Extra options (span
// processors, exporters) are passed straight to the SDK.
func New(serviceName string, opts ...sdktrace.TracerProviderOption) *Observability {
	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)

	return &Observability{
		tracerProvider: provider,
		tracer:         provider.Tracer(serviceName),
		meters:         newMeters(serviceName),
	}
}

// StartSpan opens a span named s under ctx.
func (o *Observability) StartSpan(ctx context.Context, s string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, s, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and closes it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	o.meters.shutdown(ctx)
}
