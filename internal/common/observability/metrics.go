// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// meters holds the otel instruments for runs and orchestrator states. They
// are exported through a prometheus registry owned by this Observability.
type meters struct {
	provider      *metric.MeterProvider
	registry      *promclient.Registry
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
	stateDuration otelmetric.Float64Histogram
}

func newMeters(serviceName string) *meters {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(registry),
		prometheus.WithoutTargetInfo(),
	)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return nil
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	runCounter, _ := meter.Int64Counter(
		"navigator.agent.runs",
		otelmetric.WithDescription("Number of runs by terminal state"),
	)
	runDuration, _ := meter.Float64Histogram(
		"navigator.agent.run.duration",
		otelmetric.WithDescription("Run duration"),
		otelmetric.WithUnit("ms"),
	)
	stateDuration, _ := meter.Float64Histogram(
		"navigator.agent.state.duration",
		otelmetric.WithDescription("Time spent in each orchestrator state"),
		otelmetric.WithUnit("ms"),
	)

	return &meters{
		provider:      provider,
		registry:      registry,
		runCounter:    runCounter,
		runDuration:   runDuration,
		stateDuration: stateDuration,
	}
}

// RecordRun counts a finished run and its duration. code is empty on success.
func (o *Observability) RecordRun(ctx context.Context, state, code string, duration time.Duration) {
	if o == nil || o.meters == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("state", state),
		attribute.String("error_code", code),
	)
	o.meters.runCounter.Add(ctx, 1, attrs)
	o.meters.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordStateDuration records how long one state took and whether it failed.
func (o *Observability) RecordStateDuration(ctx context.Context, state string, duration time.Duration, err error) {
	if o == nil || o.meters == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	o.meters.stateDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("state", state),
		attribute.String("status", status),
	))
}

// Gatherer exposes the otel instruments in prometheus form. It returns nil
// when no meter provider is installed.
func (o *Observability) Gatherer() promclient.Gatherer {
	if o == nil || o.meters == nil {
		return nil
	}
	return o.meters.registry
}

func (m *meters) shutdown(ctx context.Context) {
	if m == nil {
		return
	}
	_ = m.provider.Shutdown(ctx)
}
