package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("policy-navigator-test", sdktrace.WithSpanProcessor(recorder))
	defer obs.Shutdown()

	_, okSpan := obs.StartSpan(context.Background(), "PARSE", attribute.String("path", "policy.pdf"))
	EndSpan(okSpan, nil)

	_, failSpan := obs.StartSpan(context.Background(), "PLAN")
	EndSpan(failSpan, errors.New("context length exceeded"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "PARSE", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "PLAN", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestNilObservability(t *testing.T) {
	var obs *Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.Nil(t, obs.Gatherer())
	assert.NotPanics(t, func() {
		EndSpan(span, nil)
		obs.RecordRun(ctx, "DONE", "", time.Second)
		obs.RecordStateDuration(ctx, "PLAN", time.Second, nil)
		obs.Shutdown()
	})
}

func TestMeters_ExportedThroughGatherer(t *testing.T) {
	obs := New("policy-navigator-test")
	defer obs.Shutdown()
	ctx := context.Background()

	obs.RecordRun(ctx, "DONE", "", 1500*time.Millisecond)
	obs.RecordRun(ctx, "FAILED", "CONTEXT_LENGTH_EXCEEDED", 200*time.Millisecond)
	obs.RecordStateDuration(ctx, "PLAN", 40*time.Millisecond, errors.New("boom"))

	require.NotNil(t, obs.Gatherer())
	families, err := obs.Gatherer().Gather()
	require.NoError(t, err)

	var names []string
	var runs float64
	for _, mf := range families {
		names = append(names, mf.GetName())
		if strings.HasPrefix(mf.GetName(), "navigator_agent_runs") {
			for _, m := range mf.GetMetric() {
				runs += m.GetCounter().GetValue()
			}
		}
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "navigator_agent_runs")
	assert.Contains(t, joined, "navigator_agent_run_duration")
	assert.Contains(t, joined, "navigator_agent_state_duration")
	assert.Equal(t, 2.0, runs)
}
