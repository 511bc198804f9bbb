package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// collectMetrics drains the manual reader into a resource metrics snapshot.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// metricNames flattens a snapshot into the set of recorded metric names.
func metricNames(rm metricdata.ResourceMetrics) map[string]bool {
	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestOtelMetrics_RecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordNodeExecution(ctx, "classify", 12*time.Millisecond, nil)
	m.RecordNodeExecution(ctx, "dispatch", 30*time.Millisecond, errors.New("boom"))
	m.RecordGraphRun(ctx, true, 80*time.Millisecond)
	m.RecordCheckpoint(ctx, "classify", 256)
	m.RecordToolCall(ctx, "get_data", 15*time.Millisecond, nil)
	m.RecordLLMTokens(ctx, "gpt-4o", 1200, 85)

	names := metricNames(collectMetrics(t, reader))
	assert.True(t, names["chatgraph.node.executions"])
	assert.True(t, names["chatgraph.node.latency_ms"])
	assert.True(t, names["chatgraph.node.errors"])
	assert.True(t, names["chatgraph.graph.runs"])
	assert.True(t, names["chatgraph.checkpoint.size_bytes"])
	assert.True(t, names["chatgraph.tool.calls"])
	assert.True(t, names["chatgraph.tool.latency_ms"])
	assert.True(t, names["chatgraph.llm.tokens"])
}

func TestOtelMetrics_TokenDirections(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordLLMTokens(context.Background(), "gpt-4o", 100, 40)

	rm := collectMetrics(t, reader)
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "chatgraph.llm.tokens" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			// One data point per direction attribute.
			assert.Len(t, sum.DataPoints, 2)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(140), total)
}

func TestSpanManager_ExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	tracer := provider.Tracer("chatgraph")
	ctx, runSpan := tracer.Start(context.Background(), "chatgraph.run")
	_, nodeSpan := tracer.Start(ctx, "chatgraph.node.classify")

	sm := NewSpanManager()
	sm.AddSpanEvent(ctx, "routing decision")
	sm.EndSpanWithError(nodeSpan, errors.New("boom"))
	sm.EndSpanWithError(runSpan, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	// Spans export in end order: the failed node span first.
	assert.Equal(t, "chatgraph.node.classify", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)

	// The event was added to the span carried in ctx (the run span).
	assert.Equal(t, "chatgraph.run", spans[1].Name)
	require.NotEmpty(t, spans[1].Events)
	assert.Equal(t, "routing decision", spans[1].Events[0].Name)
}
