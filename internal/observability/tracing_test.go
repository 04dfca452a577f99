package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tp)

	// Spans must still be creatable against the inert provider.
	_, span := Tracer("test").Start(context.Background(), "noop")
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestInitTracing_Enabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Pretty: true})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := Tracer("test").Start(context.Background(), "pipeline.process_query")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracer_UsesRegisteredProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	_, span := Tracer("genadvisor/pipeline").Start(context.Background(), "graph.build")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "graph.build", spans[0].Name)
	assert.Equal(t, "genadvisor/pipeline", spans[0].InstrumentationScope.Name)
}

func TestWithTrace_AddsSpanFields(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger := NewLogger(LoggingConfig{Level: "info", Format: "json"}, nil)
	traced := WithTrace(ctx, logger)
	assert.NotSame(t, logger, traced)
}
