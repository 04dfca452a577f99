package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBatchTimeout = 5 * time.Second
	serviceName         = "genadvisor"
)

// TracingConfig controls distributed tracing.
type TracingConfig struct {
	// Enabled turns span recording on. When false InitTracing returns a
	// provider that records nothing, with zero overhead.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Pretty emits multi-line span output for local debugging.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

// InitTracing initializes the tracer provider and registers it globally.
// Spans are exported to stderr via the stdout exporter; the pipeline has no
// collector dependency. Callers own Shutdown on the returned provider.
func InitTracing(ctx context.Context, cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, nil
	}

	var exporterOpts []stdouttrace.Option
	if cfg.Pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(defaultBatchTimeout)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// Tracer returns the named tracer from the globally registered provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
