package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metric names. Centralized so dashboards and tests reference one definition.
const (
	MetricQueriesTotal       = "genadvisor.pipeline.queries"
	MetricQueryDuration      = "genadvisor.pipeline.duration"
	MetricGraphBuilds        = "genadvisor.graph.builds"
	MetricGraphBuildDuration = "genadvisor.graph.build.duration"
	MetricGraphBuildErrors   = "genadvisor.graph.build.step_errors"
	MetricCacheHits          = "genadvisor.retrieval.cache.hits"
	MetricCacheMisses        = "genadvisor.retrieval.cache.misses"
	MetricDocsRetrieved      = "genadvisor.retrieval.documents"
)

// MetricsConfig controls the metrics subsystem.
type MetricsConfig struct {
	// Enabled turns metric collection on. When false, instruments are no-ops.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Metrics bundles the pipeline's instruments plus the HTTP handler that
// exposes them in Prometheus exposition format.
type Metrics struct {
	QueriesTotal       metric.Int64Counter
	QueryDuration      metric.Float64Histogram
	GraphBuilds        metric.Int64Counter
	GraphBuildDuration metric.Float64Histogram
	GraphBuildErrors   metric.Int64Counter
	CacheHits          metric.Int64Counter
	CacheMisses        metric.Int64Counter
	DocsRetrieved      metric.Int64Histogram

	handler  http.Handler
	provider *sdkmetric.MeterProvider
}

// InitMetrics wires an OTel meter through the Prometheus exporter. The
// returned Metrics carries ready instruments and the /metrics handler.
// When disabled, all instruments are no-ops and Handler serves an empty
// registry, so call sites never branch on the config.
func InitMetrics(cfg MetricsConfig) (*Metrics, error) {
	var meter metric.Meter
	m := &Metrics{}

	if cfg.Enabled {
		registry := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		m.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		meter = m.provider.Meter("genadvisor")
	} else {
		m.handler = promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
		meter = noop.NewMeterProvider().Meter("genadvisor")
	}

	var err error
	if m.QueriesTotal, err = meter.Int64Counter(MetricQueriesTotal,
		metric.WithDescription("Queries processed by the pipeline")); err != nil {
		return nil, err
	}
	if m.QueryDuration, err = meter.Float64Histogram(MetricQueryDuration,
		metric.WithDescription("End-to-end pipeline latency"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.GraphBuilds, err = meter.Int64Counter(MetricGraphBuilds,
		metric.WithDescription("Knowledge graph rebuilds")); err != nil {
		return nil, err
	}
	if m.GraphBuildDuration, err = meter.Float64Histogram(MetricGraphBuildDuration,
		metric.WithDescription("Knowledge graph build latency"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.GraphBuildErrors, err = meter.Int64Counter(MetricGraphBuildErrors,
		metric.WithDescription("Build steps that failed and were skipped")); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Retrieval cache hits")); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Retrieval cache misses")); err != nil {
		return nil, err
	}
	if m.DocsRetrieved, err = meter.Int64Histogram(MetricDocsRetrieved,
		metric.WithDescription("Documents returned per retrieval")); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler returns the Prometheus exposition handler.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Shutdown flushes the meter provider. Safe to call when metrics are disabled.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
