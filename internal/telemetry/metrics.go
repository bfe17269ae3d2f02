package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	Namespace = "typegen"
)

// Run outcomes recorded on the runs counter
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Metrics struct {
	// Runs counts generation runs by outcome
	Runs metric.Int64Counter

	// RunDuration tracks how long a generation run takes
	RunDuration metric.Float64Histogram

	// Schemas is the number of component schemas in the last generated document
	Schemas metric.Int64Gauge

	// Requests tracks the number of HTTP requests
	Requests metric.Int64Counter

	// RequestDuration tracks the duration of HTTP Requests
	RequestDuration metric.Float64Histogram

	// ErrorCount tracks the number of errors
	ErrorCount metric.Int64Counter

	// Up tracks the health of the service
	Up metric.Int64Gauge

	registry *prom.Registry
}

// ShutdownFunc is a delegate that shuts down the OpenTelemetry components.
type ShutdownFunc func(ctx context.Context) error

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter(
		Namespace+".runs",
		metric.WithDescription("Total number of generation runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		Namespace+".run.duration",
		metric.WithDescription("Duration of generation runs in seconds"),
		metric.WithExplicitBucketBoundaries(
			0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	schemas, err := meter.Int64Gauge(
		Namespace+".schemas",
		metric.WithDescription("Number of component schemas in the last generated document"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema gauge: %w", err)
	}

	req, err := meter.Int64Counter(
		Namespace+".http.requests",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	reqDuration, err := meter.Float64Histogram(
		Namespace+".http.request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 20.0, 50.0,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	errCount, err := meter.Int64Counter(
		Namespace+".http.errors",
		metric.WithDescription("Total number of HTTP errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	up, err := meter.Int64Gauge(
		Namespace+".service.up",
		metric.WithDescription("Service health status (1 for up, 0 for down)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service up gauge: %w", err)
	}

	return &Metrics{
		Runs:            runs,
		RunDuration:     runDuration,
		Schemas:         schemas,
		Requests:        req,
		RequestDuration: reqDuration,
		ErrorCount:      errCount,
		Up:              up,
	}, nil
}

// RecordRun records the outcome of one generation run.
func (m *Metrics) RecordRun(ctx context.Context, status string, seconds float64, schemaCount int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.Runs.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, seconds, attrs)
	if status == StatusSuccess {
		m.Schemas.Record(ctx, int64(schemaCount))
	}
}

func NewPrometheusMeterProvider(res *resource.Resource, exp *prometheus.Exporter) (*sdkmetric.MeterProvider, error) {
	if exp == nil {
		return nil, errors.New("exporter cannot be nil")
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	)

	return meterProvider, nil
}

// InitMetrics sets up an OpenTelemetry meter exported through a dedicated
// Prometheus registry.
func InitMetrics(version string) (ShutdownFunc, *Metrics, error) {
	// Initialized the returned shutdownFunc to no-op.
	shutdown := func(_ context.Context) error { return nil }

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(Namespace),
			semconv.ServiceVersion(version),
		),
		resource.WithTelemetrySDK(),
		resource.WithProcessRuntimeDescription(),
	)
	if err != nil {
		return shutdown, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return shutdown, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mp, err := NewPrometheusMeterProvider(res, exporter)
	if err != nil {
		return shutdown, nil, fmt.Errorf("failed to create Prometheus meter provider: %w", err)
	}
	otel.SetMeterProvider(mp)

	if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
		return shutdown, nil, fmt.Errorf("failed to start runtime instrumentation: %w", err)
	}

	shutdown = func(ctx context.Context) error {
		return mp.Shutdown(ctx)
	}

	meter := mp.Meter(Namespace, metric.WithSchemaURL(semconv.SchemaURL), metric.WithInstrumentationVersion(runtime.Version()))
	metrics, err := NewMetrics(meter)
	if err != nil {
		return shutdown, nil, err
	}
	metrics.registry = registry
	return shutdown, metrics, nil
}

// PrometheusHandler returns the HTTP handler for Prometheus metrics
// This handler serves the metrics endpoint for Prometheus to scrape.
func (m *Metrics) PrometheusHandler() http.Handler {
	if m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
