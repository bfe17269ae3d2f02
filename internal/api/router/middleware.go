package router

import (
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

type middlewareConfig struct {
	skipPaths []string
}

// MiddlewareOption configures MetricTelemetryMiddleware
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths excludes requests whose path ends with one of paths
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// MetricTelemetryMiddleware records request count, duration and errors per
// operation. The path attribute is the route template, not the raw URL.
func MetricTelemetryMiddleware(metrics *telemetry.Metrics, options ...MiddlewareOption) func(huma.Context, func(huma.Context)) {
	cfg := &middlewareConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		requestPath := ctx.URL().Path
		for _, skip := range cfg.skipPaths {
			if strings.HasSuffix(requestPath, skip) {
				next(ctx)
				return
			}
		}

		start := time.Now()
		next(ctx)

		route := requestPath
		if op := ctx.Operation(); op != nil && op.Path != "" {
			route = op.Path
		}
		status := ctx.Status()
		attrs := metric.WithAttributes(
			attribute.String("method", ctx.Method()),
			attribute.String("path", route),
			attribute.Int("status_code", status),
		)

		reqCtx := ctx.Context()
		metrics.Requests.Add(reqCtx, 1, attrs)
		metrics.RequestDuration.Record(reqCtx, time.Since(start).Seconds(), attrs)
		if status >= 400 {
			metrics.ErrorCount.Add(reqCtx, 1, attrs)
		}
	}
}
