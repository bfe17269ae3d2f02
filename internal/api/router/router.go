// Package router contains API routing logic
package router

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	v0 "github.com/ndlano/taxonomy-typegen/internal/api/handlers/v0"
	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

// NewHumaAPI creates the preview API on mux with every route registered
func NewHumaAPI(cfg *config.Config, generator service.GeneratorService, mux *http.ServeMux, metrics *telemetry.Metrics) huma.API {
	humaConfig := huma.DefaultConfig("Taxonomy Typegen API", cfg.Version)
	humaConfig.Info.Description = "Generate TypeScript types from the taxonomy OpenAPI document and browse the run history"

	api := humago.New(mux, humaConfig)

	if metrics != nil {
		api.UseMiddleware(MetricTelemetryMiddleware(metrics,
			WithSkipPaths("/health", "/ping", "/metrics", "/docs"),
		))
		mux.Handle("/metrics", metrics.PrometheusHandler())
	}

	RegisterV0Routes(api, cfg, generator, metrics)

	mux.Handle("/v0/swagger/doc.json", v0.SwaggerJSONHandler(generator))
	mux.Handle("/v0/swagger/", v0.SwaggerHandler())
	mux.Handle("/v0/swagger", v0.SwaggerHandler())

	return api
}
