package router

import (
	"github.com/danielgtaylor/huma/v2"

	v0 "github.com/ndlano/taxonomy-typegen/internal/api/handlers/v0"
	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

func RegisterV0Routes(
	api huma.API, cfg *config.Config, generator service.GeneratorService, metrics *telemetry.Metrics,
) {
	v0.RegisterHealthEndpoint(api, cfg, metrics)
	v0.RegisterPingEndpoint(api, cfg.Version)
	v0.RegisterGenerateEndpoints(api, generator)
	v0.RegisterRunsEndpoints(api, generator)
	v0.RegisterArtifactsEndpoint(api, generator)
}
