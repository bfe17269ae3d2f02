// Package v0 contains API handlers for version 0 of the API
package v0

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

// HealthBody represents the health check response body
type HealthBody struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Input   string `json:"input" doc:"Document the generator reads"`
	History bool   `json:"history" doc:"Whether runs are recorded"`
}

// RegisterHealthEndpoint registers the health check endpoint
func RegisterHealthEndpoint(api huma.API, cfg *config.Config, metrics *telemetry.Metrics) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/v0/health",
		Summary:     "Health check",
		Description: "Check the health status of the generator service",
		Tags:        []string{"health"},
	}, func(ctx context.Context, _ *struct{}) (*Response[HealthBody], error) {
		if metrics != nil {
			metrics.Up.Record(ctx, 1)
		}
		return &Response[HealthBody]{
			Body: HealthBody{
				Status:  "ok",
				Input:   cfg.Input,
				History: cfg.DatabaseType != config.DatabaseTypeNone,
			},
		}, nil
	})
}
