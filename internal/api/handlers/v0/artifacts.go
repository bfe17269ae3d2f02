package v0

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ndlano/taxonomy-typegen/internal/service"
)

// ArtifactInput represents the input for reading a generated module
type ArtifactInput struct {
	Name string `path:"name" enum:"types,reexport" doc:"Module to return"`
}

// ArtifactOutput is the raw TypeScript text of a generated module
type ArtifactOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// RegisterArtifactsEndpoint registers the endpoint serving the last generated modules
func RegisterArtifactsEndpoint(api huma.API, generator service.GeneratorService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-artifact",
		Method:      http.MethodGet,
		Path:        "/v0/artifacts/{name}",
		Summary:     "Get a generated module",
		Description: "Get the TypeScript text written by the last successful run",
		Tags:        []string{"generate"},
	}, func(_ context.Context, input *ArtifactInput) (*ArtifactOutput, error) {
		data, err := generator.Artifact(input.Name)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoArtifact):
				return nil, huma.Error404NotFound("Nothing has been generated yet")
			case errors.Is(err, service.ErrUnknownArtifact):
				return nil, huma.Error404NotFound("Unknown artifact")
			}
			return nil, huma.Error500InternalServerError("Failed to read artifact", err)
		}
		return &ArtifactOutput{
			ContentType: "text/plain; charset=utf-8",
			Body:        data,
		}, nil
	})
}
