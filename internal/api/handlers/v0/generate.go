package v0

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// SchemaFailure describes one component schema that failed to compile
type SchemaFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ValidationBody represents the validate response body
type ValidationBody struct {
	Source   string          `json:"source" doc:"Document that was checked"`
	Schemas  int             `json:"schemas" doc:"Number of component schemas"`
	Valid    bool            `json:"valid"`
	Failures []SchemaFailure `json:"failures,omitempty"`
}

// RegisterGenerateEndpoints registers the endpoints that run the generator
func RegisterGenerateEndpoints(api huma.API, generator service.GeneratorService) {
	huma.Register(api, huma.Operation{
		OperationID: "generate",
		Method:      http.MethodPost,
		Path:        "/v0/generate",
		Summary:     "Generate TypeScript modules",
		Description: "Read the input document, write the types and re-export modules and record the run",
		Tags:        []string{"generate"},
	}, func(ctx context.Context, _ *struct{}) (*Response[model.RunResult], error) {
		result, err := generator.Generate(ctx)
		if err != nil {
			return nil, generationError(err)
		}
		return &Response[model.RunResult]{
			Body: *result,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate",
		Method:      http.MethodPost,
		Path:        "/v0/validate",
		Summary:     "Validate component schemas",
		Description: "Compile every component schema of the input document without writing anything",
		Tags:        []string{"generate"},
	}, func(ctx context.Context, _ *struct{}) (*Response[ValidationBody], error) {
		report, err := generator.Validate(ctx)
		if report == nil {
			return nil, generationError(err)
		}
		body := ValidationBody{
			Source:  report.Source,
			Schemas: report.Schemas,
			Valid:   len(report.Failures) == 0,
		}
		for _, f := range report.Failures {
			body.Failures = append(body.Failures, SchemaFailure{Name: f.Name, Error: f.Err.Error()})
		}
		if err != nil && body.Valid {
			return nil, generationError(err)
		}
		return &Response[ValidationBody]{
			Body: body,
		}, nil
	})
}

func generationError(err error) error {
	switch {
	case errors.Is(err, openapi.ErrRead),
		errors.Is(err, openapi.ErrParse),
		errors.Is(err, openapi.ErrInvalidSchema),
		errors.Is(err, tsgen.ErrGenerate):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return huma.Error500InternalServerError("Failed to generate types", err)
	}
}
