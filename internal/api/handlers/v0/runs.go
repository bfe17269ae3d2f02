package v0

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/ndlano/taxonomy-typegen/internal/database"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// ListRunsInput represents the input for listing runs
type ListRunsInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor (UUID)" format:"uuid" required:"false"`
	Limit  int    `query:"limit" doc:"Number of items per page" default:"30" minimum:"1" maximum:"100"`
}

// ListRunsBody represents the paginated run list response body
type ListRunsBody struct {
	Runs     []*model.Run `json:"runs" doc:"Recorded generation runs, newest first"`
	Metadata *Metadata    `json:"metadata,omitempty" doc:"Pagination metadata"`
}

// RunDetailInput represents the input for getting a run
type RunDetailInput struct {
	ID string `path:"id" doc:"Run ID (UUID)" format:"uuid"`
}

// RegisterRunsEndpoints registers the run history endpoints
func RegisterRunsEndpoints(api huma.API, generator service.GeneratorService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-runs",
		Method:      http.MethodGet,
		Path:        "/v0/runs",
		Summary:     "List generation runs",
		Description: "Get a paginated list of recorded generation runs",
		Tags:        []string{"runs"},
	}, func(ctx context.Context, input *ListRunsInput) (*Response[ListRunsBody], error) {
		// Validate cursor if provided
		if input.Cursor != "" {
			if _, err := uuid.Parse(input.Cursor); err != nil {
				return nil, huma.Error400BadRequest("Invalid cursor parameter")
			}
		}

		runs, nextCursor, err := generator.List(ctx, input.Cursor, input.Limit)
		if err != nil {
			if errors.Is(err, service.ErrHistoryDisabled) {
				return nil, huma.Error503ServiceUnavailable("Run history is disabled")
			}
			return nil, huma.Error500InternalServerError("Failed to list runs", err)
		}
		if runs == nil {
			runs = []*model.Run{}
		}

		body := ListRunsBody{
			Runs: runs,
		}
		if nextCursor != "" {
			body.Metadata = &Metadata{
				NextCursor: nextCursor,
				Count:      len(runs),
			}
		}
		return &Response[ListRunsBody]{
			Body: body,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-run",
		Method:      http.MethodGet,
		Path:        "/v0/runs/{id}",
		Summary:     "Get a generation run",
		Description: "Get the record of a single generation run",
		Tags:        []string{"runs"},
	}, func(ctx context.Context, input *RunDetailInput) (*Response[model.Run], error) {
		run, err := generator.GetByID(ctx, input.ID)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrNotFound):
				return nil, huma.Error404NotFound("Run not found")
			case errors.Is(err, service.ErrHistoryDisabled):
				return nil, huma.Error503ServiceUnavailable("Run history is disabled")
			}
			return nil, huma.Error500InternalServerError("Failed to get run", err)
		}
		return &Response[model.Run]{
			Body: *run,
		}, nil
	})
}
