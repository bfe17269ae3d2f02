package v0_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	v0 "github.com/ndlano/taxonomy-typegen/internal/api/handlers/v0"
	"github.com/ndlano/taxonomy-typegen/internal/openapi"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/tsgen"
	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

func TestGenerateEndpoint(t *testing.T) {
	testCases := []struct {
		name           string
		result         *model.RunResult
		err            error
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "successful run",
			result: &model.RunResult{
				Run: &model.Run{
					ID:          "01928f3a-7c4e-7000-8000-000000000001",
					SchemaNames: []string{"Node", "Context"},
					Changed:     true,
				},
				Diff:     model.SchemaDiff{Added: []string{"Context"}},
				Recorded: true,
			},
			expectedStatus: http.StatusOK,
			expectedBody: []string{
				`"id":"01928f3a-7c4e-7000-8000-000000000001"`,
				`"schema_names":["Node","Context"]`,
				`"added":["Context"]`,
				`"recorded":true`,
			},
		},
		{
			name:           "missing input",
			err:            fmt.Errorf("%w from ./taxonomy-api.json: file does not exist", openapi.ErrRead),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"failed to read schema document"},
		},
		{
			name:           "unsupported construct",
			err:            fmt.Errorf("%w: unknown type \"file\"", tsgen.ErrGenerate),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "write failure",
			err:            fmt.Errorf("%w ./taxonomy-api.ts: permission denied", service.ErrWrite),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{"Failed to generate types"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator := new(MockGeneratorService)
			generator.On("Generate", mock.Anything).Return(tc.result, tc.err)

			mux := http.NewServeMux()
			api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))
			v0.RegisterGenerateEndpoints(api, generator)

			req := httptest.NewRequest(http.MethodPost, "/v0/generate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			body := w.Body.String()
			for _, want := range tc.expectedBody {
				assert.Contains(t, body, want)
			}
			generator.AssertExpectations(t)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	testCases := []struct {
		name           string
		report         *service.ValidationReport
		err            error
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:           "valid document",
			report:         &service.ValidationReport{Source: "taxonomy-api.json", Schemas: 12},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"valid":true`, `"schemas":12`},
		},
		{
			name: "schema failures",
			report: &service.ValidationReport{
				Source:  "taxonomy-api.json",
				Schemas: 2,
				Failures: []*openapi.SchemaError{
					{Name: "Grade", Err: errors.New("unresolved $ref")},
				},
			},
			err:            fmt.Errorf("%w: Grade", openapi.ErrInvalidSchema),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"valid":false`, `"name":"Grade"`, `"error":"unresolved $ref"`},
		},
		{
			name:           "unparseable document",
			err:            fmt.Errorf("%w: taxonomy-api.json is not valid JSON", openapi.ErrParse),
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator := new(MockGeneratorService)
			generator.On("Validate", mock.Anything).Return(tc.report, tc.err)

			mux := http.NewServeMux()
			api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))
			v0.RegisterGenerateEndpoints(api, generator)

			req := httptest.NewRequest(http.MethodPost, "/v0/validate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			body := w.Body.String()
			for _, want := range tc.expectedBody {
				assert.Contains(t, body, want)
			}
		})
	}
}
