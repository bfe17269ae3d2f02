package v0_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/stretchr/testify/assert"

	v0 "github.com/ndlano/taxonomy-typegen/internal/api/handlers/v0"
	"github.com/ndlano/taxonomy-typegen/internal/config"
)

func TestHealthEndpoint(t *testing.T) {
	// Test cases
	testCases := []struct {
		name         string
		config       *config.Config
		expectedBody []string
	}{
		{
			name: "returns health status with history enabled",
			config: &config.Config{
				Input:        "./taxonomy-api.json",
				DatabaseType: config.DatabaseTypeSQLite,
			},
			expectedBody: []string{`"status":"ok"`, `"input":"./taxonomy-api.json"`, `"history":true`},
		},
		{
			name: "returns health status with history disabled",
			config: &config.Config{
				Input:        "https://example.com/v3/api-docs",
				DatabaseType: config.DatabaseTypeNone,
			},
			expectedBody: []string{`"status":"ok"`, `"history":false`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Create a new test API
			mux := http.NewServeMux()
			api := humago.New(mux, huma.DefaultConfig("Test API", "1.0.0"))

			// Register the health endpoint
			v0.RegisterHealthEndpoint(api, tc.config, nil)

			req := httptest.NewRequest(http.MethodGet, "/v0/health", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			// Since Huma adds a $schema field, we'll check individual fields
			body := w.Body.String()
			for _, want := range tc.expectedBody {
				assert.Contains(t, body, want)
			}
		})
	}
}
