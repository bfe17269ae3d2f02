package v0

import (
	"log"
	"net/http"

	_ "github.com/swaggo/files"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ndlano/taxonomy-typegen/internal/service"
)

// SwaggerHandler returns a handler that serves the Swagger UI for the input document
func SwaggerHandler() http.HandlerFunc {
	handler := httpSwagger.Handler(
		httpSwagger.URL("/v0/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
	)
	return func(w http.ResponseWriter, r *http.Request) {
		// When accessed directly, redirect to the UI path
		if r.URL.Path == "/v0/swagger" {
			http.Redirect(w, r, "/v0/swagger/", http.StatusFound)
			return
		}
		handler.ServeHTTP(w, r)
	}
}

// SwaggerJSONHandler serves the input document as JSON
func SwaggerJSONHandler(generator service.GeneratorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := generator.SourceDocument(r.Context())
		if err != nil {
			log.Printf("Failed to load input document: %v", err)
			http.Error(w, "Failed to load input document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}
}
