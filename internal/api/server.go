package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ndlano/taxonomy-typegen/internal/api/router"
	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

// Server is the preview server behind `typegen serve`. It triggers runs,
// serves the last generated modules and the run history, and exposes
// /metrics.
type Server struct {
	input  string
	server *http.Server
}

// NewServer wires the v0 API for generator onto a new HTTP server
func NewServer(cfg *config.Config, generator service.GeneratorService, metrics *telemetry.Metrics) *Server {
	mux := http.NewServeMux()
	router.NewHumaAPI(cfg, generator, mux, metrics)

	return &Server{
		input: cfg.Input,
		server: &http.Server{
			Addr:              cfg.ServerAddress,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called, then returns http.ErrServerClosed
func (s *Server) Start() error {
	log.Printf("Preview server for %s listening on %s", s.input, s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight requests, bounded by ctx
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
