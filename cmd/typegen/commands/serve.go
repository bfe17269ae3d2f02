package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndlano/taxonomy-typegen/internal/api"
	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

func newServeCommand(opts *options) *cobra.Command {
	var (
		addr     string
		schedule string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preview API, run history and metrics",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return fmt.Errorf("%w: %w", ErrInvocation, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ServerAddress = addr
			}
			if cmd.Flags().Changed("schedule") {
				cfg.Schedule = schedule
			}
			if cfg.DatabaseType == config.DatabaseTypeNone {
				// The preview server always lists runs; keep them for the process lifetime only
				cfg.DatabaseType = config.DatabaseTypeMemory
			}

			log.Printf("Starting typegen preview server v%s (commit: %s)", opts.build.Version, opts.build.GitCommit)

			shutdownTelemetry, metrics, err := telemetry.InitMetrics(cfg.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize metrics: %w", err)
			}
			defer func() {
				if err := shutdownTelemetry(context.Background()); err != nil {
					log.Printf("Failed to shutdown telemetry: %v", err)
				}
			}()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			svc, closeStore, err := newService(ctx, cfg, metrics)
			if err != nil {
				return err
			}
			defer closeStore()

			if cfg.Schedule != "" {
				job := service.NewRegenerationJob(svc, cfg.Schedule)
				if err := job.Start(ctx); err != nil {
					return err
				}
				defer func() {
					if err := job.Stop(); err != nil {
						log.Printf("Failed to stop regeneration job: %v", err)
					}
				}()
			}

			server := api.NewServer(cfg, svc, metrics)

			// Start server in a goroutine so it doesn't block signal handling
			serverErr := make(chan error, 1)
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal to gracefully shutdown the server
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-serverErr:
				return fmt.Errorf("failed to start server: %w", err)
			case <-quit:
			case <-ctx.Done():
			}
			log.Println("Shutting down server...")
			cancel()

			// Create context with timeout for shutdown
			sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer scancel()

			if err := server.Shutdown(sctx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
			}
			log.Println("Server exiting")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from TYPEGEN_SERVER_ADDRESS)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression with seconds for periodic regeneration")
	return cmd
}
