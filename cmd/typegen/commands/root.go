// Package commands implements the typegen command line
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ndlano/taxonomy-typegen/internal/config"
	"github.com/ndlano/taxonomy-typegen/internal/database"
	"github.com/ndlano/taxonomy-typegen/internal/service"
	"github.com/ndlano/taxonomy-typegen/internal/telemetry"
)

// ErrInvocation is returned when the command line has stray arguments
var ErrInvocation = errors.New("invalid invocation")

// BuildInfo is injected by the main package
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

type options struct {
	build      BuildInfo
	configPath string
	verbose    bool

	input          string
	typesOutput    string
	reexportOutput string
	validate       bool
	strictArgs     bool
}

// NewRootCommand builds the typegen command tree. Running it without a
// subcommand generates the TypeScript modules.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &options{build: build}

	root := &cobra.Command{
		Use:   "typegen [ignored]",
		Short: "Generate TypeScript types from the taxonomy OpenAPI document",
		Long: "typegen reads taxonomy-api.json, rewrites a few schema shapes the TypeScript\n" +
			"output cannot express, and writes taxonomy-api-openapi.ts plus a module\n" +
			"re-exporting every component schema under its own name.",
		Args:          opts.generateArgs,
		RunE:          opts.runGenerate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file (default "+config.DefaultFile+" when present)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every schema rewrite")
	opts.addGenerateFlags(root)

	root.AddCommand(
		newGenerateCommand(opts),
		newValidateCommand(opts),
		newHistoryCommand(opts),
		newServeCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// load reads the configuration and applies the flags that were set
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if flags.Changed("input") {
		cfg.Input = o.input
	}
	if flags.Changed("types-out") {
		cfg.TypesOutput = o.typesOutput
	}
	if flags.Changed("reexport-out") {
		cfg.ReexportOutput = o.reexportOutput
	}
	if flags.Changed("validate") {
		cfg.Validate = o.validate
	}
	if cfg.Version == "dev" && o.build.Version != "" {
		cfg.Version = o.build.Version
	}
	return cfg, nil
}

// openStore opens the run history store, or returns nil when history is off
func openStore(ctx context.Context, cfg *config.Config) (database.Database, error) {
	if cfg.DatabaseType == config.DatabaseTypeNone {
		return nil, nil
	}
	return database.Open(ctx, database.ConnectionType(cfg.DatabaseType), cfg.DatabaseURL)
}

// newService wires the generator with an optional store. A store that cannot
// be opened disables history instead of failing the run.
func newService(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (service.GeneratorService, func(), error) {
	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Printf("Run history disabled: %v", err)
		db = nil
	}
	closeStore := func() {
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			log.Printf("Error closing run history store: %v", err)
		}
	}

	svc, err := service.NewGeneratorService(cfg, db, metrics)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return svc, closeStore, nil
}
