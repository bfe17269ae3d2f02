package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ndlano/taxonomy-typegen/internal/config"
)

func newValidateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile every component schema without writing anything",
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
			// Validation never records a run
			cfg.DatabaseType = config.DatabaseTypeNone
			svc, closeStore, err := newService(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer closeStore()

			report, err := svc.Validate(cmd.Context())
			if report == nil {
				return err
			}
			for _, failure := range report.Failures {
				log.Printf("  %s: %v", failure.Name, failure.Err)
			}
			if err != nil {
				return err
			}
			log.Printf("%s: %d component schemas compile", report.Source, report.Schemas)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "OpenAPI document path or URL")
	return cmd
}
