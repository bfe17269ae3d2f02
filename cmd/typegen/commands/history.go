package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndlano/taxonomy-typegen/internal/config"
)

func newHistoryCommand(opts *options) *cobra.Command {
	var (
		limit  int
		cursor string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs, newest first",
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
			if cfg.DatabaseType == config.DatabaseTypeNone {
				return fmt.Errorf("run history is disabled (database type %q)", cfg.DatabaseType)
			}
			db, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer db.Close()

			runs, next, err := db.List(cmd.Context(), cursor, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFINISHED\tAPI VERSION\tSCHEMAS\tCHANGED")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n",
					run.ID, run.FinishedAt.Format(time.RFC3339), run.APIVersion, len(run.SchemaNames), run.Changed)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if next != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMore runs: typegen history --cursor %s\n", next)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Show runs older than this run ID")
	return cmd
}
