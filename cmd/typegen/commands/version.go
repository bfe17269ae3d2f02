package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			b := opts.build
			fmt.Fprintf(cmd.OutOrStdout(), "typegen %s (commit: %s, built: %s)\n", b.Version, b.GitCommit, b.BuildTime)
		},
	}
}
