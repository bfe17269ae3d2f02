package commands

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [ignored]",
		Short: "Write the types module and the re-export module",
		Long: "Reads the OpenAPI document, applies the schema rewrite rules and writes both\n" +
			"TypeScript modules. One positional argument is accepted and ignored; use\n" +
			"--strict-args to reject any.",
		Args: opts.generateArgs,
		RunE: opts.runGenerate,
	}
	opts.addGenerateFlags(cmd)
	return cmd
}

func (o *options) addGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.input, "input", "i", "", "OpenAPI document path or URL")
	flags.StringVar(&o.typesOutput, "types-out", "", "Path of the generated types module")
	flags.StringVar(&o.reexportOutput, "reexport-out", "", "Path of the generated re-export module")
	flags.BoolVar(&o.validate, "validate", false, "Compile every component schema before generating")
	flags.BoolVar(&o.strictArgs, "strict-args", false, "Reject any positional argument")
}

// generateArgs runs before any file is touched
func (o *options) generateArgs(cmd *cobra.Command, args []string) error {
	check := cobra.MaximumNArgs(1)
	if o.strictArgs {
		check = cobra.NoArgs
	}
	if err := check(cmd, args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvocation, err)
	}
	return nil
}

func (o *options) runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}
	svc, closeStore, err := newService(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := svc.Generate(cmd.Context())
	if err != nil {
		return err
	}

	run := result.Run
	if run.Changed {
		log.Printf("Generated %d schema aliases (run %s)", len(run.SchemaNames), run.ID)
	} else {
		log.Printf("Generated %d schema aliases, output unchanged (run %s)", len(run.SchemaNames), run.ID)
	}
	for _, rule := range slices.Sorted(maps.Keys(run.Edits)) {
		log.Printf("  %s: %d", rule, run.Edits[rule])
	}
	if len(result.Diff.Added) > 0 || len(result.Diff.Removed) > 0 {
		log.Printf("Schema changes since last run: +%d -%d", len(result.Diff.Added), len(result.Diff.Removed))
	}
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
	}
	if len(run.Edits) == 0 && len(cfg.Rules) > 0 {
		log.Printf("No schema matched the rules: %s", strings.Join(cfg.Rules, ", "))
	}
	return nil
}
