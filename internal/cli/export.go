package cli

import (
	"fmt"
	"os"

	"swf-translator/internal/pipeline"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		fallback bool
		force    bool
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the translations back into the exported assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			plan, err := pipeline.PlanExport(ctx, pipeline.ExportOptions{
				Workspace:        a.workspace(),
				FallbackToSource: fallback,
				Force:            force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes && isTerminal(os.Stdin) {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Overwrite %d of %d asset files in %s?", plan.Changed(), len(plan.Files), a.dir),
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return fmt.Errorf("confirmation cancelled: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(out, yellow("Export cancelled, nothing was written"))
					return nil
				}
			}

			if err := plan.Commit(); err != nil {
				return err
			}

			fmt.Fprintln(out, cyan("Export complete"))
			summaryLine(out, "files", len(plan.Files))
			summaryLine(out, "rewritten", green(plan.Changed()))
			if n := len(plan.Untranslated); n > 0 {
				summaryLine(out, "untranslated", yellow(n))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fallback, "fallback-source", false, "keep the source text for strings without a translation")
	cmd.Flags().BoolVar(&force, "force", false, "export over modified assets or a store already exported")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
