package cli

import (
	"fmt"

	"swf-translator/internal/parser"
	"swf-translator/internal/pipeline"
	"swf-translator/internal/store"
	"swf-translator/internal/textutil"

	"github.com/spf13/cobra"
)

func (a *app) gatherCmd() *cobra.Command {
	var (
		mode      string
		separator string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "gather",
		Short: "Extract translatable strings from the exported assets into the string store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			if mode == "" {
				mode = a.cfg.ActionScriptMode
			}
			m, err := parser.ParseMode(mode)
			if err != nil {
				return err
			}
			codec, err := textutil.NewCodec(a.cfg.AssetEncoding)
			if err != nil {
				return err
			}

			result, err := pipeline.Gather(ctx, pipeline.GatherOptions{
				Workspace: a.workspace(),
				Settings: store.Settings{
					SourceLanguage:   a.cfg.SourceLanguage,
					TargetLanguage:   a.cfg.TargetLanguage,
					ActionScriptMode: string(m),
					RecordSeparator:  separator,
					Encoding:         codec.Name(),
				},
				Force: force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cyan("Gather complete"))
			summaryLine(out, "files", result.Files)
			summaryLine(out, "occurrences", result.Occurrences)
			summaryLine(out, "unique", green(result.Unique))
			if result.CarriedOver > 0 {
				summaryLine(out, "carried over", result.CarriedOver)
			}
			summaryLine(out, "store", result.StorePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "ActionScript extraction mode: heuristic, japanese or html (default $ACTIONSCRIPT_MODE)")
	cmd.Flags().StringVar(&separator, "separator", parser.DefaultRecordSeparator, "record separator line of plain text exports")
	cmd.Flags().BoolVar(&force, "force", false, "gather even if the store was already exported")

	return cmd
}
