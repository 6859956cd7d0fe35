package cli

import (
	"context"
	"fmt"

	"swf-translator/internal/pipeline"
	"swf-translator/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the phase and translation progress of the string store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			r, err := pipeline.Status(a.workspace())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cyan("String store"), r.StorePath)
			summaryLine(out, "phase", r.Phase)
			summaryLine(out, "languages", fmt.Sprintf("%s -> %s", r.Settings.SourceLanguage, r.Settings.TargetLanguage))
			summaryLine(out, "files", fmt.Sprintf("%d (%d texts, %d scripts)", r.Files, r.TextFiles, r.ScriptFiles))
			summaryLine(out, "strings", r.Strings)
			progress := fmt.Sprintf("%d/%d", r.Translated, r.Strings)
			if r.Complete() {
				summaryLine(out, "translated", green(progress))
			} else {
				summaryLine(out, "translated", red(progress))
			}

			if n, kind, err := a.memorySize(ctx, r.Settings); err != nil {
				log.Warn().Err(err).Msg("Failed to read translation memory")
			} else {
				summaryLine(out, "memory", fmt.Sprintf("%d azure entries (%s)", n, kind))
			}
			return nil
		},
	}
}

// memorySize counts the translation memory entries the azure backend would
// reuse for the store's language pair.
func (a *app) memorySize(ctx context.Context, settings store.Settings) (int64, string, error) {
	persister, closePersister, err := a.cachePersister(ctx)
	if err != nil {
		return 0, "", err
	}
	defer closePersister()

	kind := "file"
	if a.cfg.DatabaseURL != "" {
		kind = "postgres"
	}
	ns := memoryNamespace("azure",
		firstNonEmpty(settings.SourceLanguage, a.cfg.SourceLanguage),
		firstNonEmpty(settings.TargetLanguage, a.cfg.TargetLanguage))
	n, err := persister.Count(ctx, ns)
	return n, kind, err
}
