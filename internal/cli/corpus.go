package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swf-translator/internal/atomicfile"
	"swf-translator/internal/pipeline"
	"swf-translator/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) corpusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Exchange the string store with translators as TSV or XLSX",
	}
	cmd.PersistentFlags().StringVar(&format, "format", "", "file format: tsv or xlsx (default from the file extension)")

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write every string and its translation to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := pipeline.OpenStore(a.workspace())
			if err != nil {
				return err
			}
			f, err := corpusFormat(format, args[0])
			if err != nil {
				return err
			}
			switch f {
			case store.FormatXLSX:
				err = s.ExportXLSX(args[0])
			default:
				var buf bytes.Buffer
				if err = s.ExportTSV(&buf); err == nil {
					err = atomicfile.WriteFile(args[0], buf.Bytes(), 0o644)
				}
			}
			if err != nil {
				return fmt.Errorf("export corpus: %w", err)
			}
			log.Info().Str("file", args[0]).Str("format", f).Int("strings", s.Len()).Msg("Corpus exported")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d strings to %s\n", cyan("Exported"), s.Len(), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Read translations from a file back into the string store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, path, err := pipeline.OpenStore(a.workspace())
			if err != nil {
				return err
			}
			f, err := corpusFormat(format, args[0])
			if err != nil {
				return err
			}
			var n int
			switch f {
			case store.FormatXLSX:
				n, err = s.ImportXLSX(args[0])
			default:
				var r *os.File
				if r, err = os.Open(args[0]); err == nil {
					n, err = s.ImportTSV(r)
					r.Close()
				}
			}
			if err != nil {
				return fmt.Errorf("import corpus: %w", err)
			}
			if s.Phase == store.PhaseGathered && len(s.Missing()) == 0 {
				s.Phase = store.PhaseTranslated
			}
			if err := s.Save(path); err != nil {
				return fmt.Errorf("save string store: %w", err)
			}
			log.Info().Str("file", args[0]).Int("translations", n).Msg("Corpus imported")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d translations, %s still missing\n",
				cyan("Imported"), n, yellow(len(s.Missing())))
			return nil
		},
	})

	return cmd
}

func corpusFormat(flag, path string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case store.FormatTSV, store.FormatXLSX:
		return f, nil
	case "":
		return store.FormatTSV, nil
	}
	return "", fmt.Errorf("unsupported corpus format %q, use tsv or xlsx", f)
}
