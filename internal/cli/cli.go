package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"swf-translator/internal/config"
	"swf-translator/internal/filewalker"
	"swf-translator/internal/pipeline"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries the loaded configuration and persistent flags to every command.
type app struct {
	cfg *config.Config

	dir      string
	store    string
	encoding string
	verbose  bool
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "swf-translator",
		Short: "Translate text and scripts exported from SWF files",
		Long: `Extracts translatable strings from JPEXS exports of a Flash movie
(texts/*.txt and scripts/*.as), translates them offline or with Microsoft
Translator, and writes the translations back into the exported files.

Run the phases in order: gather, translate, export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.dir, "dir", "d", ".", "export directory containing texts/ and scripts/")
	flags.StringVar(&a.store, "store", "", "string store file (default $STORE_FILE, relative to --dir)")
	flags.StringVar(&a.encoding, "encoding", "", "asset encoding: utf-8, shift_jis or euc-jp (default $ASSET_ENCODING)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(a.gatherCmd())
	rootCmd.AddCommand(a.translateCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.corpusCmd())
	rootCmd.AddCommand(a.statusCmd())

	return rootCmd
}

func (a *app) init() error {
	if a.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	a.cfg = config.Load()
	if a.store != "" {
		a.cfg.StoreFile = a.store
	}
	if a.encoding != "" {
		a.cfg.AssetEncoding = a.encoding
	}
	return a.cfg.Validate()
}

func (a *app) workspace() pipeline.Workspace {
	return pipeline.Workspace{
		Layout: filewalker.Layout{
			Root:       a.dir,
			TextsDir:   a.cfg.TextsDir,
			ScriptsDir: a.cfg.ScriptsDir,
		},
		StorePath: a.cfg.StoreFile,
		Workers:   a.cfg.WorkerCount,
	}
}

// setupContext returns a context cancelled on SIGINT or SIGTERM.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
