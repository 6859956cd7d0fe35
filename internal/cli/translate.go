package cli

import (
	"context"
	"fmt"

	"swf-translator/internal/cache"
	"swf-translator/internal/pipeline"
	"swf-translator/internal/store"
	"swf-translator/internal/translation"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type translateFlags struct {
	key         string
	endpoint    string
	region      string
	from        string
	to          string
	dictionary  string
	retranslate bool
	noCache     bool
}

func (a *app) translateCmd() *cobra.Command {
	var f translateFlags

	cmd := &cobra.Command{
		Use:       "translate <offline|azure>",
		Short:     "Translate the gathered strings with the offline dictionary or Microsoft Translator",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"offline", "azure"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			ws := a.workspace()
			settings, err := pipeline.StoreSettings(ws)
			if err != nil {
				return err
			}

			bar := newProgressBar("translating")
			backend, closeBackend, err := a.newBackend(ctx, args[0], f, settings, bar.Func())
			if err != nil {
				return err
			}
			defer closeBackend()

			result, err := pipeline.Translate(ctx, backend, pipeline.TranslateOptions{
				Workspace:   ws,
				Retranslate: f.retranslate,
			})
			bar.Finish(err == nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cyan("Translate complete"))
			summaryLine(out, "backend", result.Backend)
			summaryLine(out, "sent", result.Sent)
			summaryLine(out, "translated", green(fmt.Sprintf("%d/%d", result.Translated, result.Total)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.key, "azure-subscription-key", "", "Microsoft Translator key (default $AZURE_TRANSLATOR_KEY)")
	flags.StringVar(&f.endpoint, "azure-endpoint-url", "", "Microsoft Translator endpoint (default $AZURE_TRANSLATOR_ENDPOINT)")
	flags.StringVar(&f.region, "azure-subscription-region", "", "Azure resource region (default $AZURE_TRANSLATOR_REGION)")
	flags.StringVar(&f.from, "from", "", "source language (default: recorded at gather, then $SOURCE_LANGUAGE)")
	flags.StringVar(&f.to, "to", "", "target language (default: recorded at gather, then $TARGET_LANGUAGE)")
	flags.StringVar(&f.dictionary, "dictionary", "", "YAML glossary merged over the built-in one (default $DICTIONARY_FILE)")
	flags.BoolVar(&f.retranslate, "retranslate", false, "translate every string again, replacing existing translations")
	flags.BoolVar(&f.noCache, "no-cache", false, "skip the translation memory")

	return cmd
}

// newBackend builds the named backend. Languages come from the flags, then
// the store settings, then the configuration. The returned func releases any
// resources the backend holds.
func (a *app) newBackend(ctx context.Context, name string, f translateFlags, settings store.Settings, progress translation.ProgressFunc) (translation.Backend, func(), error) {
	noop := func() {}
	from := firstNonEmpty(f.from, settings.SourceLanguage, a.cfg.SourceLanguage)
	to := firstNonEmpty(f.to, settings.TargetLanguage, a.cfg.TargetLanguage)

	switch name {
	case "offline":
		dict, err := a.loadDictionary(f.dictionary)
		if err != nil {
			return nil, noop, err
		}
		log.Debug().Int("terms", dict.Len()).Msg("Loaded dictionary")
		return translation.NewOfflineTranslator(dict, progress), noop, nil

	case "azure":
		client, err := translation.NewAzureClient(translation.AzureOptions{
			Key:               firstNonEmpty(f.key, a.cfg.AzureKey),
			Region:            firstNonEmpty(f.region, a.cfg.AzureRegion),
			Endpoint:          firstNonEmpty(f.endpoint, a.cfg.AzureEndpoint),
			From:              from,
			To:                to,
			BatchSize:         a.cfg.BatchSize,
			MaxBatchChars:     a.cfg.MaxBatchChars,
			MaxRetries:        a.cfg.MaxRetries,
			Timeout:           a.cfg.RequestTimeout,
			RequestsPerSecond: a.cfg.RequestsPerSecond,
			Progress:          progress,
		})
		if err != nil {
			return nil, noop, err
		}
		if f.noCache {
			return client, noop, nil
		}

		persister, closePersister, err := a.cachePersister(ctx)
		if err != nil {
			return nil, noop, err
		}
		tc := cache.NewTranslationCache(persister, memoryNamespace(client.Name(), from, to))
		if err := tc.Preload(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to preload translation memory")
		}
		if f.retranslate {
			return translation.WithCacheRefresh(client, tc), closePersister, nil
		}
		return translation.WithCache(client, tc), closePersister, nil
	}
	return nil, noop, fmt.Errorf("unknown backend %q", name)
}

func (a *app) loadDictionary(path string) (*translation.Dictionary, error) {
	path = firstNonEmpty(path, a.cfg.DictionaryFile)
	if path == "" {
		return translation.DefaultDictionary()
	}
	return translation.LoadDictionary(path)
}

// cachePersister selects PostgreSQL when DATABASE_URL is set and the JSON
// file store otherwise.
func (a *app) cachePersister(ctx context.Context) (cache.Persister, func(), error) {
	if a.cfg.DatabaseURL == "" {
		log.Debug().Str("dir", a.cfg.CacheDir).Msg("Using file translation memory")
		return cache.NewFileStore(a.cfg.CacheDir), func() {}, nil
	}

	pool, err := cache.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	ps := cache.NewPostgresStore(pool)
	if err := ps.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return ps, pool.Close, nil
}

// memoryNamespace keeps translations of different engines and language pairs apart.
func memoryNamespace(backend, from, to string) string {
	return fmt.Sprintf("%s-%s-%s", backend, from, to)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
