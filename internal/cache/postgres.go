package cache

import (
	"context"
	_ "embed"
	"fmt"

	"swf-translator/internal/dbgen"
	"swf-translator/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// PostgresStore persists cached translations in the translation_cache table.
type PostgresStore struct {
	db      dbgen.DBTX
	queries *dbgen.Queries
}

// NewPostgresStore creates a persister over an open connection or pool.
func NewPostgresStore(db dbgen.DBTX) *PostgresStore {
	return &PostgresStore{db: db, queries: dbgen.New(db)}
}

// Connect opens a pool for databaseURL and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// Migrate creates the cache table when it does not exist.
func (ps *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := ps.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate translation cache: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Load(ctx context.Context, namespace string) ([]Entry, error) {
	rows, err := ps.queries.ListCachedTranslations(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("list cached translations: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Source: row.Source, Translated: row.Translated})
	}
	return entries, nil
}

func (ps *PostgresStore) Save(ctx context.Context, namespace string, entries []Entry) error {
	for _, e := range entries {
		err := ps.queries.UpsertCachedTranslation(ctx, dbgen.UpsertCachedTranslationParams{
			Namespace:  namespace,
			Hash:       textutil.Hash(e.Source),
			Source:     e.Source,
			Translated: e.Translated,
		})
		if err != nil {
			return fmt.Errorf("upsert cached translation: %w", err)
		}
	}
	return nil
}

func (ps *PostgresStore) Count(ctx context.Context, namespace string) (int64, error) {
	n, err := ps.queries.CountCachedTranslations(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("count cached translations: %w", err)
	}
	return n, nil
}
