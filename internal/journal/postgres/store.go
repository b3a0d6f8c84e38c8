// Package postgres provides a Postgres-backed submission journal.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quaydigital/searchping/internal/journal"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// StoreConfig controls the Postgres connection pool used for journal rows.
type StoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes journal entries into Postgres.
type Store struct {
	pool  execCloser
	table string
}

// NewStore creates a Postgres-backed journal using the provided config.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("journal.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "submissions"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewStoreWithPool(pool execCloser, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "submissions"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Record inserts one journal row.
func (s *Store) Record(ctx context.Context, entry journal.Entry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("journal store is not configured")
	}
	if entry.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	urlsJSON, err := json.Marshal(normalizeURLs(entry.URLs))
	if err != nil {
		return fmt.Errorf("marshal urls: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	event_id,
	source,
	topic,
	outcome,
	urls,
	provider,
	provider_error,
	sitemap_invoked,
	sitemap_error,
	received_at,
	duration_ms
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)`, s.table)

	args := []any{
		entry.EventID,
		entry.Source,
		entry.Topic,
		entry.Outcome,
		urlsJSON,
		entry.Provider,
		entry.ProviderError,
		entry.SitemapInvoked,
		entry.SitemapError,
		entry.ReceivedAt,
		entry.DurationMs,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func normalizeURLs(urls []string) []string {
	if len(urls) == 0 {
		return []string{}
	}
	return urls
}
