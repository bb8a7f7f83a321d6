package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/alexwilson/cardex/internal/db"
)

// Compile-time check: Store implements db.CardStore.
var _ db.CardStore = (*Store)(nil)

// DefaultCollation orders names ignoring case and diacritics. EnsureSchema
// creates it; any other configured collation must already exist.
const DefaultCollation = "cardex_ci"

// defaultCollationDDL defines DefaultCollation: ICU root locale at primary
// strength, nondeterministic so "Beast" and "beast" compare equal and the
// id tie-break decides. Requires PostgreSQL 12+.
const defaultCollationDDL = `CREATE COLLATION IF NOT EXISTS "cardex_ci" ` +
	`(provider = icu, locale = 'und-u-ks-level1', deterministic = false);`

// Config holds connection parameters for a PostgreSQL store.
type Config struct {
	DSN             string
	MaxConns        int
	MaxConnLifetime time.Duration
	// Collation orders card names. Empty selects DefaultCollation.
	Collation string
}

// Store implements db.CardStore. Queries go through bun, while
// health checks and DDL use the pgx pool directly.
type Store struct {
	pool      *pgxpool.Pool
	bun       *bun.DB
	collation string
}

// NewStore parses the DSN and opens both connection pools.
// Neither pool dials until first use.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config validation
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	s := newStore(cfg.DSN, cfg.Collation)
	s.pool = pool
	return s, nil
}

func newStore(dsn, collation string) *Store {
	if collation == "" {
		collation = DefaultCollation
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &Store{
		bun:       bun.NewDB(sqldb, pgdialect.New()),
		collation: collation,
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down both pools.
func (s *Store) Close() {
	_ = s.bun.Close()
	if s.pool != nil {
		s.pool.Close()
	}
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
