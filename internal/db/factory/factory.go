// Package factory opens the card store selected in configuration.
package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/config"
	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/db/memory"
	"github.com/alexwilson/cardex/internal/db/mongo"
	"github.com/alexwilson/cardex/internal/db/postgres"
	"github.com/alexwilson/cardex/internal/transport/ygoprodeck"
)

// OpenCardStore creates the store for cfg.Driver. locale orders card names
// for the mongo and memory drivers; postgres uses its own collation setting.
func OpenCardStore(ctx context.Context, cfg config.DatabaseConfig, locale string, logger *zap.Logger) (db.CardStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongo.NewStore(ctx, mongo.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Locale:     locale,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MaxConnLifetime: time.Duration(cfg.Postgres.MaxConnLifetimeSec) * time.Second,
			Collation:       cfg.Postgres.Collation,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		store := memory.NewStore(locale)
		if cfg.Memory.SeedFile != "" {
			n, err := seed(ctx, store, cfg.Memory.SeedFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Seeded in-memory card store", zap.String("file", cfg.Memory.SeedFile), zap.Int("cards", n))
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// seed loads a saved cardinfo.php payload. Invalid cards are skipped.
func seed(ctx context.Context, store db.CardWriter, path string) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	cards, err := ygoprodeck.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	inserted := 0
	for i := range cards {
		if cards[i].Validate() != nil {
			continue
		}
		ok, err := store.InsertCardIfAbsent(ctx, &cards[i])
		if err != nil {
			return inserted, fmt.Errorf("seed card %d: %w", cards[i].ID, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
