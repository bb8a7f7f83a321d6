package mongo

import (
	"context"
	"fmt"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/alexwilson/cardex/internal/db"
)

// Compile-time check: Store implements db.CardStore.
var _ db.CardStore = (*Store)(nil)

const disconnectTimeout = 5 * time.Second

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI        string
	Database   string
	Collection string
	// Locale selects the collation used for name ordering, e.g. "en".
	Locale string
}

// Store implements db.CardStore over a MongoDB collection.
type Store struct {
	client    *mongodriver.Client
	coll      *mongodriver.Collection
	collation *options.Collation
}

// NewStore connects to MongoDB. The driver connects lazily, use
// WaitForReady to block until the server answers.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("database and collection are required")
	}

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{
		client:    client,
		coll:      client.Database(cfg.Database).Collection(cfg.Collection),
		collation: nameCollation(cfg.Locale),
	}, nil
}

// nameCollation compares at primary strength: case and diacritics are ignored.
func nameCollation(locale string) *options.Collation {
	if locale == "" {
		locale = "en"
	}
	return &options.Collation{Locale: locale, Strength: 1}
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	_ = s.client.Disconnect(ctx)
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
