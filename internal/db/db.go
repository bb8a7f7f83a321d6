package db

import (
	"context"
	"time"

	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// CardStore is the card catalog facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type CardStore interface {
	Pinger
	CardReader
	CardWriter
	SchemaManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CardQuery is a compiled predicate plus a pagination window.
// Results are ordered by name under the backend's case-insensitive
// collation, ties broken by ascending id.
type CardQuery struct {
	Predicate predicate.Predicate
	Offset    int
	Limit     int
}

// CardReader executes read queries over the catalog.
type CardReader interface {
	FindCards(ctx context.Context, q *CardQuery) ([]card.Card, error)
	// GetCard returns ErrKeyNotFound when no card carries the id.
	GetCard(ctx context.Context, id int64) (card.Card, error)
	CountCards(ctx context.Context, p predicate.Predicate) (int64, error)
}

// CardWriter adds cards to the catalog.
type CardWriter interface {
	// InsertCardIfAbsent stores c unless a card with the same id exists.
	// Reports whether a new record was written.
	InsertCardIfAbsent(ctx context.Context, c *card.Card) (bool, error)
}

// SchemaManager creates the indexes (or tables) the queries rely on.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}
