package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

var (
	cacheKeyPrefix = domain.KeyPrefix + "pages:"
	generationKey  = cacheKeyPrefix + "generation"
)

// searcher is the wrapped page source.
type searcher interface {
	Search(ctx context.Context, p predicate.Predicate, offset, limit int) ([]card.Card, error)
}

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cache stores result pages in a key-value store.
// Keys carry a generation counter; Invalidate bumps it after ingestion so
// stale pages are never read and simply expire.
type Cache struct {
	inner      searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"bypass"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached page or calls the inner searcher.
// Cache failures are logged and never returned.
func (c *Cache) Search(ctx context.Context, p predicate.Predicate, offset, limit int) ([]card.Card, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		c.incCache("bypass")
		return c.inner.Search(ctx, p, offset, limit)
	}

	key := cacheKey(gen, p, offset, limit)
	if cards, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return cards, nil
	}

	c.incCache("miss")

	cards, err := c.inner.Search(ctx, p, offset, limit)
	if err != nil {
		return nil, err
	}

	c.putToCache(ctx, key, cards)
	return cards, nil
}

// Invalidate retires every cached page.
func (c *Cache) Invalidate(ctx context.Context) error {
	if _, err := c.store.Incr(ctx, generationKey); err != nil {
		return fmt.Errorf("bump page cache generation: %w", err)
	}
	return nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) generation(ctx context.Context) (string, bool) {
	data, err := c.store.Get(ctx, generationKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "0", true
		}
		c.logger.Warn("Failed to read page cache generation", zap.Error(err))
		return "", false
	}
	if _, err := strconv.ParseInt(string(data), 10, 64); err != nil {
		c.logger.Warn("Invalid page cache generation", zap.ByteString("value", data))
		return "", false
	}
	return string(data), true
}

func cacheKey(gen string, p predicate.Predicate, offset, limit int) string {
	h := sha256.Sum256([]byte(p.String() + "|" + strconv.Itoa(offset) + "|" + strconv.Itoa(limit)))
	return cacheKeyPrefix + gen + ":" + hex.EncodeToString(h[:])
}

func (c *Cache) getFromCache(ctx context.Context, key string) ([]card.Card, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	cards, err := decodePage(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached page", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return cards, true
}

func (c *Cache) putToCache(ctx context.Context, key string, cards []card.Card) {
	data, err := encodePage(cards)
	if err != nil {
		c.logger.Warn("Failed to encode page", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
	}
}
