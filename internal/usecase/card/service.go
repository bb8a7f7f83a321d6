package card

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/alexwilson/cardex/internal/domain"
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/metrics"
)

// DefaultCacheSize is used when New receives a non-positive size.
const DefaultCacheSize = 4096

// Service serves card lookups through an in-process LRU. Cards never
// change after ingestion, so entries are not expired.
type Service struct {
	repo  Repository
	cache *lru.Cache
}

// New creates a card service caching up to size cards.
func New(repo Repository, size int) (*Service, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create card cache: %w", err)
	}
	return &Service{repo: repo, cache: cache}, nil
}

// Get returns the card with the given id or domain.ErrCardNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domcard.Card, error) {
	if id <= 0 {
		return domcard.Card{}, domain.ErrCardNotFound
	}
	if v, ok := s.cache.Get(id); ok {
		metrics.CardCacheTotal.WithLabelValues("hit").Inc()
		return v.(domcard.Card), nil
	}
	metrics.CardCacheTotal.WithLabelValues("miss").Inc()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCardNotFound) {
			return domcard.Card{}, err
		}
		return domcard.Card{}, fmt.Errorf("%w: get card %d: %w", domain.ErrStorageUnavailable, id, err)
	}
	s.cache.Add(id, c)
	return c, nil
}
