package cardex

import (
	"context"
	"fmt"
	"time"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/search/filter"
)

// CardService loads, counts and stores single cards.
type CardService struct {
	cards   cardUseCase
	storage cardStorage
	obs     *observer
}

// Get returns the card with id or ErrCardNotFound.
func (s *CardService) Get(ctx context.Context, id int64) (c Card, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_card", start, err) }()

	dc, err := s.cards.Get(ctx, id)
	if err != nil {
		return Card{}, err
	}
	return fromInternalCard(dc), nil
}

// Count returns the number of cards matching filters. Filters use the
// same names and values as SearchBuilder.Where.
func (s *CardService) Count(ctx context.Context, filters map[string]string) (n int64, err error) {
	start := time.Now()
	defer func() { s.obs.observe("count", start, err) }()

	p, err := filter.Compile(filter.Spec(filters))
	if err != nil {
		return 0, fmt.Errorf("compile filters: %w", err)
	}
	n, err = s.storage.Count(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return n, nil
}

// InsertIfAbsent stores c unless its id is taken. It reports whether the
// card was written. Cards failing validation return ErrInvalidCard.
func (s *CardService) InsertIfAbsent(ctx context.Context, c Card) (inserted bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("insert", start, err) }()

	dc := toInternalCard(c)
	dc.Normalize()
	if err = dc.Validate(); err != nil {
		return false, err
	}
	inserted, err = s.storage.InsertIfAbsent(ctx, &dc)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return inserted, nil
}
