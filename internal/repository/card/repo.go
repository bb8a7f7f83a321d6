package card

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain"
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// store is the consumer interface for card persistence (ISP).
type store interface {
	FindCards(ctx context.Context, q *db.CardQuery) ([]domcard.Card, error)
	GetCard(ctx context.Context, id int64) (domcard.Card, error)
	CountCards(ctx context.Context, p predicate.Predicate) (int64, error)
	InsertCardIfAbsent(ctx context.Context, c *domcard.Card) (bool, error)
}

// Repo implements usecase/search.Repository, usecase/card.Repository
// and usecase/ingest.Repository.
type Repo struct {
	store store
}

// New creates a card repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search returns the window [offset, offset+limit) of cards matching p.
func (r *Repo) Search(ctx context.Context, p predicate.Predicate, offset, limit int) ([]domcard.Card, error) {
	cards, err := r.store.FindCards(ctx, &db.CardQuery{Predicate: p, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("find cards where %s: %w", p, err)
	}
	if cards == nil {
		cards = []domcard.Card{}
	}
	return cards, nil
}

// Get loads a card by its external id.
func (r *Repo) Get(ctx context.Context, id int64) (domcard.Card, error) {
	c, err := r.store.GetCard(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcard.Card{}, domain.ErrCardNotFound
		}
		return domcard.Card{}, fmt.Errorf("get card %d: %w", id, err)
	}
	return c, nil
}

// Count returns the number of cards matching p.
func (r *Repo) Count(ctx context.Context, p predicate.Predicate) (int64, error) {
	n, err := r.store.CountCards(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("count cards where %s: %w", p, err)
	}
	return n, nil
}

// InsertIfAbsent stores c unless a card with the same id exists.
func (r *Repo) InsertIfAbsent(ctx context.Context, c *domcard.Card) (bool, error) {
	inserted, err := r.store.InsertCardIfAbsent(ctx, c)
	if err != nil {
		return false, fmt.Errorf("insert card %d: %w", c.ID, err)
	}
	return inserted, nil
}
