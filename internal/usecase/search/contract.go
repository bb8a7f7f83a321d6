package search

import (
	"context"

	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// Repository executes a compiled predicate against the card store.
// Results are ordered by collated name, ties broken by id.
type Repository interface {
	Search(ctx context.Context, p predicate.Predicate, offset, limit int) ([]card.Card, error)
}
