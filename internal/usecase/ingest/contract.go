package ingest

import (
	"context"

	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/transport/ygoprodeck"
)

// Source fetches upstream card pages.
type Source interface {
	FetchPage(ctx context.Context, offset, num int) (ygoprodeck.Page, error)
}

// Writer stores cards that are not yet present.
type Writer interface {
	InsertIfAbsent(ctx context.Context, c *domcard.Card) (bool, error)
}

// Invalidator drops cached result pages after new cards land.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
