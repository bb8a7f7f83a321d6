package card

import (
	"context"

	domcard "github.com/alexwilson/cardex/internal/domain/card"
)

// Repository loads single cards by id.
type Repository interface {
	Get(ctx context.Context, id int64) (domcard.Card, error)
}
