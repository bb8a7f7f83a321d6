// Package card holds the trading-card record served by the catalogue.
package card

import (
	"fmt"
	"strings"

	"github.com/alexwilson/cardex/internal/domain"
)

// UnknownRace is stored when the upstream source omits a card's race.
const UnknownRace = "Unknown"

// ImagePrinting is one artwork variant of a card.
type ImagePrinting struct {
	ImageURL string
}

// SetPrinting is one release of a card in a set.
type SetPrinting struct {
	SetName string
	SetCode string
	Rarity  string
}

// Card is immutable after ingestion. Numeric battle and level-like fields
// are nil when the card has no such value.
type Card struct {
	ID            int64
	Name          string
	Type          string
	Description   string
	ATK           *int
	DEF           *int
	Level         *int
	Rank          *int
	LinkRating    *int
	PendulumScale *int
	Race          string
	Attribute     string

	ImagePrintings []ImagePrinting
	SetPrintings   []SetPrinting
}

// Normalize fills ingestion-time defaults.
func (c *Card) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Type = strings.TrimSpace(c.Type)
	if strings.TrimSpace(c.Race) == "" {
		c.Race = UnknownRace
	}
}

// Validate checks the record invariants required before a card is stored.
func (c *Card) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", domain.ErrInvalidCard, c.ID)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: card %d has no name", domain.ErrInvalidCard, c.ID)
	}
	if c.Type == "" {
		return fmt.Errorf("%w: card %d has no type", domain.ErrInvalidCard, c.ID)
	}
	if c.Race == "" {
		return fmt.Errorf("%w: card %d has no race", domain.ErrInvalidCard, c.ID)
	}
	if len(c.ImagePrintings) == 0 {
		return fmt.Errorf("%w: card %d has no image printings", domain.ErrInvalidCard, c.ID)
	}
	numerics := []struct {
		name string
		v    *int
	}{
		{"atk", c.ATK},
		{"def", c.DEF},
		{"level", c.Level},
		{"rank", c.Rank},
		{"linkRating", c.LinkRating},
		{"pendulumScale", c.PendulumScale},
	}
	for _, n := range numerics {
		if n.v != nil && *n.v < 0 {
			return fmt.Errorf("%w: card %d has negative %s", domain.ErrInvalidCard, c.ID, n.name)
		}
	}
	return nil
}

// IsMonster reports whether the card type names a monster.
func (c *Card) IsMonster() bool {
	return strings.Contains(c.Type, "Monster")
}

// Int returns a pointer to v, for populating optional numeric fields.
func Int(v int) *int { return &v }
