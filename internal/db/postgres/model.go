package postgres

import (
	"github.com/uptrace/bun"

	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

type cardRow struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID             int64           `bun:"id,pk"`
	Name           string          `bun:"name,notnull"`
	Type           string          `bun:"type,notnull"`
	Description    string          `bun:"description,notnull"`
	ATK            *int            `bun:"atk"`
	DEF            *int            `bun:"def"`
	Level          *int            `bun:"level"`
	Rank           *int            `bun:"rank"`
	LinkRating     *int            `bun:"link_rating"`
	PendulumScale  *int            `bun:"pendulum_scale"`
	Race           string          `bun:"race,notnull"`
	Attribute      string          `bun:"attribute"`
	ImagePrintings []imagePrinting `bun:"image_printings,type:jsonb,notnull"`
	SetPrintings   []setPrinting   `bun:"set_printings,type:jsonb,notnull"`
}

type imagePrinting struct {
	ImageURL string `json:"imageUrl"`
}

type setPrinting struct {
	SetName string `json:"setName"`
	SetCode string `json:"setCode"`
	Rarity  string `json:"rarity"`
}

// columns maps predicate fields onto table columns. Element fields of
// set_printings reuse the predicate names as JSON keys.
var columns = map[predicate.Field]string{
	predicate.FieldID:             "id",
	predicate.FieldName:           "name",
	predicate.FieldType:           "type",
	predicate.FieldDescription:    "description",
	predicate.FieldATK:            "atk",
	predicate.FieldDEF:            "def",
	predicate.FieldLevel:          "level",
	predicate.FieldRank:           "rank",
	predicate.FieldLinkRating:     "link_rating",
	predicate.FieldPendulumScale:  "pendulum_scale",
	predicate.FieldRace:           "race",
	predicate.FieldAttribute:      "attribute",
	predicate.FieldSetPrintings:   "set_printings",
	predicate.FieldImagePrintings: "image_printings",
}

func toRow(c *card.Card) *cardRow {
	row := &cardRow{
		ID:             c.ID,
		Name:           c.Name,
		Type:           c.Type,
		Description:    c.Description,
		ATK:            c.ATK,
		DEF:            c.DEF,
		Level:          c.Level,
		Rank:           c.Rank,
		LinkRating:     c.LinkRating,
		PendulumScale:  c.PendulumScale,
		Race:           c.Race,
		Attribute:      c.Attribute,
		ImagePrintings: make([]imagePrinting, 0, len(c.ImagePrintings)),
		SetPrintings:   make([]setPrinting, 0, len(c.SetPrintings)),
	}
	for _, ip := range c.ImagePrintings {
		row.ImagePrintings = append(row.ImagePrintings, imagePrinting{ImageURL: ip.ImageURL})
	}
	for _, sp := range c.SetPrintings {
		row.SetPrintings = append(row.SetPrintings, setPrinting{SetName: sp.SetName, SetCode: sp.SetCode, Rarity: sp.Rarity})
	}
	return row
}

func (r *cardRow) toCard() card.Card {
	c := card.Card{
		ID:            r.ID,
		Name:          r.Name,
		Type:          r.Type,
		Description:   r.Description,
		ATK:           r.ATK,
		DEF:           r.DEF,
		Level:         r.Level,
		Rank:          r.Rank,
		LinkRating:    r.LinkRating,
		PendulumScale: r.PendulumScale,
		Race:          r.Race,
		Attribute:     r.Attribute,
	}
	for _, ip := range r.ImagePrintings {
		c.ImagePrintings = append(c.ImagePrintings, card.ImagePrinting{ImageURL: ip.ImageURL})
	}
	for _, sp := range r.SetPrintings {
		c.SetPrintings = append(c.SetPrintings, card.SetPrinting{SetName: sp.SetName, SetCode: sp.SetCode, Rarity: sp.Rarity})
	}
	return c
}
