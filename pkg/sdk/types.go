package cardex

import (
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/result"
)

// Mode reports how a page was produced: "list" without a search term,
// "search" with one.
type Mode string

// Mode constants.
const (
	ModeList   Mode = "list"
	ModeSearch Mode = "search"
)

// Card is one catalogue entry. Optional numeric fields are nil when the
// card has no such value.
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

// ImagePrinting is one artwork variant.
type ImagePrinting struct {
	ImageURL string
}

// SetPrinting is one release of a card in a set.
type SetPrinting struct {
	SetName string
	SetCode string
	Rarity  string
}

// Page is one ordered window of matching cards.
type Page struct {
	Cards  []Card
	Offset int
	Limit  int
	Mode   Mode
	// Last is true when no further page can follow.
	Last bool
}

func fromInternalCard(c domcard.Card) Card {
	out := Card{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Description:   c.Description,
		ATK:           c.ATK,
		DEF:           c.DEF,
		Level:         c.Level,
		Rank:          c.Rank,
		LinkRating:    c.LinkRating,
		PendulumScale: c.PendulumScale,
		Race:          c.Race,
		Attribute:     c.Attribute,

		ImagePrintings: make([]ImagePrinting, 0, len(c.ImagePrintings)),
		SetPrintings:   make([]SetPrinting, 0, len(c.SetPrintings)),
	}
	for _, p := range c.ImagePrintings {
		out.ImagePrintings = append(out.ImagePrintings, ImagePrinting{ImageURL: p.ImageURL})
	}
	for _, p := range c.SetPrintings {
		out.SetPrintings = append(out.SetPrintings, SetPrinting(p))
	}
	return out
}

func toInternalCard(c Card) domcard.Card {
	out := domcard.Card{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Description:   c.Description,
		ATK:           c.ATK,
		DEF:           c.DEF,
		Level:         c.Level,
		Rank:          c.Rank,
		LinkRating:    c.LinkRating,
		PendulumScale: c.PendulumScale,
		Race:          c.Race,
		Attribute:     c.Attribute,
	}
	for _, p := range c.ImagePrintings {
		out.ImagePrintings = append(out.ImagePrintings, domcard.ImagePrinting{ImageURL: p.ImageURL})
	}
	for _, p := range c.SetPrintings {
		out.SetPrintings = append(out.SetPrintings, domcard.SetPrinting(p))
	}
	return out
}

func fromInternalPage(p result.Page) Page {
	items := p.Items()
	cards := make([]Card, 0, len(items))
	for _, c := range items {
		cards = append(cards, fromInternalCard(c))
	}
	return Page{
		Cards:  cards,
		Offset: p.Offset(),
		Limit:  p.Limit(),
		Mode:   Mode(p.Mode()),
		Last:   p.IsLast(),
	}
}
