package mongo

import "github.com/alexwilson/cardex/internal/domain/card"

// cardDocument is the stored shape of a card. Field names match the
// predicate field names so filters translate without a lookup table
// for scalar fields.
type cardDocument struct {
	ID             int64           `bson:"id"`
	Name           string          `bson:"name"`
	Type           string          `bson:"type"`
	Description    string          `bson:"description"`
	ATK            *int            `bson:"atk,omitempty"`
	DEF            *int            `bson:"def,omitempty"`
	Level          *int            `bson:"level,omitempty"`
	Rank           *int            `bson:"rank,omitempty"`
	LinkRating     *int            `bson:"linkRating,omitempty"`
	PendulumScale  *int            `bson:"pendulumScale,omitempty"`
	Race           string          `bson:"race"`
	Attribute      string          `bson:"attribute,omitempty"`
	ImagePrintings []imageDocument `bson:"imagePrintings"`
	SetPrintings   []setDocument   `bson:"setPrintings"`
}

type imageDocument struct {
	ImageURL string `bson:"imageUrl"`
}

type setDocument struct {
	SetName string `bson:"setName"`
	SetCode string `bson:"setCode"`
	Rarity  string `bson:"rarity"`
}

func toDocument(c *card.Card) cardDocument {
	doc := cardDocument{
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
		ImagePrintings: make([]imageDocument, 0, len(c.ImagePrintings)),
		SetPrintings:   make([]setDocument, 0, len(c.SetPrintings)),
	}
	for _, ip := range c.ImagePrintings {
		doc.ImagePrintings = append(doc.ImagePrintings, imageDocument{ImageURL: ip.ImageURL})
	}
	for _, sp := range c.SetPrintings {
		doc.SetPrintings = append(doc.SetPrintings, setDocument{
			SetName: sp.SetName, SetCode: sp.SetCode, Rarity: sp.Rarity,
		})
	}
	return doc
}

func (d *cardDocument) toCard() card.Card {
	c := card.Card{
		ID:            d.ID,
		Name:          d.Name,
		Type:          d.Type,
		Description:   d.Description,
		ATK:           d.ATK,
		DEF:           d.DEF,
		Level:         d.Level,
		Rank:          d.Rank,
		LinkRating:    d.LinkRating,
		PendulumScale: d.PendulumScale,
		Race:          d.Race,
		Attribute:     d.Attribute,
	}
	for _, ip := range d.ImagePrintings {
		c.ImagePrintings = append(c.ImagePrintings, card.ImagePrinting{ImageURL: ip.ImageURL})
	}
	for _, sp := range d.SetPrintings {
		c.SetPrintings = append(c.SetPrintings, card.SetPrinting{
			SetName: sp.SetName, SetCode: sp.SetCode, Rarity: sp.Rarity,
		})
	}
	return c
}
