package ygoprodeck

import (
	"strings"

	"github.com/alexwilson/cardex/internal/domain/card"
)

// response mirrors the cardinfo.php payload. Only mapped fields are declared.
type response struct {
	Data  []apiCard `json:"data"`
	Meta  *apiMeta  `json:"meta,omitempty"`
	Error string    `json:"error,omitempty"`
}

type apiMeta struct {
	CurrentRows    int `json:"current_rows"`
	TotalRows      int `json:"total_rows"`
	RowsRemaining  int `json:"rows_remaining"`
	NextPageOffset int `json:"next_page_offset"`
}

type apiCard struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Desc       string     `json:"desc"`
	ATK        *int       `json:"atk"`
	DEF        *int       `json:"def"`
	Level      *int       `json:"level"`
	LinkVal    *int       `json:"linkval"`
	Scale      *int       `json:"scale"`
	Race       string     `json:"race"`
	Attribute  string     `json:"attribute"`
	CardImages []apiImage `json:"card_images"`
	CardSets   []apiSet   `json:"card_sets"`
}

type apiImage struct {
	ImageURL string `json:"image_url"`
}

type apiSet struct {
	SetName   string `json:"set_name"`
	SetCode   string `json:"set_code"`
	SetRarity string `json:"set_rarity"`
}

// toCard maps an upstream record onto the card model. Battle stats are
// kept for monsters only. XYZ monsters carry their rank in "level";
// negative stats ("?" on the card) become absent.
func (a *apiCard) toCard() card.Card {
	c := card.Card{
		ID:          a.ID,
		Name:        a.Name,
		Type:        a.Type,
		Description: a.Desc,
		Race:        a.Race,
		Attribute:   a.Attribute,
	}
	if c.IsMonster() {
		c.ATK = nonNegative(a.ATK)
		c.DEF = nonNegative(a.DEF)
		c.LinkRating = nonNegative(a.LinkVal)
		c.PendulumScale = nonNegative(a.Scale)
		if strings.Contains(strings.ToUpper(a.Type), "XYZ") {
			c.Rank = nonNegative(a.Level)
		} else {
			c.Level = nonNegative(a.Level)
		}
	}
	for _, img := range a.CardImages {
		c.ImagePrintings = append(c.ImagePrintings, card.ImagePrinting{ImageURL: img.ImageURL})
	}
	for _, s := range a.CardSets {
		c.SetPrintings = append(c.SetPrintings, card.SetPrinting{
			SetName: s.SetName,
			SetCode: s.SetCode,
			Rarity:  s.SetRarity,
		})
	}
	c.Normalize()
	return c
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return card.Int(*v)
}
