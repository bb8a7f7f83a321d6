package pagecache

import (
	"encoding/json"
	"fmt"

	"github.com/alexwilson/cardex/internal/domain/card"
)

// page is the cached payload. The version field lets a format change
// miss instead of decoding garbage.
type page struct {
	Version int          `json:"v"`
	Cards   []cachedCard `json:"cards"`
}

const pageVersion = 1

type cachedCard struct {
	ID             int64                `json:"id"`
	Name           string               `json:"name"`
	Type           string               `json:"type"`
	Description    string               `json:"description,omitempty"`
	ATK            *int                 `json:"atk,omitempty"`
	DEF            *int                 `json:"def,omitempty"`
	Level          *int                 `json:"level,omitempty"`
	Rank           *int                 `json:"rank,omitempty"`
	LinkRating     *int                 `json:"linkRating,omitempty"`
	PendulumScale  *int                 `json:"pendulumScale,omitempty"`
	Race           string               `json:"race"`
	Attribute      string               `json:"attribute,omitempty"`
	ImagePrintings []card.ImagePrinting `json:"imagePrintings"`
	SetPrintings   []card.SetPrinting   `json:"setPrintings"`
}

func encodePage(cards []card.Card) ([]byte, error) {
	p := page{Version: pageVersion, Cards: make([]cachedCard, 0, len(cards))}
	for i := range cards {
		c := &cards[i]
		p.Cards = append(p.Cards, cachedCard{
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
			ImagePrintings: c.ImagePrintings,
			SetPrintings:   c.SetPrintings,
		})
	}
	return json.Marshal(p)
}

func decodePage(data []byte) ([]card.Card, error) {
	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if p.Version != pageVersion {
		return nil, fmt.Errorf("page version %d, want %d", p.Version, pageVersion)
	}
	cards := make([]card.Card, 0, len(p.Cards))
	for _, cc := range p.Cards {
		cards = append(cards, card.Card{
			ID:             cc.ID,
			Name:           cc.Name,
			Type:           cc.Type,
			Description:    cc.Description,
			ATK:            cc.ATK,
			DEF:            cc.DEF,
			Level:          cc.Level,
			Rank:           cc.Rank,
			LinkRating:     cc.LinkRating,
			PendulumScale:  cc.PendulumScale,
			Race:           cc.Race,
			Attribute:      cc.Attribute,
			ImagePrintings: cc.ImagePrintings,
			SetPrintings:   cc.SetPrintings,
		})
	}
	return cards, nil
}
