package chi

import (
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/result"
)

// CardResponse is the JSON form of a card.
type CardResponse struct {
	ID             int64                   `json:"id"`
	Name           string                  `json:"name"`
	Type           string                  `json:"type"`
	Description    string                  `json:"description"`
	ATK            *int                    `json:"atk,omitempty"`
	DEF            *int                    `json:"def,omitempty"`
	Level          *int                    `json:"level,omitempty"`
	Rank           *int                    `json:"rank,omitempty"`
	LinkRating     *int                    `json:"linkRating,omitempty"`
	PendulumScale  *int                    `json:"pendulumScale,omitempty"`
	Race           string                  `json:"race"`
	Attribute      string                  `json:"attribute,omitempty"`
	ImagePrintings []ImagePrintingResponse `json:"imagePrintings"`
	SetPrintings   []SetPrintingResponse   `json:"setPrintings"`
}

// ImagePrintingResponse is one artwork variant.
type ImagePrintingResponse struct {
	ImageURL string `json:"imageUrl"`
}

// SetPrintingResponse is one set release.
type SetPrintingResponse struct {
	SetName string `json:"setName"`
	SetCode string `json:"setCode"`
	Rarity  string `json:"rarity"`
}

// CardPageResponse is the body of GET /api/cards.
type CardPageResponse struct {
	Items  []CardResponse `json:"items"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
	Mode   string         `json:"mode"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func cardToResponse(c *domcard.Card) CardResponse {
	resp := CardResponse{
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
		ImagePrintings: make([]ImagePrintingResponse, len(c.ImagePrintings)),
		SetPrintings:   make([]SetPrintingResponse, len(c.SetPrintings)),
	}
	for i, img := range c.ImagePrintings {
		resp.ImagePrintings[i] = ImagePrintingResponse{ImageURL: img.ImageURL}
	}
	for i, sp := range c.SetPrintings {
		resp.SetPrintings[i] = SetPrintingResponse{SetName: sp.SetName, SetCode: sp.SetCode, Rarity: sp.Rarity}
	}
	return resp
}

func pageToResponse(p *result.Page) CardPageResponse {
	items := make([]CardResponse, p.Len())
	for i := range p.Items() {
		items[i] = cardToResponse(&p.Items()[i])
	}
	return CardPageResponse{
		Items:  items,
		Offset: p.Offset(),
		Limit:  p.Limit(),
		Mode:   string(p.Mode()),
	}
}
