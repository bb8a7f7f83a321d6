package result

import (
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/mode"
)

// Page is one ordered slice of matching cards.
type Page struct {
	items  []card.Card
	offset int
	limit  int
	mode   mode.Mode
}

// New creates a result page.
func New(items []card.Card, offset, limit int, m mode.Mode) Page {
	if items == nil {
		items = []card.Card{}
	}
	return Page{items: items, offset: offset, limit: limit, mode: m}
}

// Items returns the cards in order.
func (p *Page) Items() []card.Card { return p.items }

// Offset returns the number of skipped cards.
func (p *Page) Offset() int { return p.offset }

// Limit returns the requested page size.
func (p *Page) Limit() int { return p.limit }

// Mode returns how the page was produced.
func (p *Page) Mode() mode.Mode { return p.mode }

// Len returns the number of cards on the page.
func (p *Page) Len() int { return len(p.items) }

// IsLast reports whether no further page can follow.
func (p *Page) IsLast() bool { return len(p.items) < p.limit }
