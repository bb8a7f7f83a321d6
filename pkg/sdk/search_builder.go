package cardex

import (
	"context"
	"time"

	"github.com/alexwilson/cardex/internal/domain/search/filter"
	searchuc "github.com/alexwilson/cardex/internal/usecase/search"
)

// SearchBuilder collects a query. Unset parts fall back to the service
// defaults: no term, no filters, offset 0, the default limit.
type SearchBuilder struct {
	svc     searchUseCase
	obs     *observer
	term    string
	filters map[string]string
	offset  int
	limit   int
	page    *int
}

// Term sets the card name search term.
func (b *SearchBuilder) Term(t string) *SearchBuilder {
	b.term = t
	return b
}

// Where adds a filter by query parameter name, e.g. Where("level", "4").
// A later call with the same name replaces the value.
func (b *SearchBuilder) Where(name, value string) *SearchBuilder {
	b.filters[name] = value
	return b
}

// Offset skips the first n matches. It clears a previous Page.
func (b *SearchBuilder) Offset(n int) *SearchBuilder {
	b.offset = n
	b.page = nil
	return b
}

// Page selects a 1-based page of Limit cards.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.page = &n
	return b
}

// Limit sets the page size. Values above the cap are clamped.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Do executes the query.
func (b *SearchBuilder) Do(ctx context.Context) (page Page, err error) {
	start := time.Now()
	defer func() { b.obs.observe("search", start, err) }()

	res, err := b.svc.Search(ctx, searchuc.Query{
		Term:    b.term,
		Filters: filter.Spec(b.filters),
		Offset:  b.offset,
		Limit:   b.limit,
		Page:    b.page,
	})
	if err != nil {
		return Page{}, err
	}
	return fromInternalPage(res), nil
}
