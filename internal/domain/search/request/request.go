package request

import (
	"fmt"
	"math"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/search/mode"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
	"github.com/alexwilson/cardex/internal/domain/search/term"
)

// Pagination limits.
const (
	DefaultLimit = 50
	// MaxLimit caps the page size; larger limits are clamped.
	MaxLimit = 500
)

// Request is a validated card query.
type Request struct {
	term    string
	pattern string
	filters predicate.Predicate
	offset  int
	limit   int
}

// Option adjusts pagination bounds.
type Option func(*bounds)

type bounds struct {
	defaultLimit int
	maxLimit     int
}

// WithDefaultLimit sets the limit used when the caller supplies none.
func WithDefaultLimit(n int) Option {
	return func(b *bounds) {
		if n > 0 {
			b.defaultLimit = n
		}
	}
}

// WithMaxLimit sets the page size cap.
func WithMaxLimit(n int) Option {
	return func(b *bounds) {
		if n > 0 {
			b.maxLimit = n
		}
	}
}

// New validates and normalizes query parameters.
// The term is checked before anything else so an invalid term never
// reaches storage. A blank term selects list mode. limit <= 0 uses the
// default; limit above the cap is clamped.
func New(t string, filters predicate.Predicate, offset, limit int, opts ...Option) (Request, error) {
	pattern, err := term.Flexible(t)
	if err != nil {
		return Request{}, err
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("%w: offset must be non-negative, got %d", domain.ErrInvalidPagination, offset)
	}

	b := bounds{defaultLimit: DefaultLimit, maxLimit: MaxLimit}
	for _, o := range opts {
		o(&b)
	}
	if b.defaultLimit > b.maxLimit {
		b.defaultLimit = b.maxLimit
	}
	if limit <= 0 {
		limit = b.defaultLimit
	}
	if limit > b.maxLimit {
		limit = b.maxLimit
	}

	normalized := ""
	if pattern != "" {
		normalized = term.Normalize(t)
	}

	return Request{
		term:    normalized,
		pattern: pattern,
		filters: filters,
		offset:  offset,
		limit:   limit,
	}, nil
}

// AtPage returns a copy positioned at the 1-based page of the current limit.
func (r Request) AtPage(page int) (Request, error) {
	if page < 1 {
		return Request{}, fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidPagination, page)
	}
	if page-1 > math.MaxInt/r.limit {
		return Request{}, fmt.Errorf("%w: page %d is out of range for limit %d", domain.ErrInvalidPagination, page, r.limit)
	}
	r.offset = (page - 1) * r.limit
	return r, nil
}

// Term returns the normalized search term ("" in list mode).
func (r *Request) Term() string { return r.term }

// Pattern returns the flexible name pattern ("" in list mode).
func (r *Request) Pattern() string { return r.pattern }

// Mode reports whether the request lists or searches.
func (r *Request) Mode() mode.Mode {
	if r.pattern == "" {
		return mode.List
	}
	return mode.Search
}

// Filters returns the compiled filter predicate.
func (r *Request) Filters() predicate.Predicate { return r.filters }

// Predicate returns the filters AND the case-insensitive name pattern when searching.
func (r *Request) Predicate() predicate.Predicate {
	if r.pattern == "" {
		return r.filters
	}
	return r.filters.And(predicate.NewPattern(predicate.FieldName, r.pattern, true))
}

// Offset returns the number of cards to skip.
func (r *Request) Offset() int { return r.offset }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }
