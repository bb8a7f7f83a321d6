package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSearchTerm signals a term that is too long or has disallowed characters.
	ErrInvalidSearchTerm = errors.New("invalid search term")
	// ErrInvalidFilterValue signals a non-numeric value for a numeric filter.
	ErrInvalidFilterValue = errors.New("invalid filter value")
	// ErrInvalidPagination signals a malformed offset, page or limit.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrSearchTimeout signals that storage did not answer within the request bound.
	ErrSearchTimeout = errors.New("search timed out")
	// ErrStorageUnavailable signals a connectivity or driver failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCardNotFound signals a missing card.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidCard signals a card record that violates the data model.
	ErrInvalidCard = errors.New("invalid card")
	// ErrUpstreamUnavailable signals that the upstream card API failed after retries.
	ErrUpstreamUnavailable = errors.New("upstream card api unavailable")
)

// FilterValueError wraps ErrInvalidFilterValue with the offending filter.
type FilterValueError struct {
	Filter string
	Value  string
}

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("%s: %s must be a non-negative integer, got %q", ErrInvalidFilterValue.Error(), e.Filter, e.Value)
}

func (e *FilterValueError) Unwrap() error { return ErrInvalidFilterValue }

// NewFilterValueError creates a filter value error.
func NewFilterValueError(filter, value string) error {
	return &FilterValueError{Filter: filter, Value: value}
}
