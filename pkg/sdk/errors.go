package cardex

import "github.com/alexwilson/cardex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidSearchTerm  = domain.ErrInvalidSearchTerm
	ErrInvalidFilterValue = domain.ErrInvalidFilterValue
	ErrInvalidPagination  = domain.ErrInvalidPagination
	ErrSearchTimeout      = domain.ErrSearchTimeout
	ErrStorageUnavailable = domain.ErrStorageUnavailable
	ErrCardNotFound       = domain.ErrCardNotFound
	ErrInvalidCard        = domain.ErrInvalidCard
)

// FilterValueError names the numeric filter that carried a bad value.
type FilterValueError = domain.FilterValueError
