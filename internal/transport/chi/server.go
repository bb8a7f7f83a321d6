package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/domain"
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/filter"
	"github.com/alexwilson/cardex/internal/domain/search/result"
	"github.com/alexwilson/cardex/internal/logger"
	healthuc "github.com/alexwilson/cardex/internal/usecase/health"
	searchuc "github.com/alexwilson/cardex/internal/usecase/search"
)

// retryAfterSeconds is advertised on timeouts.
const retryAfterSeconds = 1

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher runs card queries.
type Searcher interface {
	Search(ctx context.Context, q searchuc.Query) (result.Page, error)
}

// CardGetter loads single cards.
type CardGetter interface {
	Get(ctx context.Context, id int64) (domcard.Card, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements ServerInterface.
type Server struct {
	search        Searcher
	cards         CardGetter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search Searcher, cards CardGetter, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		cards:  cards,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidSearchTerm, http.StatusBadRequest, ErrorCodeInvalidSearchTerm),
		filterValueHandler,
		sentinelHandler(domain.ErrInvalidPagination, http.StatusBadRequest, ErrorCodeInvalidPagination),
		sentinelHandler(domain.ErrCardNotFound, http.StatusNotFound, ErrorCodeCardNotFound),
		timeoutHandler,
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, ErrorCodeStorageUnavailable),
	}
	return s
}

// SearchCards handles GET /api/cards.
func (s *Server) SearchCards(w http.ResponseWriter, r *http.Request, params SearchCardsParams) {
	q := searchuc.Query{
		Term:    derefString(params.Term),
		Filters: filtersFromQuery(r),
		Limit:   derefInt(params.Limit),
	}
	switch {
	case params.Offset != nil:
		q.Offset = *params.Offset
	case params.Page != nil:
		q.Page = params.Page
	}

	ctx := r.Context()
	if q.Term != "" {
		ctx = logger.With(ctx, zap.String("term", q.Term))
	}
	page, err := s.search.Search(ctx, q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// GetCard handles GET /api/cards/{id}.
func (s *Server) GetCard(w http.ResponseWriter, r *http.Request, id CardID) {
	c, err := s.cards.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cardToResponse(&c))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// filtersFromQuery collects recognized filter parameters. Repeated
// parameters keep the first value.
func filtersFromQuery(r *http.Request) filter.Spec {
	query := r.URL.Query()
	spec := make(filter.Spec)
	for _, name := range filter.Names() {
		if v := query.Get(name); v != "" {
			spec[name] = v
		}
	}
	return spec
}

// ParamErrorHandler renders parameter binding failures as 400 JSON.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid value for parameter " + pe.ParamName
	}
	code := ErrorCodeBadRequest
	if pe != nil && (pe.ParamName == "offset" || pe.ParamName == "limit" || pe.ParamName == "page") {
		code = ErrorCodeInvalidPagination
	}
	writeError(w, http.StatusBadRequest, code, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidSearchTerm,
		domain.ErrInvalidPagination,
		domain.ErrCardNotFound,
		domain.ErrSearchTimeout,
		domain.ErrStorageUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// filterValueHandler names the offending filter; its value is caller input, not internals.
func filterValueHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidFilterValue) {
		return false
	}
	var fve *domain.FilterValueError
	if errors.As(err, &fve) {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidFilterValue, fve.Error())
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeInvalidFilterValue, domain.ErrInvalidFilterValue.Error())
	return true
}

// timeoutHandler marks search timeouts as retryable.
func timeoutHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrSearchTimeout) {
		return false
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	writeError(w, http.StatusGatewayTimeout, ErrorCodeSearchTimeout, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
