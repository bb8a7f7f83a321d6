package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/search/filter"
	"github.com/alexwilson/cardex/internal/domain/search/request"
	"github.com/alexwilson/cardex/internal/domain/search/result"
	"github.com/alexwilson/cardex/internal/logger"
	"github.com/alexwilson/cardex/internal/metrics"
)

// DefaultTimeout bounds a single storage call when no option overrides it.
const DefaultTimeout = 5 * time.Second

// Query is the flat caller input: every field optional.
type Query struct {
	Term    string
	Filters filter.Spec
	Offset  int
	Limit   int
	// Page is 1-based and replaces Offset when set.
	Page *int
}

// Service compiles filters, validates the request and executes it.
type Service struct {
	repo        Repository
	timeout     time.Duration
	requestOpts []request.Option
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each storage call. Zero disables the bound; the
// caller's deadline still applies.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLimits overrides the default page size and the hard cap.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		s.requestOpts = append(s.requestOpts,
			request.WithDefaultLimit(defaultLimit),
			request.WithMaxLimit(maxLimit),
		)
	}
}

// New creates a search service.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, timeout: DefaultTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns one page of cards. Filter, term and pagination errors are
// returned before the store is touched.
func (s *Service) Search(ctx context.Context, q Query) (result.Page, error) {
	filters, err := filter.Compile(q.Filters)
	if err != nil {
		return result.Page{}, fmt.Errorf("compile filters: %w", err)
	}

	req, err := request.New(q.Term, filters, q.Offset, q.Limit, s.requestOpts...)
	if err != nil {
		return result.Page{}, fmt.Errorf("build request: %w", err)
	}
	if q.Page != nil {
		if req, err = req.AtPage(*q.Page); err != nil {
			return result.Page{}, fmt.Errorf("build request: %w", err)
		}
	}

	return s.Execute(ctx, &req)
}

// Execute runs an already validated request.
func (s *Service) Execute(ctx context.Context, req *request.Request) (result.Page, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := string(req.Mode())
	start := time.Now()

	cards, err := s.repo.Search(ctx, req.Predicate(), req.Offset(), req.Limit())
	metrics.SearchDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	if err != nil {
		err = classify(ctx, err)
		metrics.SearchRequestsTotal.WithLabelValues(m, outcome(err)).Inc()
		logger.FromContext(ctx).Warn("Card search failed",
			zap.String("mode", m),
			zap.Stringer("predicate", req.Predicate()),
			zap.Int("offset", req.Offset()),
			zap.Int("limit", req.Limit()),
			zap.Error(err),
		)
		return result.Page{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(m, "ok").Inc()
	return result.New(cards, req.Offset(), req.Limit(), req.Mode()), nil
}

// classify maps store failures onto the two retryable domain errors.
// A deadline on ctx is a timeout even when the driver reports something else.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrSearchTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

func outcome(err error) string {
	if errors.Is(err, domain.ErrSearchTimeout) {
		return "timeout"
	}
	return "unavailable"
}
