// Package ingest copies the upstream card catalogue into the card store.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/metrics"
)

// DefaultPageSize is the number of cards requested per upstream page.
const DefaultPageSize = 100

// Job describes one ingestion run. Offsets are scoped to the job.
type Job struct {
	StartOffset int
	PageSize    int
	// MaxPages stops the job early; zero walks to the end of the catalogue.
	MaxPages int
}

// Report summarizes a run.
type Report struct {
	Fetched    int
	Inserted   int
	Skipped    int
	Invalid    int
	Pages      int
	NextOffset int
}

// Service walks upstream pages and inserts unseen cards.
type Service struct {
	source      Source
	writer      Writer
	invalidator Invalidator
	logger      *zap.Logger
}

// New creates an ingestion service.
func New(source Source, writer Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, writer: writer, logger: logger}
}

// WithInvalidator configures a page cache to invalidate once cards are inserted.
func (s *Service) WithInvalidator(inv Invalidator) *Service {
	s.invalidator = inv
	return s
}

// Run ingests pages until the upstream runs out, MaxPages is reached or ctx ends.
// The report is returned alongside any error so partial progress is visible.
func (s *Service) Run(ctx context.Context, job Job) (Report, error) {
	if job.StartOffset < 0 {
		return Report{}, fmt.Errorf("%w: start offset must be >= 0, got %d", domain.ErrInvalidPagination, job.StartOffset)
	}
	if job.PageSize <= 0 {
		job.PageSize = DefaultPageSize
	}

	rep := Report{NextOffset: job.StartOffset}
	err := s.walk(ctx, job, &rep)

	if rep.Inserted > 0 && s.invalidator != nil {
		if invErr := s.invalidator.Invalidate(context.WithoutCancel(ctx)); invErr != nil {
			s.logger.Warn("Page cache invalidation failed", zap.Error(invErr))
		}
	}

	s.logger.Info("Ingestion finished",
		zap.Int("pages", rep.Pages),
		zap.Int("fetched", rep.Fetched),
		zap.Int("inserted", rep.Inserted),
		zap.Int("skipped", rep.Skipped),
		zap.Int("invalid", rep.Invalid),
		zap.Int("next_offset", rep.NextOffset),
		zap.Error(err),
	)
	return rep, err
}

func (s *Service) walk(ctx context.Context, job Job, rep *Report) error {
	for job.MaxPages == 0 || rep.Pages < job.MaxPages {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := s.source.FetchPage(ctx, rep.NextOffset, job.PageSize)
		if err != nil {
			return fmt.Errorf("fetch page at offset %d: %w", rep.NextOffset, err)
		}
		if len(page.Cards) == 0 {
			return nil
		}
		rep.Pages++
		rep.Fetched += len(page.Cards)

		for i := range page.Cards {
			c := &page.Cards[i]
			if err := c.Validate(); err != nil {
				rep.Invalid++
				metrics.IngestCardsTotal.WithLabelValues("invalid").Inc()
				s.logger.Warn("Skipping invalid card", zap.Int64("id", c.ID), zap.Error(err))
				continue
			}
			inserted, err := s.writer.InsertIfAbsent(ctx, c)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return fmt.Errorf("%w: insert card %d: %w", domain.ErrStorageUnavailable, c.ID, err)
			}
			if inserted {
				rep.Inserted++
				metrics.IngestCardsTotal.WithLabelValues("inserted").Inc()
			} else {
				rep.Skipped++
				metrics.IngestCardsTotal.WithLabelValues("skipped").Inc()
			}
		}

		rep.NextOffset += len(page.Cards)
		s.logger.Debug("Ingested page",
			zap.Int("page", rep.Pages),
			zap.Int("cards", len(page.Cards)),
			zap.Int("remaining", page.Remaining),
		)
		if page.Remaining == 0 {
			return nil
		}
	}
	return nil
}
