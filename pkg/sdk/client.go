package cardex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/db/factory"
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
	"github.com/alexwilson/cardex/internal/domain/search/result"
	cardrepo "github.com/alexwilson/cardex/internal/repository/card"
	carduc "github.com/alexwilson/cardex/internal/usecase/card"
	healthuc "github.com/alexwilson/cardex/internal/usecase/health"
	searchuc "github.com/alexwilson/cardex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultLocale           = "en"
)

// Interfaces swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, q searchuc.Query) (result.Page, error)
}

type cardUseCase interface {
	Get(ctx context.Context, id int64) (domcard.Card, error)
}

type cardStorage interface {
	Count(ctx context.Context, p predicate.Predicate) (int64, error)
	InsertIfAbsent(ctx context.Context, c *domcard.Card) (bool, error)
}

// Client is the cardex SDK entry point.
type Client struct {
	store     db.CardStore
	searchSvc searchUseCase
	cardSvc   cardUseCase
	storage   cardStorage
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured store, waits for it and creates its schema.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{locale: defaultLocale}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.db.Driver == "" {
		return nil, errors.New("cardex: storage required (use WithMongo, WithPostgres or WithMemory)")
	}
	if cfg.db.Mongo.Database == "" {
		cfg.db.Mongo.Database = "cardex"
	}
	if cfg.db.Mongo.Collection == "" {
		cfg.db.Mongo.Collection = "cards"
	}
	if cfg.defaultLimit > 0 && cfg.maxLimit > 0 && cfg.defaultLimit > cfg.maxLimit {
		return nil, fmt.Errorf("cardex: default limit %d exceeds max limit %d", cfg.defaultLimit, cfg.maxLimit)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := factory.OpenCardStore(ctx, cfg.db, cfg.locale, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("cardex: open store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("cardex: database not ready: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("cardex: ensure schema: %w", err)
	}

	return wireClient(store, cfg, obs)
}

func wireClient(store db.CardStore, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := cardrepo.New(store)

	var searchOpts []searchuc.Option
	if cfg.defaultLimit > 0 || cfg.maxLimit > 0 {
		def, maxLimit := cfg.defaultLimit, cfg.maxLimit
		if def <= 0 {
			def = 50
		}
		if maxLimit <= 0 {
			maxLimit = 500
		}
		searchOpts = append(searchOpts, searchuc.WithLimits(def, maxLimit))
	}
	if cfg.timeout > 0 {
		searchOpts = append(searchOpts, searchuc.WithTimeout(cfg.timeout))
	}

	cardSvc, err := carduc.New(repo, cfg.cardCacheSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cardex: %w", err)
	}

	return &Client{
		store:     store,
		searchSvc: searchuc.New(repo, searchOpts...),
		cardSvc:   cardSvc,
		storage:   repo,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search starts a query over the catalogue.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{svc: c.searchSvc, obs: c.obs, filters: map[string]string{}}
}

// Cards returns the single-card service.
func (c *Client) Cards() *CardService {
	return &CardService{cards: c.cardSvc, storage: c.storage, obs: c.obs}
}
