// Package ygoprodeck fetches card pages from the YGOPRODeck card API.
package ygoprodeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/metrics"
)

const (
	// DefaultBaseURL is the public card info endpoint.
	DefaultBaseURL = "https://db.ygoprodeck.com/api/v7/cardinfo.php"

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of attempts per page.
	DefaultMaxRetries = 5

	// MaxResponseSize caps a page body (the full catalog is ~30MB).
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent identifies the loader to the upstream API.
	UserAgent = "cardex-loader/1.0"

	// noMatch prefixes the 400 body returned once offset passes the last card.
	noMatch = "No card matching your query"
)

// Config holds the upstream client settings.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Logger          *zap.Logger
}

// Page is one upstream page mapped onto the card model. Cards are not yet validated.
type Page struct {
	Cards []card.Card
	// Remaining is the upstream rows_remaining; -1 when meta was absent.
	Remaining int
}

// HTTPError is a non-2xx upstream answer.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s: %s", e.StatusCode, e.URL, e.Message)
}

// Client fetches card pages with exponential-backoff retries.
type Client struct {
	http            *http.Client
	baseURL         string
	maxRetries      uint
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

// NewClient creates an upstream client. Zero config fields take defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		http:            &http.Client{Timeout: cfg.Timeout},
		baseURL:         cfg.BaseURL,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		logger:          cfg.Logger,
	}
}

// FetchPage fetches num cards starting at offset. Past the last card the
// upstream answers 400 "No card matching", which is returned as an empty page.
func (c *Client) FetchPage(ctx context.Context, offset, num int) (Page, error) {
	u, err := c.pageURL(offset, num)
	if err != nil {
		return Page{}, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval

	page, err := backoff.Retry(ctx, func() (Page, error) {
		return c.fetchOnce(ctx, u)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxRetries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("Upstream request failed, retrying",
				zap.Int("offset", offset),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return Page{}, fmt.Errorf("fetch offset %d: %w: %w", offset, domain.ErrUpstreamUnavailable, err)
	}
	return page, nil
}

func (c *Client) pageURL(offset, num int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("num", strconv.Itoa(num))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchOnce performs one attempt. Errors wrapped with backoff.Permanent stop the retry loop.
func (c *Client) fetchOnce(ctx context.Context, u string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return Page{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return Page{}, backoff.Permanent(ctx.Err())
		}
		return Page{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return Page{}, backoff.Permanent(fmt.Errorf("response exceeds %d bytes", MaxResponseSize))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		page, err := decode(body)
		if err != nil {
			return Page{}, backoff.Permanent(err)
		}
		return page, nil
	case resp.StatusCode == http.StatusBadRequest && strings.HasPrefix(upstreamMessage(body), noMatch):
		return Page{Cards: []card.Card{}, Remaining: 0}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: u, Message: upstreamMessage(body)}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return Page{}, backoff.RetryAfter(secs)
		}
		return Page{}, httpErr
	case resp.StatusCode >= http.StatusInternalServerError:
		return Page{}, &HTTPError{StatusCode: resp.StatusCode, URL: u, Message: upstreamMessage(body)}
	default:
		return Page{}, backoff.Permanent(&HTTPError{StatusCode: resp.StatusCode, URL: u, Message: upstreamMessage(body)})
	}
}

// Decode reads a saved cardinfo.php payload, e.g. a seed file.
func Decode(r io.Reader) ([]card.Card, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	page, err := decode(body)
	if err != nil {
		return nil, err
	}
	return page.Cards, nil
}

func decode(body []byte) (Page, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, fmt.Errorf("decode cardinfo payload: %w", err)
	}
	if resp.Error != "" {
		return Page{}, errors.New("upstream error: " + resp.Error)
	}

	page := Page{Cards: make([]card.Card, 0, len(resp.Data)), Remaining: -1}
	for i := range resp.Data {
		page.Cards = append(page.Cards, resp.Data[i].toCard())
	}
	if resp.Meta != nil {
		page.Remaining = resp.Meta.RowsRemaining
	}
	return page, nil
}

// upstreamMessage extracts the "error" field from a JSON error body.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
