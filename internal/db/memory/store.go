// Package memory is an in-process card store used for local runs with a
// seed file and as the reference backend in service tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/alexwilson/cardex/internal/db"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// Compile-time check: Store implements db.CardStore.
var _ db.CardStore = (*Store)(nil)

// Store keeps cards in a map guarded by a RWMutex.
type Store struct {
	mu    sync.RWMutex
	cards map[int64]card.Card
	tag   language.Tag
}

// NewStore creates an empty store ordering names under locale.
func NewStore(locale string) *Store {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Store{cards: make(map[int64]card.Card), tag: tag}
}

// FindCards filters, sorts by collated name then id, and slices the page.
func (s *Store) FindCards(ctx context.Context, q *db.CardQuery) ([]card.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	if q.Offset < 0 {
		return nil, &db.Error{Op: db.OpFind, Err: fmt.Errorf("negative offset %d", q.Offset)}
	}

	matched := s.filter(q.Predicate)

	// Collators are not safe for concurrent use.
	col := collate.New(s.tag, collate.IgnoreCase, collate.IgnoreDiacritics)
	keys := make(map[int64][]byte, len(matched))
	var buf collate.Buffer
	for i := range matched {
		k := col.KeyFromString(&buf, matched[i].Name)
		keys[matched[i].ID] = append([]byte(nil), k...)
		buf.Reset()
	}
	sort.Slice(matched, func(i, j int) bool {
		ki, kj := keys[matched[i].ID], keys[matched[j].ID]
		if c := bytes.Compare(ki, kj); c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	if q.Offset >= len(matched) {
		return []card.Card{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], nil
}

func (s *Store) filter(p predicate.Predicate) []card.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]card.Card, 0, len(s.cards))
	for id := range s.cards {
		c := s.cards[id]
		if p.Matches(&c) {
			out = append(out, c)
		}
	}
	return out
}

// GetCard loads a single card by id.
func (s *Store) GetCard(_ context.Context, id int64) (card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return card.Card{}, db.ErrKeyNotFound
	}
	return c, nil
}

// CountCards counts the cards matching p.
func (s *Store) CountCards(_ context.Context, p predicate.Predicate) (int64, error) {
	return int64(len(s.filter(p))), nil
}

// InsertCardIfAbsent stores c unless its id is already present.
func (s *Store) InsertCardIfAbsent(_ context.Context, c *card.Card) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; ok {
		return false, nil
	}
	s.cards[c.ID] = *c
	return true, nil
}

// EnsureSchema is a no-op.
func (s *Store) EnsureSchema(context.Context) error { return nil }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }
