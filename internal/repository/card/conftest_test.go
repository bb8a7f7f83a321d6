package card

import (
	"context"
	"testing"

	"github.com/alexwilson/cardex/internal/db"
	domcard "github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findFn   func(ctx context.Context, q *db.CardQuery) ([]domcard.Card, error)
	getFn    func(ctx context.Context, id int64) (domcard.Card, error)
	countFn  func(ctx context.Context, p predicate.Predicate) (int64, error)
	insertFn func(ctx context.Context, c *domcard.Card) (bool, error)
}

func (m *mockStore) FindCards(ctx context.Context, q *db.CardQuery) ([]domcard.Card, error) {
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) GetCard(ctx context.Context, id int64) (domcard.Card, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domcard.Card{}, db.ErrKeyNotFound
}

func (m *mockStore) CountCards(ctx context.Context, p predicate.Predicate) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, p)
	}
	return 0, nil
}

func (m *mockStore) InsertCardIfAbsent(ctx context.Context, c *domcard.Card) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, c)
	}
	return true, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
