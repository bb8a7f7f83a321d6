package pagecache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

func sampleCards() []card.Card {
	return []card.Card{
		{
			ID:             89631139,
			Name:           "Blue-Eyes White Dragon",
			Type:           "Normal Monster",
			ATK:            card.Int(3000),
			Level:          card.Int(8),
			Race:           "Dragon",
			ImagePrintings: []card.ImagePrinting{{ImageURL: "https://img/1.jpg"}},
			SetPrintings:   []card.SetPrinting{{SetName: "LOB", SetCode: "LOB-001", Rarity: "Ultra Rare"}},
		},
	}
}

func TestSearch_MissThenHit(t *testing.T) {
	inner := &mockSearcher{cards: sampleCards()}
	c, ms, counter := newTestCache(t, inner)
	p := predicate.New(predicate.NewEquals(predicate.FieldRace, "Dragon"))
	ctx := context.Background()

	first, err := c.Search(ctx, p, 0, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Search(ctx, p, 0, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if len(second) != 1 || second[0].Name != first[0].Name || *second[0].Level != 8 {
		t.Errorf("cached page = %+v", second)
	}
	if second[0].SetPrintings[0].Rarity != "Ultra Rare" {
		t.Errorf("set printings lost: %+v", second[0].SetPrintings)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v", got)
	}
	for k, ttl := range ms.ttls {
		if ttl != time.Minute {
			t.Errorf("ttl for %s = %v", k, ttl)
		}
	}
}

func TestSearch_KeyDependsOnWindowAndPredicate(t *testing.T) {
	p := predicate.New(predicate.NewEquals(predicate.FieldRace, "Dragon"))
	q := predicate.New(predicate.NewEquals(predicate.FieldRace, "Fiend"))

	keys := map[string]bool{
		cacheKey("0", p, 0, 50):  true,
		cacheKey("0", p, 50, 50): true,
		cacheKey("0", p, 0, 10):  true,
		cacheKey("0", q, 0, 50):  true,
		cacheKey("1", p, 0, 50):  true,
	}
	if len(keys) != 5 {
		t.Errorf("expected 5 distinct keys, got %d", len(keys))
	}
	for k := range keys {
		if !strings.HasPrefix(k, domain.KeyPrefix+"pages:") {
			t.Errorf("unexpected prefix: %s", k)
		}
	}
}

func TestSearch_InnerErrorNotCached(t *testing.T) {
	inner := &mockSearcher{err: domain.ErrStorageUnavailable}
	c, ms, _ := newTestCache(t, inner)

	_, err := c.Search(context.Background(), predicate.New(), 0, 50)
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Errorf("error result must not be cached: %v", ms.data)
	}
}

func TestSearch_StoreFailureBypasses(t *testing.T) {
	inner := &mockSearcher{cards: sampleCards()}
	c, ms, counter := newTestCache(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	cards, err := c.Search(context.Background(), predicate.New(), 0, 50)
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if len(cards) != 1 || inner.calls != 1 {
		t.Errorf("cards=%d calls=%d", len(cards), inner.calls)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("bypass")); got != 1 {
		t.Errorf("bypass = %v", got)
	}
}

func TestSearch_SetFailureIgnored(t *testing.T) {
	inner := &mockSearcher{cards: sampleCards()}
	c, ms, _ := newTestCache(t, inner)
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		return errors.New("READONLY")
	}

	if _, err := c.Search(context.Background(), predicate.New(), 0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockSearcher{cards: sampleCards()}
	c, ms, _ := newTestCache(t, inner)
	p := predicate.New()
	ms.data[cacheKey("0", p, 0, 50)] = []byte("not json")

	cards, err := c.Search(context.Background(), p, 0, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(cards) != 1 {
		t.Errorf("calls=%d cards=%d", inner.calls, len(cards))
	}
}

func TestInvalidate_RetiresPages(t *testing.T) {
	inner := &mockSearcher{cards: sampleCards()}
	c, _, _ := newTestCache(t, inner)
	ctx := context.Background()
	p := predicate.New()

	if _, err := c.Search(ctx, p, 0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := c.Search(ctx, p, 0, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected a miss after invalidation, inner calls = %d", inner.calls)
	}
}

func TestDecodePage_VersionMismatch(t *testing.T) {
	if _, err := decodePage([]byte(`{"v":99,"cards":[]}`)); err == nil {
		t.Fatal("expected version error")
	}
}
