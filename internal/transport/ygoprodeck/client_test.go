package ygoprodeck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexwilson/cardex/internal/domain"
)

const samplePage = `{
  "data": [
    {
      "id": 89631139,
      "name": "Blue-Eyes White Dragon",
      "type": "Normal Monster",
      "desc": "This legendary dragon is a powerful engine of destruction.",
      "atk": 3000,
      "def": 2500,
      "level": 8,
      "race": "Dragon",
      "attribute": "LIGHT",
      "card_images": [{"id": 89631139, "image_url": "https://images.ygoprodeck.com/images/cards/89631139.jpg"}],
      "card_sets": [{"set_name": "Legend of Blue Eyes White Dragon", "set_code": "LOB-001", "set_rarity": "Ultra Rare"}]
    },
    {
      "id": 84013237,
      "name": "Number 39: Utopia",
      "type": "XYZ Monster",
      "desc": "2 Level 4 monsters",
      "atk": 2500,
      "def": 2000,
      "level": 4,
      "race": "Warrior",
      "attribute": "LIGHT",
      "card_images": [{"image_url": "https://images.ygoprodeck.com/images/cards/84013237.jpg"}]
    },
    {
      "id": 10000,
      "name": "Ten Thousand Dragon",
      "type": "Effect Monster",
      "desc": "",
      "atk": -1,
      "def": -1,
      "level": 10,
      "attribute": "LIGHT",
      "card_images": [{"image_url": "https://images.ygoprodeck.com/images/cards/10000.jpg"}]
    }
  ],
  "meta": {"current_rows": 3, "total_rows": 13000, "rows_remaining": 12997, "next_page_offset": 3}
}`

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL:         url,
		Timeout:         time.Second,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestFetchPage_MapsCards(t *testing.T) {
	var gotQuery string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchPage(context.Background(), 200, 100)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if gotQuery != "num=100&offset=200" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if page.Remaining != 12997 {
		t.Errorf("Remaining = %d", page.Remaining)
	}
	if len(page.Cards) != 3 {
		t.Fatalf("got %d cards", len(page.Cards))
	}

	bewd := page.Cards[0]
	if bewd.Level == nil || *bewd.Level != 8 || bewd.Rank != nil {
		t.Errorf("BEWD level/rank = %v/%v", bewd.Level, bewd.Rank)
	}
	if len(bewd.SetPrintings) != 1 || bewd.SetPrintings[0].Rarity != "Ultra Rare" {
		t.Errorf("BEWD sets = %+v", bewd.SetPrintings)
	}
	if err := bewd.Validate(); err != nil {
		t.Errorf("BEWD invalid: %v", err)
	}

	utopia := page.Cards[1]
	if utopia.Rank == nil || *utopia.Rank != 4 || utopia.Level != nil {
		t.Errorf("Utopia level/rank = %v/%v", utopia.Level, utopia.Rank)
	}

	unknown := page.Cards[2]
	if unknown.ATK != nil || unknown.DEF != nil {
		t.Errorf("negative stats should be absent, got %v/%v", unknown.ATK, unknown.DEF)
	}
	if unknown.Race != "Unknown" {
		t.Errorf("Race = %q", unknown.Race)
	}
}

func TestFetchPage_PastEndIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No card matching your query was found in the database. Please see https://db.ygoprodeck.com/api-guide/ for syntax usage."}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchPage(context.Background(), 50000, 100)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Cards) != 0 || page.Remaining != 0 {
		t.Errorf("page = %+v, want empty", page)
	}
}

func TestFetchPage_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(page.Cards) != 3 {
		t.Errorf("got %d cards", len(page.Cards))
	}
}

func TestFetchPage_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 100)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected HTTPError 503, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestFetchPage_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"banned"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 100)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if !strings.Contains(err.Error(), "banned") {
		t.Errorf("error should carry upstream message: %v", err)
	}
}

func TestFetchPage_MalformedBodyIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 100)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestFetchPage_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(srv.URL).FetchPage(ctx, 0, 100); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestDecode_SeedFile(t *testing.T) {
	cards, err := Decode(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cards) != 3 || cards[0].ID != 89631139 {
		t.Errorf("cards = %+v", cards)
	}
}

func TestDecode_ErrorPayload(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"error":"No card matching your query"}`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecode_SpellsDropBattleStats(t *testing.T) {
	payload := `{"data":[{
		"id": 83764718,
		"name": "Monster Reborn",
		"type": "Spell Card",
		"desc": "Target 1 monster in either GY; Special Summon it.",
		"atk": 0,
		"def": 0,
		"level": 0,
		"race": "Normal",
		"card_images": [{"image_url": "https://images.ygoprodeck.com/images/cards/83764718.jpg"}]
	}]}`
	cards, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c := cards[0]
	if c.ATK != nil || c.DEF != nil || c.Level != nil || c.Rank != nil {
		t.Errorf("spell kept monster stats: atk=%v def=%v level=%v rank=%v", c.ATK, c.DEF, c.Level, c.Rank)
	}
	if c.Race != "Normal" {
		t.Errorf("Race = %q, spell subtype must survive", c.Race)
	}
}
