package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/alexwilson/cardex/internal/config"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

const seedPayload = `{"data":[
  {"id":46986414,"name":"Dark Magician","type":"Normal Monster","desc":"The ultimate wizard.","atk":2500,"def":2100,"level":7,"race":"Spellcaster","attribute":"DARK",
   "card_images":[{"image_url":"https://images.example/46986414.jpg"}]},
  {"id":44095762,"name":"Mirror Force","type":"Trap Card","desc":"Destroy all attack position monsters.","race":"Normal",
   "card_images":[{"image_url":"https://images.example/44095762.jpg"}]},
  {"id":7,"name":"No Artwork","type":"Spell Card","race":"Normal","card_images":[]}
]}`

func TestOpenCardStore_MemorySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	if err := os.WriteFile(path, []byte(seedPayload), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DatabaseConfig{Driver: config.DriverMemory, Memory: config.MemoryConfig{SeedFile: path}}
	store, err := OpenCardStore(context.Background(), cfg, "en", zap.NewNop())
	if err != nil {
		t.Fatalf("OpenCardStore: %v", err)
	}
	defer store.Close()

	n, err := store.CountCards(context.Background(), predicate.Predicate{})
	if err != nil {
		t.Fatalf("CountCards: %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d cards, want 2 (card without images skipped)", n)
	}
	c, err := store.GetCard(context.Background(), 46986414)
	if err != nil || c.Level == nil || *c.Level != 7 {
		t.Errorf("GetCard = %+v, %v", c, err)
	}
}

func TestOpenCardStore_MemoryWithoutSeed(t *testing.T) {
	store, err := OpenCardStore(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, "en", zap.NewNop())
	if err != nil {
		t.Fatalf("OpenCardStore: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenCardStore_MissingSeedFile(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverMemory, Memory: config.MemoryConfig{SeedFile: "/nonexistent/cards.json"}}
	if _, err := OpenCardStore(context.Background(), cfg, "en", zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenCardStore_UnknownDriver(t *testing.T) {
	if _, err := OpenCardStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, "en", zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}
