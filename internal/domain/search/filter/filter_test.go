package filter

import (
	"errors"
	"testing"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/card"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

func mustCompile(t *testing.T, spec Spec) predicate.Predicate {
	t.Helper()
	p, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile(%v): %v", spec, err)
	}
	return p
}

func corpus() []card.Card {
	return []card.Card{
		{ID: 1, Name: "Blue-Eyes White Dragon", Type: "Normal Monster", Level: card.Int(8), Race: "Dragon", Attribute: "LIGHT",
			SetPrintings: []card.SetPrinting{{Rarity: "Ultra Rare"}}},
		{ID: 2, Name: "Dark Magician", Type: "Normal Monster", Level: card.Int(7), Race: "Spellcaster", Attribute: "DARK",
			SetPrintings: []card.SetPrinting{{Rarity: "Common"}, {Rarity: "Ultra Rare"}, {Rarity: "Secret Rare"}}},
		{ID: 3, Name: "Red-Eyes Black Dragon", Type: "Normal Monster", Level: card.Int(7), Race: "Dragon", Attribute: "DARK"},
		{ID: 4, Name: "Man-Eater Bug", Type: "Flip Effect Monster", Level: card.Int(2), Race: "Insect", Attribute: "EARTH",
			Description: "FLIP: Target 1 monster on the field; destroy that target."},
		{ID: 5, Name: "Number 39: Utopia", Type: "XYZ Monster", Rank: card.Int(4), Race: "Warrior", Attribute: "LIGHT"},
		{ID: 6, Name: "Decode Talker", Type: "Link Monster", LinkRating: card.Int(3), Race: "Cyberse", Attribute: "DARK"},
		{ID: 7, Name: "Mystical Space Typhoon", Type: "Spell Card", Race: "Quick-Play"},
		{ID: 8, Name: "Pot of Greed", Type: "Spell Card", Race: "Normal"},
		{ID: 9, Name: "Mirror Force", Type: "Trap Card", Race: "Normal"},
		{ID: 10, Name: "Solemn Judgment", Type: "Trap Card", Race: "Counter"},
		{ID: 11, Name: "Odd-Eyes Pendulum Dragon", Type: "Pendulum Effect Monster", Level: card.Int(7),
			PendulumScale: card.Int(4), Race: "Dragon", Attribute: "DARK"},
	}
}

func matchIDs(p predicate.Predicate) []int64 {
	var ids []int64
	for _, c := range corpus() {
		if p.Matches(&c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompile_EmptyAndUnknown(t *testing.T) {
	specs := []Spec{
		nil,
		{},
		{"colour": "blue", "foo": "bar"},
		{CardType: "all", Level: "", Rarity: "ALL"},
		{CardType: "Planeswalker"},
		{MonsterType: "Ritualistic"},
	}
	for _, s := range specs {
		p := mustCompile(t, s)
		if !p.IsEmpty() {
			t.Errorf("Compile(%v) = %s, want empty", s, p)
		}
	}
}

func TestCompile_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []int64
	}{
		{"monster level 7", Spec{CardType: "Monster", "monsterLevel": "7"}, []int64{2, 3, 11}},
		{"spell", Spec{CardType: "Spell"}, []int64{7, 8}},
		{"trap", Spec{CardType: "trap"}, []int64{9, 10}},
		{"xyz rank 4", Spec{MonsterType: "XYZ", Rank: "4"}, []int64{5}},
		{"link rating", Spec{"linkval": "3"}, []int64{6}},
		{"pendulum scale", Spec{MonsterType: "Pendulum", PendulumScale: "4"}, []int64{11}},
		{"flip ability", Spec{MonsterAbility: "Flip"}, []int64{4}},
		{"quick-play spell", Spec{SpellType: "Quick-Play"}, []int64{7}},
		{"counter trap", Spec{TrapType: "Counter"}, []int64{10}},
		{"normal trap excludes normal spell", Spec{TrapType: "Normal"}, []int64{9}},
		{"rarity any printing", Spec{Rarity: "Ultra Rare"}, []int64{1, 2}},
		{"race and attribute", Spec{Race: "Dragon", "monsterAttribute": "DARK"}, []int64{3, 11}},
		{"effect monsters", Spec{CardType: "Monster", MonsterType: "Effect"}, []int64{4, 11}},
		{"contradiction matches nothing", Spec{CardType: "Spell", MonsterType: "Effect"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchIDs(mustCompile(t, tt.spec))
			if !equalIDs(got, tt.want) {
				t.Errorf("matched %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_AddingConstraintNeverWidens(t *testing.T) {
	base := Spec{CardType: "Monster"}
	extras := []Spec{
		{MonsterType: "Normal"},
		{Level: "7"},
		{Race: "Dragon"},
		{Rarity: "Ultra Rare"},
		{SpellType: "Normal"},
	}

	baseIDs := map[int64]bool{}
	for _, id := range matchIDs(mustCompile(t, base)) {
		baseIDs[id] = true
	}

	for _, extra := range extras {
		merged := Spec{}
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range extra {
			merged[k] = v
		}
		for _, id := range matchIDs(mustCompile(t, merged)) {
			if !baseIDs[id] {
				t.Errorf("adding %v matched card %d outside the base set", extra, id)
			}
		}
	}
}

func TestCompile_RarityIsElementMatch(t *testing.T) {
	p := mustCompile(t, Spec{Rarity: "Ultra Rare"})
	cs := p.Constraints()
	if len(cs) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(cs))
	}
	c := cs[0]
	if c.Kind() != predicate.ElementEquals || c.Field() != predicate.FieldSetPrintings || c.Element() != predicate.ElementRarity {
		t.Errorf("unexpected constraint %s", c)
	}
}

func TestCompile_NumericErrors(t *testing.T) {
	for _, name := range []string{Level, Rank, LinkRating, PendulumScale, "monsterLevel", "scale"} {
		for _, v := range []string{"seven", "7.5", "-1", "1e3"} {
			_, err := Compile(Spec{name: v})
			if !errors.Is(err, domain.ErrInvalidFilterValue) {
				t.Errorf("Compile(%s=%q) err = %v, want ErrInvalidFilterValue", name, v, err)
			}
		}
	}
}

func TestCompile_NumericErrorNamesCanonicalFilter(t *testing.T) {
	_, err := Compile(Spec{"monsterLevel": "x"})
	var fve *domain.FilterValueError
	if !errors.As(err, &fve) {
		t.Fatalf("expected FilterValueError, got %v", err)
	}
	if fve.Filter != Level {
		t.Errorf("Filter = %q, want %q", fve.Filter, Level)
	}
}

func TestCompile_CanonicalNameWinsOverAlias(t *testing.T) {
	p := mustCompile(t, Spec{Level: "4", "monsterLevel": "7"})
	if p.String() != "level=4" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestCompile_Deterministic(t *testing.T) {
	spec := Spec{CardType: "Monster", MonsterType: "Effect", Level: "4", Race: "Warrior", Rarity: "Common"}
	first := mustCompile(t, spec).Constraints()
	for i := 0; i < 20; i++ {
		again := mustCompile(t, spec).Constraints()
		if len(again) != len(first) {
			t.Fatalf("length changed: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("constraint %d differs: %s vs %s", j, first[j], again[j])
			}
		}
	}
}

func TestNames_IncludesAliases(t *testing.T) {
	names := map[string]bool{}
	for _, n := range Names() {
		names[n] = true
	}
	for _, n := range []string{CardType, Rarity, "monsterLevel", "linkval", "scale"} {
		if !names[n] {
			t.Errorf("Names() missing %q", n)
		}
	}
}
