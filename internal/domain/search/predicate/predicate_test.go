package predicate

import (
	"testing"

	"github.com/alexwilson/cardex/internal/domain/card"
)

func sampleCard() *card.Card {
	return &card.Card{
		ID:    46986414,
		Name:  "Dark Magician",
		Type:  "Normal Monster",
		Level: card.Int(7),
		Race:  "Spellcaster",
		SetPrintings: []card.SetPrinting{
			{SetName: "Legend of Blue Eyes", SetCode: "LOB-005", Rarity: "Ultra Rare"},
			{SetName: "Starter Deck: Yugi", SetCode: "SDY-006", Rarity: "Common"},
			{SetName: "Dark Legends", SetCode: "DLG1-EN001", Rarity: "Secret Rare"},
		},
	}
}

func TestPredicate_EmptyMatchesAll(t *testing.T) {
	var p Predicate
	if !p.IsEmpty() {
		t.Fatal("zero predicate should be empty")
	}
	if !p.Matches(sampleCard()) {
		t.Error("empty predicate should match any card")
	}
	if p.String() != "true" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestPredicate_AndDoesNotAlias(t *testing.T) {
	base := New(NewEquals(FieldRace, "Spellcaster"))
	a := base.And(NewEqualsInt(FieldLevel, 7))
	b := base.And(NewEqualsInt(FieldLevel, 4))

	if base.Len() != 1 {
		t.Fatalf("base modified: %d constraints", base.Len())
	}
	if !a.Matches(sampleCard()) {
		t.Error("a should match")
	}
	if b.Matches(sampleCard()) {
		t.Error("b should not match")
	}
}

func TestPredicate_ConstraintsReturnsCopy(t *testing.T) {
	p := New(NewEquals(FieldRace, "Spellcaster"))
	cs := p.Constraints()
	cs[0] = NewEquals(FieldRace, "Dragon")
	if !p.Matches(sampleCard()) {
		t.Error("mutating Constraints() result changed the predicate")
	}
}

func TestConstraint_Matches(t *testing.T) {
	c := sampleCard()
	tests := []struct {
		name string
		cons Constraint
		want bool
	}{
		{"equals hit", NewEquals(FieldType, "Normal Monster"), true},
		{"equals miss", NewEquals(FieldType, "Normal"), false},
		{"int hit", NewEqualsInt(FieldLevel, 7), true},
		{"int miss", NewEqualsInt(FieldLevel, 8), false},
		{"int absent", NewEqualsInt(FieldRank, 7), false},
		{"contains", NewContains(FieldType, "Monster", false), true},
		{"contains case sensitive", NewContains(FieldType, "monster", false), false},
		{"contains folded", NewContains(FieldType, "monster", true), true},
		{"pattern", NewPattern(FieldName, "dark.*cian", true), true},
		{"element rarity hit", NewElementEquals(FieldSetPrintings, ElementRarity, "Ultra Rare"), true},
		{"element rarity miss", NewElementEquals(FieldSetPrintings, ElementRarity, "Ghost Rare"), false},
		{"element set code", NewElementEquals(FieldSetPrintings, ElementSetCode, "SDY-006"), true},
		{"invalid pattern", NewPattern(FieldName, "(", false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cons.Matches(c); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicate_StringIsCanonical(t *testing.T) {
	a := New(NewEqualsInt(FieldLevel, 7), NewContains(FieldType, "Monster", false))
	b := New(NewContains(FieldType, "Monster", false), NewEqualsInt(FieldLevel, 7))
	if a.String() != b.String() {
		t.Errorf("%q != %q", a.String(), b.String())
	}
	want := `level=7 AND type~/Monster/`
	if a.String() != want {
		t.Errorf("String() = %q, want %q", a.String(), want)
	}
}

func TestConstraint_String(t *testing.T) {
	tests := []struct {
		cons Constraint
		want string
	}{
		{NewEquals(FieldRace, "Dragon"), `race="Dragon"`},
		{NewEqualsInt(FieldRank, 4), `rank=4`},
		{NewPattern(FieldName, "blue.*eyes", true), `name~/blue.*eyes/i`},
		{NewElementEquals(FieldSetPrintings, ElementRarity, "Ultra Rare"), `setPrintings[].rarity="Ultra Rare"`},
	}
	for _, tt := range tests {
		if got := tt.cons.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if Pattern.String() != "pattern" || Kind(0).String() != "unknown" {
		t.Error("unexpected Kind strings")
	}
}
