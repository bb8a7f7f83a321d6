package filter

import (
	"strings"

	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// MatchKind is how a rule compares a card field with its operand.
type MatchKind int

// Match kinds.
const (
	// Exact requires the field to equal the operand.
	Exact MatchKind = iota + 1
	// Contains requires the operand as a literal substring.
	Contains
	// ContainsFold is Contains ignoring case.
	ContainsFold
)

// Match is one field comparison inside a Rule.
type Match struct {
	Field   predicate.Field
	Kind    MatchKind
	Operand string
}

func (m Match) constraint() predicate.Constraint {
	switch m.Kind {
	case Contains:
		return predicate.NewContains(m.Field, m.Operand, false)
	case ContainsFold:
		return predicate.NewContains(m.Field, m.Operand, true)
	default:
		return predicate.NewEquals(m.Field, m.Operand)
	}
}

// Rule is the conjunction of matches a category value stands for.
type Rule []Match

// RuleTable maps a category value to its rule. Keys are lower case.
type RuleTable map[string]Rule

// resolve returns the constraints for v, or nil when v is not a known category.
func (t RuleTable) resolve(v string) []predicate.Constraint {
	rule, ok := t[strings.ToLower(v)]
	if !ok {
		return nil
	}
	out := make([]predicate.Constraint, len(rule))
	for i, m := range rule {
		out[i] = m.constraint()
	}
	return out
}

func exact(f predicate.Field, s string) Match    { return Match{Field: f, Kind: Exact, Operand: s} }
func contains(f predicate.Field, s string) Match { return Match{Field: f, Kind: Contains, Operand: s} }

// CardTypes maps cardType values.
var CardTypes = RuleTable{
	"monster": {contains(predicate.FieldType, "Monster")},
	"spell":   {exact(predicate.FieldType, "Spell Card")},
	"trap":    {exact(predicate.FieldType, "Trap Card")},
}

// MonsterTypes maps monsterType values onto the card type.
var MonsterTypes = RuleTable{
	"normal":   {contains(predicate.FieldType, "Normal")},
	"effect":   {contains(predicate.FieldType, "Effect")},
	"fusion":   {contains(predicate.FieldType, "Fusion")},
	"ritual":   {contains(predicate.FieldType, "Ritual")},
	"synchro":  {contains(predicate.FieldType, "Synchro")},
	"xyz":      {{Field: predicate.FieldType, Kind: ContainsFold, Operand: "XYZ"}},
	"pendulum": {contains(predicate.FieldType, "Pendulum")},
	"link":     {contains(predicate.FieldType, "Link")},
}

// MonsterAbilities maps monsterAbility values onto the description text.
var MonsterAbilities = RuleTable{
	"spirit": {contains(predicate.FieldDescription, "Spirit")},
	"toon":   {contains(predicate.FieldDescription, "Toon")},
	"union":  {contains(predicate.FieldDescription, "Union")},
	"gemini": {contains(predicate.FieldDescription, "Gemini")},
	"flip":   {contains(predicate.FieldDescription, "FLIP:")},
}

// Spell and trap subtypes are stored as the card race by the upstream source.
var (
	// SpellTypes maps spellType values.
	SpellTypes = subtypeTable("Spell Card", "Normal", "Quick-Play", "Continuous", "Equip", "Field", "Ritual")
	// TrapTypes maps trapType values.
	TrapTypes = subtypeTable("Trap Card", "Normal", "Continuous", "Counter")
)

func subtypeTable(cardType string, subtypes ...string) RuleTable {
	t := make(RuleTable, len(subtypes))
	for _, s := range subtypes {
		t[strings.ToLower(s)] = Rule{exact(predicate.FieldType, cardType), exact(predicate.FieldRace, s)}
	}
	return t
}

// categoryFilters fixes the order in which category filters are compiled.
var categoryFilters = []struct {
	name  string
	rules RuleTable
}{
	{CardType, CardTypes},
	{MonsterType, MonsterTypes},
	{MonsterAbility, MonsterAbilities},
	{SpellType, SpellTypes},
	{TrapType, TrapTypes},
}
