// Package filter compiles loosely structured filter parameters into a
// card predicate.
package filter

import (
	"strconv"
	"strings"

	"github.com/alexwilson/cardex/internal/domain"
	"github.com/alexwilson/cardex/internal/domain/search/predicate"
)

// Spec maps a filter name to its raw value. Values that are empty or "all"
// place no constraint. Unknown names are ignored.
type Spec map[string]string

// Filter names accepted by Compile.
const (
	CardType       = "cardType"
	MonsterType    = "monsterType"
	MonsterAbility = "monsterAbility"
	SpellType      = "spellType"
	TrapType       = "trapType"
	Race           = "race"
	Attribute      = "attribute"
	Level          = "level"
	Rank           = "rank"
	LinkRating     = "linkRating"
	PendulumScale  = "pendulumScale"
	Rarity         = "rarity"
)

// AnyValue is the sentinel meaning "no constraint".
const AnyValue = "all"

// aliases lists alternative parameter names per filter, checked after the
// canonical name.
var aliases = map[string][]string{
	Race:          {"monsterRace"},
	Attribute:     {"monsterAttribute"},
	Level:         {"monsterLevel"},
	Rank:          {"monsterRank"},
	LinkRating:    {"monsterLinkRating", "linkval"},
	PendulumScale: {"monsterPendulumScale", "scale"},
}

// Names returns every parameter name Compile recognizes, aliases included.
func Names() []string {
	names := []string{
		CardType, MonsterType, MonsterAbility, SpellType, TrapType,
		Race, Attribute, Level, Rank, LinkRating, PendulumScale, Rarity,
	}
	for _, canonical := range []string{Race, Attribute, Level, Rank, LinkRating, PendulumScale} {
		names = append(names, aliases[canonical]...)
	}
	return names
}

// Compile turns a Spec into a conjunctive predicate.
//
// Every recognized constraint is AND-ed, including several constraints on
// the card type: cardType=Monster with monsterType=Effect selects effect
// monsters, while contradictory pairs such as cardType=Spell with
// monsterType=Effect produce a predicate that matches nothing.
// Constraints are emitted in a fixed order so output is deterministic.
//
// monsterAbility is matched against the card description and is best
// effort: it may select cards that merely mention the ability.
func Compile(spec Spec) (predicate.Predicate, error) {
	var cs []predicate.Constraint

	for _, cat := range categoryFilters {
		v, ok := lookup(spec, cat.name)
		if !ok {
			continue
		}
		cs = append(cs, cat.rules.resolve(v)...)
	}

	for _, name := range []string{Race, Attribute} {
		if v, ok := lookup(spec, name); ok {
			cs = append(cs, predicate.NewEquals(predicate.Field(name), v))
		}
	}

	for _, name := range []string{Level, Rank, LinkRating, PendulumScale} {
		v, ok := lookup(spec, name)
		if !ok {
			continue
		}
		n, err := parseNonNegative(v)
		if err != nil {
			return predicate.Predicate{}, domain.NewFilterValueError(name, v)
		}
		cs = append(cs, predicate.NewEqualsInt(predicate.Field(name), n))
	}

	if v, ok := lookup(spec, Rarity); ok {
		cs = append(cs, predicate.NewElementEquals(predicate.FieldSetPrintings, predicate.ElementRarity, v))
	}

	return predicate.New(cs...), nil
}

// lookup returns the first non-sentinel value for a filter or its aliases.
func lookup(spec Spec, name string) (string, bool) {
	for _, key := range append([]string{name}, aliases[name]...) {
		v := strings.TrimSpace(spec[key])
		if v == "" || strings.EqualFold(v, AnyValue) {
			continue
		}
		return v, true
	}
	return "", false
}

func parseNonNegative(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err //nolint:wrapcheck // replaced by FilterValueError at the call site
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
