package predicate

import (
	"regexp"

	"github.com/alexwilson/cardex/internal/domain/card"
)

// Matches evaluates the predicate against a card in memory.
// An invalid pattern never matches.
func (p Predicate) Matches(c *card.Card) bool {
	for _, cons := range p.constraints {
		if !cons.Matches(c) {
			return false
		}
	}
	return true
}

// Matches evaluates a single constraint against a card.
func (c Constraint) Matches(cd *card.Card) bool {
	switch c.kind {
	case Equals:
		v, ok := stringField(cd, c.field)
		return ok && v == c.str
	case EqualsInt:
		v := intField(cd, c.field)
		return v != nil && *v == c.num
	case Pattern:
		v, ok := stringField(cd, c.field)
		if !ok {
			return false
		}
		expr := c.str
		if c.fold {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return false
		}
		return re.MatchString(v)
	case ElementEquals:
		if c.field != FieldSetPrintings {
			return false
		}
		for _, sp := range cd.SetPrintings {
			if v, ok := setPrintingField(sp, c.element); ok && v == c.str {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func stringField(c *card.Card, f Field) (string, bool) {
	switch f {
	case FieldName:
		return c.Name, true
	case FieldType:
		return c.Type, true
	case FieldDescription:
		return c.Description, true
	case FieldRace:
		return c.Race, true
	case FieldAttribute:
		return c.Attribute, true
	default:
		return "", false
	}
}

func intField(c *card.Card, f Field) *int {
	switch f {
	case FieldATK:
		return c.ATK
	case FieldDEF:
		return c.DEF
	case FieldLevel:
		return c.Level
	case FieldRank:
		return c.Rank
	case FieldLinkRating:
		return c.LinkRating
	case FieldPendulumScale:
		return c.PendulumScale
	case FieldID:
		id := int(c.ID)
		return &id
	default:
		return nil
	}
}

func setPrintingField(sp card.SetPrinting, f Field) (string, bool) {
	switch f {
	case ElementSetName:
		return sp.SetName, true
	case ElementSetCode:
		return sp.SetCode, true
	case ElementRarity:
		return sp.Rarity, true
	default:
		return "", false
	}
}
