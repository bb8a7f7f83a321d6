// Package predicate is the store-agnostic query condition produced by the
// filter compiler and consumed by card stores.
package predicate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Field names a card attribute, using the card's JSON field names.
type Field string

// Card fields addressable by constraints.
const (
	FieldID             Field = "id"
	FieldName           Field = "name"
	FieldType           Field = "type"
	FieldDescription    Field = "description"
	FieldATK            Field = "atk"
	FieldDEF            Field = "def"
	FieldLevel          Field = "level"
	FieldRank           Field = "rank"
	FieldLinkRating     Field = "linkRating"
	FieldPendulumScale  Field = "pendulumScale"
	FieldRace           Field = "race"
	FieldAttribute      Field = "attribute"
	FieldSetPrintings   Field = "setPrintings"
	FieldImagePrintings Field = "imagePrintings"
)

// Set-printing element fields.
const (
	ElementSetName Field = "setName"
	ElementSetCode Field = "setCode"
	ElementRarity  Field = "rarity"
)

// Kind tags the variant of a Constraint.
type Kind int

// Constraint kinds.
const (
	// Equals is an exact string match.
	Equals Kind = iota + 1
	// EqualsInt is an exact integer match.
	EqualsInt
	// Pattern is a regular-expression match; the expression is already escaped.
	Pattern
	// ElementEquals matches when at least one element of an array field has
	// the given value in its element field.
	ElementEquals
)

func (k Kind) String() string {
	switch k {
	case Equals:
		return "equals"
	case EqualsInt:
		return "equals_int"
	case Pattern:
		return "pattern"
	case ElementEquals:
		return "element_equals"
	default:
		return "unknown"
	}
}

// Constraint is a single field condition.
type Constraint struct {
	kind    Kind
	field   Field
	element Field
	str     string
	num     int
	fold    bool
}

// NewEquals creates an exact string constraint.
func NewEquals(f Field, value string) Constraint {
	return Constraint{kind: Equals, field: f, str: value}
}

// NewEqualsInt creates an exact integer constraint.
func NewEqualsInt(f Field, value int) Constraint {
	return Constraint{kind: EqualsInt, field: f, num: value}
}

// NewPattern creates a regular-expression constraint. fold makes it case-insensitive.
func NewPattern(f Field, expr string, fold bool) Constraint {
	return Constraint{kind: Pattern, field: f, str: expr, fold: fold}
}

// NewContains matches any value containing s literally.
func NewContains(f Field, s string, fold bool) Constraint {
	return NewPattern(f, regexp.QuoteMeta(s), fold)
}

// NewElementEquals creates an array element constraint.
func NewElementEquals(array, element Field, value string) Constraint {
	return Constraint{kind: ElementEquals, field: array, element: element, str: value}
}

// Kind returns the constraint variant.
func (c Constraint) Kind() Kind { return c.kind }

// Field returns the constrained card field (the array field for ElementEquals).
func (c Constraint) Field() Field { return c.field }

// Element returns the element field for ElementEquals.
func (c Constraint) Element() Field { return c.element }

// Value returns the string operand (the expression for Pattern).
func (c Constraint) Value() string { return c.str }

// Int returns the integer operand for EqualsInt.
func (c Constraint) Int() int { return c.num }

// Fold reports whether a Pattern ignores case.
func (c Constraint) Fold() bool { return c.fold }

// String renders the constraint canonically.
func (c Constraint) String() string {
	switch c.kind {
	case Equals:
		return fmt.Sprintf("%s=%s", c.field, strconv.Quote(c.str))
	case EqualsInt:
		return fmt.Sprintf("%s=%d", c.field, c.num)
	case Pattern:
		flags := ""
		if c.fold {
			flags = "i"
		}
		return fmt.Sprintf("%s~/%s/%s", c.field, c.str, flags)
	case ElementEquals:
		return fmt.Sprintf("%s[].%s=%s", c.field, c.element, strconv.Quote(c.str))
	default:
		return "?"
	}
}

// Predicate is an immutable conjunction of constraints. The zero value
// matches every card.
type Predicate struct {
	constraints []Constraint
}

// New creates a predicate from constraints.
func New(cs ...Constraint) Predicate {
	if len(cs) == 0 {
		return Predicate{}
	}
	out := make([]Constraint, len(cs))
	copy(out, cs)
	return Predicate{constraints: out}
}

// And returns a new predicate that also requires cs. p is not modified.
func (p Predicate) And(cs ...Constraint) Predicate {
	out := make([]Constraint, 0, len(p.constraints)+len(cs))
	out = append(out, p.constraints...)
	out = append(out, cs...)
	return Predicate{constraints: out}
}

// Constraints returns a copy of the constraints in insertion order.
func (p Predicate) Constraints() []Constraint {
	out := make([]Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

// Len returns the number of constraints.
func (p Predicate) Len() int { return len(p.constraints) }

// IsEmpty reports whether the predicate has no constraints.
func (p Predicate) IsEmpty() bool { return len(p.constraints) == 0 }

// String renders the predicate canonically: constraints sorted, joined by AND.
// Equal conjunctions render identically regardless of insertion order.
func (p Predicate) String() string {
	if len(p.constraints) == 0 {
		return "true"
	}
	parts := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		parts[i] = c.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " AND ")
}
