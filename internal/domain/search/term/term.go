// Package term validates free-text search terms and turns them into the
// flexible name pattern.
package term

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexwilson/cardex/internal/domain"
)

// MaxLength is the maximum term length in characters.
const MaxLength = 100

// gap joins consecutive tokens: any run of characters in between.
const gap = ".*"

// Validate rejects terms longer than MaxLength characters or containing
// anything other than letters, digits, whitespace, apostrophes and hyphens.
func Validate(t string) error {
	if n := utf8.RuneCountInString(t); n > MaxLength {
		return fmt.Errorf("%w: too long (%d > %d characters)", domain.ErrInvalidSearchTerm, n, MaxLength)
	}
	if !utf8.ValidString(t) {
		return fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidSearchTerm)
	}
	for _, r := range t {
		if !allowed(r) {
			return fmt.Errorf("%w: character %q is not allowed", domain.ErrInvalidSearchTerm, r)
		}
	}
	return nil
}

func allowed(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '\'' || r == '-'
}

// Normalize trims and lower-cases a term.
func Normalize(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Tokens splits a normalized term on whitespace.
func Tokens(t string) []string {
	return strings.Fields(t)
}

// Flexible validates t and builds a pattern matching names that contain
// every token, in order, as a literal substring with anything in between.
// "blue eyes" becomes `blue.*eyes`. The pattern is meant to be applied
// case-insensitively. An empty or blank term yields "".
func Flexible(t string) (string, error) {
	if err := Validate(t); err != nil {
		return "", err
	}
	tokens := Tokens(Normalize(t))
	if len(tokens) == 0 {
		return "", nil
	}
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return strings.Join(tokens, gap), nil
}
