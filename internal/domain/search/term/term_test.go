package term

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/alexwilson/cardex/internal/domain"
)

func TestValidate_Accepts(t *testing.T) {
	for _, s := range []string{
		"",
		"blue eyes",
		"Blue-Eyes White Dragon",
		"Ra's disciple",
		"Number 39",
		"Élan Vital",
		strings.Repeat("a", MaxLength),
		"tab\tseparated",
	} {
		if err := Validate(s); err != nil {
			t.Errorf("Validate(%q) = %v", s, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	for _, s := range []string{
		strings.Repeat("a", MaxLength+1),
		"<script>",
		"drop; table",
		"blue.*eyes",
		"a|b",
		"(dragon)",
		"50%",
		"\xff",
	} {
		err := Validate(s)
		if !errors.Is(err, domain.ErrInvalidSearchTerm) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidSearchTerm", s, err)
		}
	}
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	s := strings.Repeat("é", MaxLength)
	if err := Validate(s); err != nil {
		t.Errorf("100 two-byte letters rejected: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Blue EYES \n"); got != "blue eyes" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestFlexible_Pattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"blue eyes", "blue.*eyes"},
		{"  Blue   Eyes  ", "blue.*eyes"},
		{"blue-eyes", "blue-eyes"},
		{"ra's", "ra's"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		got, err := Flexible(tt.in)
		if err != nil {
			t.Fatalf("Flexible(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Flexible(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlexible_RejectsBeforeBuilding(t *testing.T) {
	_, err := Flexible("blue;eyes")
	if !errors.Is(err, domain.ErrInvalidSearchTerm) {
		t.Fatalf("expected ErrInvalidSearchTerm, got %v", err)
	}
}

func TestFlexible_OrderedSubsequenceMatchesName(t *testing.T) {
	names := []string{
		"Blue-Eyes White Dragon",
		"Dark Magician Girl",
		"Elemental HERO Neos",
		"Number 39: Utopia",
		"Ra's Disciple",
		"Red-Eyes B. Dragon",
	}
	for _, name := range names {
		words := strings.Fields(name)
		// every contiguous and non-contiguous ordered selection of whole tokens
		for mask := 1; mask < 1<<len(words); mask++ {
			var picked []string
			for i, w := range words {
				if mask&(1<<i) != 0 {
					picked = append(picked, w)
				}
			}
			query := strings.Join(picked, " ")
			if Validate(query) != nil {
				continue
			}
			pattern, err := Flexible(query)
			if err != nil {
				t.Fatalf("Flexible(%q): %v", query, err)
			}
			re := regexp.MustCompile("(?i)" + pattern)
			if !re.MatchString(name) {
				t.Errorf("pattern %q from %q does not match %q", pattern, query, name)
			}
		}
	}
}

func TestFlexible_TokensMustKeepOrder(t *testing.T) {
	pattern, err := Flexible("dragon blue")
	if err != nil {
		t.Fatal(err)
	}
	re := regexp.MustCompile("(?i)" + pattern)
	if re.MatchString("Blue-Eyes White Dragon") {
		t.Error("out-of-order tokens should not match")
	}
}
