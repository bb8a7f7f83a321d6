package domain

import (
	"errors"
	"testing"
)

func TestFilterValueError_Unwrap(t *testing.T) {
	err := NewFilterValueError("level", "seven")
	if !errors.Is(err, ErrInvalidFilterValue) {
		t.Fatalf("expected errors.Is(ErrInvalidFilterValue), got %v", err)
	}

	var fve *FilterValueError
	if !errors.As(err, &fve) {
		t.Fatalf("expected *FilterValueError, got %T", err)
	}
	if fve.Filter != "level" || fve.Value != "seven" {
		t.Errorf("unexpected fields: %+v", fve)
	}
}

func TestFilterValueError_Message(t *testing.T) {
	err := NewFilterValueError("rank", "x")
	want := `invalid filter value: rank must be a non-negative integer, got "x"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
