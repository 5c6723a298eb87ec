package reactive

import (
	"errors"
	"testing"
)

func TestEnvelopePresence(t *testing.T) {
	env := Present(nil)
	if !env.IsPresent() {
		t.Fatalf("expected Present(nil) to report presence")
	}
	value, err := env.Unwrap()
	if err != nil {
		t.Fatalf("unexpected unwrap error: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil value, got %v", value)
	}

	empty := Missing()
	if empty.IsPresent() {
		t.Fatalf("expected Missing to report absence")
	}
	if _, err := empty.Unwrap(); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestEnvelopeOrElse(t *testing.T) {
	if got := Present(3).OrElse(7); got != 3 {
		t.Fatalf("expected stored value, got %v", got)
	}
	if got := Missing().OrElse(7); got != 7 {
		t.Fatalf("expected fallback, got %v", got)
	}
}
