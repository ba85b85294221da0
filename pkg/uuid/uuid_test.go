package uuid

import (
	"regexp"
	"testing"
)

func TestNewV7_SetsVersionAndVariant(t *testing.T) {
	t.Parallel()

	u := NewV7()

	if u.Version() != 7 {
		t.Fatalf("expected version 7, got %d", u.Version())
	}

	// Variant in byte 8 must be RFC4122 (10xxxxxx)
	if (u[8] & 0xc0) != 0x80 {
		t.Fatalf("expected RFC4122 variant bits 10xxxxxx, got %08b", u[8])
	}
}

func TestUUID_String_Format(t *testing.T) {
	t.Parallel()

	s := NewV7().String()

	if len(s) != 36 {
		t.Fatalf("expected UUID string len=36, got %d (%q)", len(s), s)
	}

	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !re.MatchString(s) {
		t.Fatalf("expected canonical uuid v7 format, got %q", s)
	}
}

func TestNewV7_Sortable(t *testing.T) {
	t.Parallel()

	a := NewV7().String()
	b := NewV7().String()
	if a[:8] > b[:8] {
		t.Fatalf("timestamp prefix went backwards: %q then %q", a, b)
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	if !IsValid(NewV7().String()) {
		t.Error("expected generated id to be valid")
	}
	if IsValid("not-a-uuid") {
		t.Error("expected garbage to be invalid")
	}
	if _, err := Parse(""); err == nil {
		t.Error("expected Parse(\"\") to fail")
	}
}
