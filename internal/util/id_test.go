package util

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatal("NewID returned the same value twice")
	}
	if _, err := ParseID(a); err != nil {
		t.Errorf("NewID() = %q is not a valid UUID: %v", a, err)
	}
	// Version nibble of a UUIDv7
	if a[14] != '7' {
		t.Errorf("NewID() = %q, want version 7", a)
	}
}

func TestParseID(t *testing.T) {
	upper := strings.ToUpper("0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b")

	got, err := ParseID(upper)
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}
	if got != strings.ToLower(upper) {
		t.Errorf("ParseID() = %q, want lower-case form", got)
	}

	if _, err := ParseID("not-an-id"); err == nil {
		t.Error("ParseID(invalid) should fail")
	}
	if _, err := ParseID(""); err == nil {
		t.Error("ParseID(\"\") should fail")
	}
}
