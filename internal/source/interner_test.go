package source

import "testing"

func TestInternerDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern("point")
	b := in.Intern("point")
	if a != b {
		t.Fatalf("expected same id, got %d and %d", a, b)
	}
	if in.Len() != 2 {
		t.Fatalf("expected 2 entries (empty + point), got %d", in.Len())
	}
	if s := in.MustLookup(a); s != "point" {
		t.Fatalf("lookup: got %q", s)
	}
}

func TestInternerNormalizesToNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("caf\u00e9")
	decomposed := in.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("NFC-equivalent identifiers must share an id")
	}
}

func TestInternerEmptyString(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Fatalf("empty string must map to NoStringID, got %d", id)
	}
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatalf("unexpected lookup success")
	}
}
