package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 9}, Span{File: 1, Start: 2, End: 9}},
		{"nested", Span{File: 1, Start: 2, End: 10}, Span{File: 1, Start: 3, End: 4}, Span{File: 1, Start: 2, End: 10}},
		{"other file", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 9}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSpanContainsAndStartOnly(t *testing.T) {
	outer := Span{File: 3, Start: 10, End: 20}
	if !outer.Contains(Span{File: 3, Start: 12, End: 20}) {
		t.Fatalf("expected containment")
	}
	if outer.Contains(Span{File: 4, Start: 12, End: 13}) {
		t.Fatalf("spans of different files never contain each other")
	}
	if s := outer.StartOnly(); !s.Empty() || s.Start != 10 {
		t.Fatalf("unexpected StartOnly result %v", s)
	}
}
