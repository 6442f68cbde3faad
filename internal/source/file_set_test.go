package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.c2", []byte("module a;\n\nint x = 1;\n"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{"file start", 0, LineCol{Line: 1, Col: 1}},
		{"newline belongs to its line", 9, LineCol{Line: 1, Col: 10}},
		{"empty line", 10, LineCol{Line: 2, Col: 1}},
		{"third line", 15, LineCol{Line: 3, Col: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if got != tt.want {
				t.Fatalf("offset %d: want %+v, got %+v", tt.off, tt.want, got)
			}
		})
	}
}

func TestFileGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("b.c2", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	for n, want := range map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""} {
		if got := f.GetLine(n); got != want {
			t.Fatalf("line %d: want %q, got %q", n, want, got)
		}
	}
}

func TestLoadNormalizesBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.c2")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if latest, ok := fs.GetLatest(path); !ok || latest != id {
		t.Fatalf("GetLatest mismatch: %v %v", latest, ok)
	}
}

func TestGetUnknownFileIsNil(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(3) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")
	inside := filepath.Join(base, "nested", "f.c2")
	outside := filepath.Join(tmp, "other", "f.c2")

	if got := RelativePath(inside, base); got != "nested/f.c2" {
		t.Fatalf("inside: got %q", got)
	}
	if got := RelativePath(outside, base); got != normalizePath(outside) {
		t.Fatalf("outside: got %q", got)
	}
}
