package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

const sampleManifest = `
[project]
name = "demo"

[[module]]
name = "app"
files = ["src/main.c2ast", "/abs/extra.c2ast"]

[[module]]
name = "stdio"
files = ["lib/stdio.c2ast"]
external = true
`

func TestParseManifestDefaults(t *testing.T) {
	m, err := ParseManifest(sampleManifest)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Project.Name != "demo" || m.Project.Entry != "" {
		t.Fatalf("project: %+v", m.Project)
	}
	if diff := deep.Equal(m.Analysis, DefaultAnalysis()); diff != nil {
		t.Fatalf("analysis defaults: %v", diff)
	}
	stdio, ok := m.Module("stdio")
	if !ok || !stdio.External {
		t.Fatalf("stdio module: %+v %v", stdio, ok)
	}
	if _, ok := m.Module("net"); ok {
		t.Fatalf("unexpected module net")
	}
}

func TestParseManifestAnalysisOverrides(t *testing.T) {
	text := sampleManifest + `
[analysis]
check-unused = false
warn-unused-locals = true
max-diagnostics = 5
`
	m, err := ParseManifest(text)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	want := AnalysisConfig{WarnUnusedLocals: true, MaxDiagnostics: 5}
	if diff := deep.Equal(m.Analysis, want); diff != nil {
		t.Fatalf("analysis: %v", diff)
	}
}

func TestParseManifestErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want error
		msg  string
	}{
		{name: "no project", text: "[[module]]\nname = \"a\"\nfiles = [\"a\"]\n", want: ErrProjectSectionMissing},
		{name: "blank name", text: "[project]\nname = \"  \"\n", want: ErrProjectNameMissing},
		{name: "no modules", text: "[project]\nname = \"p\"\n", want: ErrNoModules},
		{name: "module without files", text: "[project]\nname = \"p\"\n[[module]]\nname = \"a\"\n", want: ErrModuleInvalid},
		{name: "module without name", text: "[project]\nname = \"p\"\n[[module]]\nfiles = [\"a\"]\n", want: ErrModuleInvalid},
		{
			name: "duplicate",
			text: "[project]\nname = \"p\"\n[[module]]\nname = \"a\"\nfiles = [\"x\"]\n[[module]]\nname = \" a\"\nfiles = [\"y\"]\n",
			want: ErrModuleDuplicate,
		},
		{name: "unknown key", text: "[project]\nname = \"p\"\nversion = 2\n", msg: "unknown keys: project.version"},
		{name: "bad toml", text: "[project\n", msg: "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest(tc.text)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			if tc.msg != "" && !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("want %q in %q", tc.msg, err)
			}
		})
	}
}

func TestFilePathsResolveAgainstRoot(t *testing.T) {
	m, err := ParseManifest(sampleManifest)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	app, _ := m.Module("app")
	got := app.FilePaths("/work")
	want := []string{filepath.Join("/work", "src", "main.c2ast"), filepath.FromSlash("/abs/extra.c2ast")}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("paths: %v", diff)
	}
}

func TestFindAndLoadManifest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(root, ManifestName)
	if err := os.WriteFile(path, []byte(sampleManifest), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	found, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: %v %v", ok, err)
	}
	if found != path {
		t.Fatalf("want %s, got %s", path, found)
	}
	m, err := LoadManifest(found)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Root != root || m.Path != path {
		t.Fatalf("root/path: %s %s", m.Root, m.Path)
	}
}

func TestLoadManifestWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, []byte("[project]\nname = \"p\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadManifest(path)
	if !errors.Is(err, ErrNoModules) || !strings.HasPrefix(err.Error(), path) {
		t.Fatalf("want wrapped ErrNoModules, got %v", err)
	}
}
