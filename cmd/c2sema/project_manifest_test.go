package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"c2sema/internal/project"
)

const testManifest = "[project]\nname = \"demo\"\n\n[analysis]\nprint-types = true\n\n[[module]]\nname = \"app\"\nfiles = [\"app.c2ast\"]\n"

func writeManifest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(testManifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

func TestLoadManifestFromDirOrFile(t *testing.T) {
	dir := writeManifest(t)
	nested := filepath.Join(dir, "build")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, arg := range []string{dir, nested, filepath.Join(dir, project.ManifestName)} {
		m, err := loadManifest([]string{arg})
		if err != nil {
			t.Fatalf("%s: %v", arg, err)
		}
		if m.Project.Name != "demo" || m.Root != dir {
			t.Fatalf("%s: got %+v", arg, m)
		}
	}
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := loadManifest([]string{filepath.Join(t.TempDir(), "nope")})
	if err == nil || !strings.Contains(err.Error(), "cannot access") {
		t.Fatalf("want access error, got %v", err)
	}
}

func TestApplyAnalysisFlagsOnlyChanged(t *testing.T) {
	m, err := loadManifest([]string{writeManifest(t)})
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	cmd := &cobra.Command{Use: "check"}
	addAnalysisFlags(cmd)
	for name, value := range map[string]string{
		"check-unused":    "false",
		"max-diagnostics": "7",
		"entry":           "start",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	if err := applyAnalysisFlags(cmd, m); err != nil {
		t.Fatalf("applyAnalysisFlags: %v", err)
	}
	a := m.Analysis
	// print-types не трогали: остаётся значение из манифеста
	if !a.PrintTypes || a.CheckUnused || a.MaxDiagnostics != 7 || m.Project.Entry != "start" {
		t.Fatalf("analysis: %+v entry=%q", a, m.Project.Entry)
	}
}

func TestApplyAnalysisFlagsRejectsNegativeLimit(t *testing.T) {
	m, err := loadManifest([]string{writeManifest(t)})
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	cmd := &cobra.Command{Use: "check"}
	addAnalysisFlags(cmd)
	if err := cmd.Flags().Set("max-diagnostics", "-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := applyAnalysisFlags(cmd, m); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if shouldUseTUI(uiModeAuto, "json") {
		t.Fatalf("json output never gets a progress view in auto mode")
	}
}
