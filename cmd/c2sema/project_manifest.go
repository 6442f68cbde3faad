package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"c2sema/internal/project"
)

// loadManifest resolves the manifest named by args: a c2sema.toml path, a
// directory to search upwards from, or nothing for the working directory.
func loadManifest(args []string) (*project.Manifest, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	info, err := os.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", start, err)
	}
	if !info.IsDir() {
		return project.LoadManifest(start)
	}
	path, ok, err := project.FindManifest(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no " + project.ManifestName + " found in " + absOr(start) + " or its parents")
	}
	return project.LoadManifest(path)
}

func absOr(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// applyAnalysisFlags overrides manifest settings with flags the user set
// explicitly.
func applyAnalysisFlags(cmd *cobra.Command, m *project.Manifest) error {
	flags := cmd.Flags()
	bools := []struct {
		name string
		dst  *bool
	}{
		{"print-types", &m.Analysis.PrintTypes},
		{"print-inits", &m.Analysis.PrintInits},
		{"print-bodies", &m.Analysis.PrintBodies},
		{"print-lib", &m.Analysis.PrintLib},
		{"check-unused", &m.Analysis.CheckUnused},
		{"warn-unused-locals", &m.Analysis.WarnUnusedLocals},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", b.name, err)
		}
		*b.dst = v
	}
	if flags.Changed("max-diagnostics") {
		v, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("--max-diagnostics must not be negative, got %d", v)
		}
		m.Analysis.MaxDiagnostics = v
	}
	if flags.Changed("entry") {
		v, err := flags.GetString("entry")
		if err != nil {
			return fmt.Errorf("failed to get entry flag: %w", err)
		}
		m.Project.Entry = v
	}
	return nil
}
