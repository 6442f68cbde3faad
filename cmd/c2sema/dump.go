package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"c2sema/internal/diag"
	"c2sema/internal/diagfmt"
	"c2sema/internal/driver"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [c2sema.toml|directory]",
	Short: "Print the loaded AST of every module without analysing it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("lib", false, "include interface files")
	dumpCmd.Flags().String("module", "", "dump only this module")
	dumpCmd.Flags().Int("jobs", 0, "max parallel workers for loading (0=auto)")
}

func runDump(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	lib, err := cmd.Flags().GetBool("lib")
	if err != nil {
		return fmt.Errorf("failed to get lib flag: %w", err)
	}
	only, err := cmd.Flags().GetString("module")
	if err != nil {
		return fmt.Errorf("failed to get module flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}

	m, err := loadManifest(args)
	if err != nil {
		return err
	}
	if only != "" {
		if _, ok := m.Module(only); !ok {
			return fmt.Errorf("module %q is not listed in %s", only, m.Path)
		}
	}

	bag := diag.NewBag(m.Analysis.MaxDiagnostics)
	ws, err := driver.Load(cmd.Context(), m, diag.BagReporter{Bag: bag}, jobs)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, mod := range ws.Modules {
		if only != "" && mod.Name != only {
			continue
		}
		if err := diagfmt.DumpModule(out, mod, ws.FileSet, lib); err != nil {
			return fmt.Errorf("failed to dump %s: %w", mod.Name, err)
		}
	}
	if bag.Len() > 0 {
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, ws.FileSet, diagfmt.PrettyOpts{Color: color, PathMode: diagfmt.PathModeAuto, ShowNotes: true})
	}
	if bag.HasErrors() {
		return exitStatus(1)
	}
	return nil
}
