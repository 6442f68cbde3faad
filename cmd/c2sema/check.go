package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"c2sema/internal/diag"
	"c2sema/internal/diagfmt"
	"c2sema/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [c2sema.toml|directory]",
	Short: "Analyse every module of a project",
	Long: `Load the parsed modules listed in c2sema.toml and run the semantic analysis.
Exits with status 1 when any error is reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|golden|json)")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("timings", false, "show per-phase timings")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for loading (0=auto)")
	checkCmd.Flags().String("ui", "off", "show module progress on stderr (auto|on|off)")

	addAnalysisFlags(checkCmd)
}

// addAnalysisFlags registers the flags applyAnalysisFlags reads. They
// override [analysis] of the manifest.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print-types", false, "dump the AST after struct members are resolved")
	cmd.Flags().Bool("print-inits", false, "dump the AST after variable initializers are checked")
	cmd.Flags().Bool("print-bodies", false, "dump the AST after function bodies are checked")
	cmd.Flags().Bool("print-lib", false, "include interface files in dumps")
	cmd.Flags().Bool("check-unused", true, "warn about unused declarations")
	cmd.Flags().Bool("warn-unused-locals", false, "warn about unused local variables")
	cmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep (0=unlimited)")
	cmd.Flags().String("entry", "", "entry point function name (default main)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "golden", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := diagfmt.ParsePathMode(pathModeStr)
	if err != nil {
		return err
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	color, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	m, err := loadManifest(args)
	if err != nil {
		return err
	}
	if err := applyAnalysisFlags(cmd, m); err != nil {
		return err
	}

	opts := driver.Options{
		Jobs:             jobs,
		WarningsAsErrors: warningsAsErrors,
		NoWarnings:       noWarnings,
		Timings:          showTimings,
		Output:           cmd.OutOrStdout(),
	}
	var res *driver.Result
	if shouldUseTUI(mode, format) {
		res, err = runCheckWithUI(cmd.Context(), m, opts)
	} else {
		res, err = driver.Check(cmd.Context(), m, opts)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != "json" && res.Timer != nil {
		// в текстовых форматах тайминги печатаются отдельной таблицей
		res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Code != diag.ObsTimings })
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	switch format {
	case "pretty":
		diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     color,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
		if res.Bag.Len() > 0 {
			fmt.Fprintf(out, "%d error(s), %d warning(s)\n", res.Errors, res.Warnings)
		}
	case "short":
		diagfmt.Short(out, res.Bag, res.FileSet, pathMode)
	case "golden":
		if text := diag.FormatGoldenDiagnostics(res.Bag.Items(), res.FileSet, withNotes); text != "" {
			fmt.Fprintln(out, text)
		}
	case "json":
		if err := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if res.HasErrors() {
		return exitStatus(1)
	}
	return nil
}
