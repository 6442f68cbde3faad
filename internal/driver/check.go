// Package driver loads a project described by c2sema.toml and runs the
// analyser over its modules.
package driver

import (
	"context"
	"fmt"
	"io"
	"time"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/observ"
	"c2sema/internal/project"
	"c2sema/internal/sema"
	"c2sema/internal/source"
	"c2sema/internal/trace"
)

// Options configure Check. Analysis settings come from the manifest; the
// CLI overrides them there before calling Check.
type Options struct {
	Jobs             int
	WarningsAsErrors bool
	NoWarnings       bool
	// Timings records per-phase durations and appends them as an OBS6001
	// diagnostic.
	Timings bool
	// Output receives the AST dumps requested by the print-* settings.
	Output io.Writer
	// Progress receives module-level events; optional.
	Progress ProgressSink
}

// Result is the outcome of Check.
type Result struct {
	FileSet *source.FileSet
	Bag     *diag.Bag
	Modules []*ast.Module // в порядке манифеста
	// Order is the dependency order modules were (or would have been)
	// analysed in.
	Order []string
	// Analysed lists the modules whose analysis ran; the last one stopped
	// the run when Stopped is set.
	Analysed []string
	Stopped  bool

	Errors   int
	Warnings int
	Timer    *observ.Timer
}

// HasErrors reports whether any error diagnostic was produced.
func (r *Result) HasErrors() bool {
	return r != nil && r.Errors > 0
}

// Check loads the project and analyses its modules in dependency order.
// Analysis stops after the first module that reports errors. When every
// module passes, the unused audit runs over the non-external modules.
func Check(ctx context.Context, m *project.Manifest, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.Parent(ctx), trace.Subject{})
	ctx = trace.WithParent(ctx, span)

	eng := diag.NewEngine(diag.NewBag(m.Analysis.MaxDiagnostics), diag.EngineOptions{
		WarningsAsErrors: opts.WarningsAsErrors,
		NoWarnings:       opts.NoWarnings,
	})
	res := &Result{Bag: eng.Bag()}
	if opts.Timings {
		res.Timer = observ.NewTimer()
	}
	defer func() {
		res.Errors = eng.ErrorCount()
		res.Warnings = eng.WarningCount()
		if res.Timer != nil {
			appendTimingDiagnostic(res.Bag, m.Project.Name, res.Timer)
		}
		span.WithErrors(res.Errors).End(m.Project.Name)
	}()

	prog := progress{sink: opts.Progress}
	loadIdx := res.begin("load")
	loadStart := time.Now()
	prog.emit(Event{Stage: StageLoad, Status: StatusWorking})
	ws, err := Load(ctx, m, eng, opts.Jobs)
	res.end(loadIdx, "")
	if err != nil {
		prog.emit(Event{Stage: StageLoad, Status: StatusError})
		return res, err
	}
	loadStatus := StatusDone
	if eng.HasErrorOccurred() {
		loadStatus = StatusError
	}
	prog.emit(Event{Stage: StageLoad, Status: loadStatus, Errors: eng.ErrorCount(), Elapsed: time.Since(loadStart)})
	res.FileSet = ws.FileSet
	res.Modules = ws.Modules

	ordered := analysisOrder(ws.Modules, eng)
	for _, mod := range ordered {
		res.Order = append(res.Order, mod.Name)
		prog.emit(Event{Module: mod.Name, Stage: StageAnalyse, Status: StatusQueued})
	}
	skipRest := func(from int) {
		for _, mod := range ordered[from:] {
			prog.emit(Event{Module: mod.Name, Stage: StageAnalyse, Status: StatusSkipped})
		}
	}
	if eng.HasErrorOccurred() {
		trace.Point(tracer, trace.ScopeDriver, "skip-analysis", span.ID(), trace.Subject{}, "load errors")
		skipRest(0)
		return res, nil
	}

	analysers := make([]*sema.ModuleAnalyser, 0, len(ordered))
	for i, mod := range ordered {
		if err := ctx.Err(); err != nil {
			skipRest(i)
			return res, err
		}
		start := time.Now()
		prog.emit(Event{Module: mod.Name, Stage: StageAnalyse, Status: StatusWorking})
		ma := sema.NewModuleAnalyser(mod, ws.Modules, eng, sema.Options{
			Types:            ws.Types,
			EntryPoint:       m.Project.Entry,
			PrintAfterTypes:  m.Analysis.PrintTypes,
			PrintAfterInits:  m.Analysis.PrintInits,
			PrintAfterBodies: m.Analysis.PrintBodies,
			PrintLib:         m.Analysis.PrintLib,
			Output:           opts.Output,
			Files:            ws.FileSet,
			WarnUnusedLocals: m.Analysis.WarnUnusedLocals,
			Timer:            res.Timer,
		})
		res.Analysed = append(res.Analysed, mod.Name)
		if errors := ma.Analyse(ctx); errors != 0 || eng.HasFatalOccurred() {
			res.Stopped = true
			prog.emit(Event{Module: mod.Name, Stage: StageAnalyse, Status: StatusError, Errors: errors, Elapsed: time.Since(start)})
			trace.Point(tracer, trace.ScopeModule, "stop", span.ID(), trace.Subject{Module: mod.Name}, fmt.Sprintf("%d errors", errors))
			skipRest(i + 1)
			return res, nil
		}
		prog.emit(Event{Module: mod.Name, Stage: StageAnalyse, Status: StatusDone, Elapsed: time.Since(start)})
		analysers = append(analysers, ma)
	}

	if m.Analysis.CheckUnused {
		idx := res.begin("check-unused")
		prog.emit(Event{Stage: StageUnused, Status: StatusWorking})
		for _, ma := range analysers {
			if ma.Module().IsExternal {
				continue
			}
			ma.CheckUnused(ctx)
		}
		res.end(idx, "")
		prog.emit(Event{Stage: StageUnused, Status: StatusDone})
	}
	return res, nil
}

func (r *Result) begin(name string) int {
	if r.Timer == nil {
		return -1
	}
	return r.Timer.Begin(name)
}

func (r *Result) end(idx int, note string) {
	if r.Timer != nil {
		r.Timer.End(idx, note)
	}
}
