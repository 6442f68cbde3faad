package sema

import (
	"context"
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diagfmt"
	"c2sema/internal/trace"
)

// ModuleAnalyser runs the analysis phases over all files of one module. Each
// phase is a barrier: it finishes for every file before the next one starts.
type ModuleAnalyser struct {
	module    *ast.Module
	diags     Diagnostics
	opts      Options
	analysers []*FileAnalyser
	byFile    map[*ast.File]*FileAnalyser

	arrayValues *IncrementalArrayValues
	structFuncs *StructFunctions
}

// NewModuleAnalyser prepares one FileAnalyser per file of mod. all lists every
// module visible to use declarations.
func NewModuleAnalyser(mod *ast.Module, all []*ast.Module, diags Diagnostics, opts Options) *ModuleAnalyser {
	if opts.Types == nil {
		opts.Types = ast.NewTypeContext()
	}
	ma := &ModuleAnalyser{
		module:      mod,
		diags:       diags,
		opts:        opts,
		byFile:      make(map[*ast.File]*FileAnalyser, len(mod.Files)),
		arrayValues: NewIncrementalArrayValues(),
		structFuncs: NewStructFunctions(),
	}
	for _, f := range mod.Files {
		fa := newFileAnalyser(f, mod, all, diags, &ma.opts, ma)
		ma.analysers = append(ma.analysers, fa)
		ma.byFile[f] = fa
	}
	return ma
}

// Module returns the analysed module.
func (ma *ModuleAnalyser) Module() *ast.Module {
	return ma.module
}

// Analyse runs phases 1-10 and returns the error count of the phase that
// stopped the analysis, 1 for a sticky gate, or 0 on success.
func (ma *ModuleAnalyser) Analyse(ctx context.Context) int {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeModule, "module", trace.Parent(ctx), ma.subject(""))
	errors := ma.analyse(tracer, span.ID())
	span.WithErrors(errors).End("")
	return errors
}

func (ma *ModuleAnalyser) analyse(tracer trace.Tracer, parent uint64) int {
	run := func(name string, step func(*FileAnalyser) int) int {
		return ma.phase(tracer, parent, name, step)
	}

	// 1: собственные типы объявлений; use-декларации файла идут первыми
	run("resolve-types", func(fa *FileAnalyser) int {
		return fa.CheckUses() + fa.ResolveTypes()
	})
	if ma.diags.HasErrorOccurred() {
		return 1
	}

	// 2
	if errors := run("resolve-type-canonicals", (*FileAnalyser).ResolveTypeCanonicals); errors != 0 {
		return errors
	}

	// 3
	errors := run("resolve-struct-members", (*FileAnalyser).ResolveStructMembers)
	if ma.opts.PrintAfterTypes {
		ma.printASTs("after struct members")
	}
	if errors != 0 {
		return errors
	}

	// 4
	if errors := run("resolve-vars", (*FileAnalyser).ResolveVars); errors != 0 {
		return errors
	}

	// 5
	if errors := run("resolve-enum-constants", (*FileAnalyser).ResolveEnumConstants); errors != 0 {
		return errors
	}

	// 6
	errors = run("check-array-values", func(fa *FileAnalyser) int {
		return fa.CheckArrayValues(ma.arrayValues)
	})
	if errors != 0 {
		ma.arrayValues.Clear()
		return errors
	}

	// 7
	trace.Point(tracer, trace.ScopePhase, "merge-array-values", parent, ma.subject(""),
		fmt.Sprintf("%d arrays", ma.arrayValues.Len()))
	ma.arrayValues.Merge()

	// 8
	errors = run("check-function-protos", func(fa *FileAnalyser) int {
		return fa.CheckFunctionProtos(ma.structFuncs)
	})
	if errors != 0 {
		return errors
	}
	trace.Point(tracer, trace.ScopePhase, "merge-struct-functions", parent, ma.subject(""),
		fmt.Sprintf("%d structs", ma.structFuncs.Len()))
	ma.structFuncs.Merge()

	// 9
	run("check-var-inits", (*FileAnalyser).CheckVarInits)
	if ma.opts.PrintAfterInits {
		ma.printASTs("after variable initializers")
	}
	if ma.diags.HasErrorOccurred() {
		return 1
	}

	// 10
	run("check-function-bodies", (*FileAnalyser).CheckFunctionBodies)
	if ma.diags.HasErrorOccurred() {
		return 1
	}
	if ma.opts.PrintAfterBodies {
		ma.printASTs("after function bodies")
	}
	return 0
}

func (ma *ModuleAnalyser) phase(tracer trace.Tracer, parent uint64, name string, step func(*FileAnalyser) int) int {
	span := trace.Begin(tracer, trace.ScopePhase, name, parent, ma.subject(""))
	idx := -1
	if ma.opts.Timer != nil {
		idx = ma.opts.Timer.Begin(ma.module.Name + "/" + name)
	}

	errors := 0
	for _, fa := range ma.analysers {
		subj := ma.subject(name)
		subj.File = fa.file.Path
		fileSpan := trace.Begin(tracer, trace.ScopeFile, "file", span.ID(), subj)
		n := step(fa)
		fileSpan.WithErrors(n).End("")
		errors += n
	}

	if ma.opts.Timer != nil {
		ma.opts.Timer.End(idx, fmt.Sprintf("%d errors", errors))
	}
	span.WithErrors(errors).End("")
	return errors
}

func (ma *ModuleAnalyser) subject(phase string) trace.Subject {
	return trace.Subject{Module: ma.module.Name, Phase: phase}
}

// CheckUnused reports unused declarations of every file. It only emits
// warnings and never affects the result of Analyse.
func (ma *ModuleAnalyser) CheckUnused(ctx context.Context) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "check-unused", trace.Parent(ctx), ma.subject(""))
	for _, fa := range ma.analysers {
		fa.CheckDeclsForUsed()
	}
	span.End("")
}

func (ma *ModuleAnalyser) printASTs(title string) {
	if ma.opts.Output == nil {
		return
	}
	for _, f := range ma.module.Files {
		if f.IsInterface && !ma.opts.PrintLib {
			continue
		}
		fmt.Fprintf(ma.opts.Output, "// %s: %s (%s)\n", ma.module.Name, f.Path, title)
		if err := diagfmt.DumpFile(ma.opts.Output, f, ma.opts.Files); err != nil {
			fmt.Fprintf(ma.opts.Output, "// dump failed: %v\n", err)
		}
	}
}

// owner returns the analyser of the file declaring d inside this module.
func (ma *ModuleAnalyser) owner(d ast.Decl) *FileAnalyser {
	f := ma.module.FileOf(d)
	if f == nil {
		return nil
	}
	return ma.byFile[f]
}

func (ma *ModuleAnalyser) resolveVar(v *ast.VarDecl) int {
	if fa := ma.owner(v); fa != nil {
		return fa.resolveVar(v)
	}
	return 0
}

func (ma *ModuleAnalyser) checkVarInit(v *ast.VarDecl) int {
	if fa := ma.owner(v); fa != nil {
		return fa.checkVarInit(v)
	}
	return 0
}

func (ma *ModuleAnalyser) resolveEnum(ed *ast.EnumTypeDecl) int {
	if fa := ma.owner(ed); fa != nil {
		return fa.resolveEnum(ed)
	}
	return 0
}
