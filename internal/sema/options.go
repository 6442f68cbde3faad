package sema

import (
	"io"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/observ"
	"c2sema/internal/source"
)

// DefaultEntryPoint is the function exempt from the unused audit and required
// to be public.
const DefaultEntryPoint = "main"

// Diagnostics is the sink the analysers report into. Besides accepting
// reports it exposes the sticky "an error occurred" flag consulted at the
// gates of phases 1, 9 and 10.
type Diagnostics interface {
	diag.Reporter
	HasErrorOccurred() bool
}

// Options configure a module analysis.
type Options struct {
	// Types is shared by the loader and the analyser. Nil creates a private one.
	Types *ast.TypeContext

	// EntryPoint overrides DefaultEntryPoint.
	EntryPoint string

	// Observation hooks: dump the annotated AST after struct members (1),
	// variable initializers (2) and function bodies (3).
	PrintAfterTypes  bool
	PrintAfterInits  bool
	PrintAfterBodies bool
	// PrintLib includes interface files in the dumps.
	PrintLib bool
	Output   io.Writer
	// Files resolves spans in dumps; optional.
	Files *source.FileSet

	// WarnUnusedLocals reports locals that were never read when their scope closes.
	WarnUnusedLocals bool

	// Timer receives one entry per phase; optional.
	Timer *observ.Timer
}

func (o *Options) entryPoint() string {
	if o.EntryPoint == "" {
		return DefaultEntryPoint
	}
	return o.EntryPoint
}
