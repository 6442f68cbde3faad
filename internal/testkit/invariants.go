// Package testkit holds checks shared by tests of packages that build ASTs.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"c2sema/internal/ast"
	"c2sema/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a loaded file:
// 1) every declaration span points at sf and is not inverted
// 2) with source text present, every span ends inside the text
// 3) the file's FileID matches sf
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	if f.Source != sf.ID {
		return fmt.Errorf("file points to different file id: got=%d want=%d", f.Source, sf.ID)
	}
	limit := ^uint32(0)
	if sf.Flags&source.FileNoContent == 0 {
		n, err := safecast.Conv[uint32](len(sf.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		limit = n
	}

	check := func(what string, sp source.Span) error {
		switch {
		case sp.File != sf.ID:
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		case sp.End < sp.Start:
			return fmt.Errorf("%s span is inverted: %v", what, sp)
		case sp.End > limit:
			return fmt.Errorf("%s span %v ends beyond content (%d bytes)", what, sp, limit)
		}
		return nil
	}

	var decls []ast.Decl
	for _, u := range f.Uses {
		decls = append(decls, u)
	}
	decls = append(decls, f.Types...)
	for _, v := range f.Vars {
		decls = append(decls, v)
	}
	for _, fn := range f.Functions {
		decls = append(decls, fn)
		for _, a := range fn.Args {
			decls = append(decls, a)
		}
	}
	for _, av := range f.ArrayValues {
		decls = append(decls, av)
	}
	for _, d := range decls {
		b := d.Base()
		if err := check(fmt.Sprintf("%s %q", d.Kind(), b.Name), b.Span); err != nil {
			return err
		}
	}
	for _, fn := range f.Functions {
		if fn.Body == nil {
			continue
		}
		if err := check("body of "+fn.Name, fn.Body.Span()); err != nil {
			return err
		}
	}
	return nil
}
