package sema

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
)

// CheckDeclsForUsed warns about globals, functions, types and struct members
// that nothing uses. Interface files only declare, they are skipped.
func (fa *FileAnalyser) CheckDeclsForUsed() {
	if fa.file.IsInterface {
		return
	}
	for _, v := range fa.file.Vars {
		if !v.Used {
			fa.warnf(diag.SemaUnusedVariable, v.Span, "unused variable '%s'", v.Name)
		}
	}
	entry := fa.opts.entryPoint()
	for _, fn := range fa.file.Functions {
		if fn.Name == entry && !fn.IsStructFunc() {
			continue
		}
		if !fn.Used {
			fa.warnf(diag.SemaUnusedFunction, fn.Span, "unused function '%s'", fn.Name)
		}
	}
	for _, d := range fa.file.Types {
		base := d.Base()
		if !base.Used {
			fa.warnf(diag.SemaUnusedType, base.Span, "unused type '%s'", base.Name)
			continue
		}
		if s, ok := d.(*ast.StructTypeDecl); ok {
			fa.checkMembersUsed(s)
		}
	}
}

// checkMembersUsed audits every member on its own, even when the struct
// itself is used.
func (fa *FileAnalyser) checkMembersUsed(s *ast.StructTypeDecl) {
	for _, m := range s.Members {
		switch m := m.(type) {
		case *ast.VarDecl:
			if !m.Used {
				fa.warnf(diag.SemaUnusedStructMember, m.Span, "unused struct member '%s'", m.Name)
			}
		case *ast.StructTypeDecl:
			if m.Name != "" && !m.Used {
				fa.warnf(diag.SemaUnusedStructMember, m.Span, "unused struct member '%s'", m.Name)
				continue
			}
			fa.checkMembersUsed(m)
		}
	}
}

func (fa *FileAnalyser) warnf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(fa.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}
