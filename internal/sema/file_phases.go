package sema

import (
	"fmt"

	"fortio.org/safecast"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/symbols"
	"c2sema/internal/types"
)

// ResolveEnumConstants assigns values to the constants of the file's enums.
func (fa *FileAnalyser) ResolveEnumConstants() int {
	errors := 0
	for _, d := range fa.file.Types {
		if ed, ok := d.(*ast.EnumTypeDecl); ok {
			errors += fa.resolveEnum(ed)
		}
	}
	return errors
}

// resolveEnum assigns values in declaration order: an explicit value resets
// the counter, every constant takes the counter and increments it.
// Повторяющиеся значения не диагностируются.
func (fa *FileAnalyser) resolveEnum(ed *ast.EnumTypeDecl) int {
	if !fa.file.Declares(ed) || fa.enums[ed] != notStarted {
		return 0
	}
	impl := ed.ImplType.Canonical()
	if impl.IsNull() || !impl.Builtin().IsInteger() {
		// уже сообщено при разрешении канонических типов
		return 0
	}
	fa.enums[ed] = inProgress
	defer func() { fa.enums[ed] = finished }()

	kind := impl.Builtin()
	errors := 0
	var next int64
	wrapped := false // предыдущая константа была MaxInt64
	for _, c := range ed.Constants {
		c.Enum = ed
		if c.Init != nil {
			v, ok, n := fa.fn.evalConstant(c.Init, diag.SemaEnumValueNotConstant)
			errors += n
			if ok {
				next, wrapped = v, false
			}
		}
		switch {
		case wrapped:
			errors += fa.errorf(diag.SemaEnumValueOverflow, c.Span,
				"value of '%s' overflows 64 bits", c.Name)
		case !types.FitsInt(kind, next):
			errors += fa.errorf(diag.SemaEnumValueOverflow, c.Span,
				"value %d of '%s' does not fit in '%s'", next, c.Name, kind)
		}
		c.Value = next
		c.Assigned = true
		inc, ok := addInt(next, 1)
		next, wrapped = inc, !ok
	}
	return errors
}

// CheckArrayValues validates the file's incremental array contributions and
// records the valid ones in table.
func (fa *FileAnalyser) CheckArrayValues(table *IncrementalArrayValues) int {
	errors := 0
	for _, av := range fa.file.ArrayValues {
		v, n := fa.arrayValueTarget(av)
		errors += n
		if v == nil {
			continue
		}
		fa.arrayTargets[av] = v
		table.Add(v, av.Value)
	}
	return errors
}

func (fa *FileAnalyser) arrayValueTarget(av *ast.ArrayValueDecl) (*ast.VarDecl, int) {
	res := fa.scope.FindSymbol(av.Name)
	switch res.Status {
	case symbols.StatusNotFound:
		return nil, fa.errorf(diag.SemaUndeclaredVarUse, av.Span, "use of undeclared identifier '%s'", av.Name)
	case symbols.StatusAmbiguous:
		return nil, fa.reportAmbiguous(av.Span, av.Name, res.Candidates)
	}
	if res.IsExternal() {
		return nil, fa.errorf(diag.SemaArrayValueExternal, av.Span,
			"incremental array value for '%s' cannot be for an external symbol", av.Name)
	}
	v, ok := res.Decl.(*ast.VarDecl)
	if !ok {
		return nil, fa.errorf(diag.SemaArrayValueNotVar, av.Span,
			"'%s' is not a variable", av.Name)
	}
	if !v.Incremental {
		diag.ReportError(fa.reporter, diag.SemaArrayValueNotIncr, av.Span,
			fmt.Sprintf("'%s' is not an incremental array", av.Name)).
			WithNote(v.Span, "declared here").
			Emit()
		return nil, 1
	}
	if v.Init == nil {
		// тип переменной не разрешился, ошибка уже есть
		return nil, 0
	}
	return v, 0
}

func (fa *FileAnalyser) reportAmbiguous(span source.Span, name string, candidates []ast.Decl) int {
	b := diag.ReportError(fa.reporter, diag.SemaAmbiguousSymbol, span,
		fmt.Sprintf("symbol '%s' is ambiguous", name))
	for _, c := range candidates {
		b.WithNote(c.Base().Span, fmt.Sprintf("candidate %s.%s", c.Base().Module, c.Base().Name))
	}
	b.Emit()
	return 1
}

// CheckFunctionProtos resolves the signature of every function and records
// struct functions in table.
func (fa *FileAnalyser) CheckFunctionProtos(table *StructFunctions) int {
	errors := 0
	entry := fa.opts.entryPoint()
	for _, fn := range fa.file.Functions {
		errors += fa.resolveFunctionDecl(fn, fn.Public)
		switch {
		case fn.IsStructFunc():
			errors += fa.checkStructFunc(fn, table)
		case fn.Name == entry && !fn.Public && !fa.module.IsExternal:
			errors += fa.errorf(diag.SemaEntryPointPrivate, fn.Span, "'%s' must be public", entry)
		}
	}
	return errors
}

func (fa *FileAnalyser) checkStructFunc(fn *ast.FunctionDecl, table *StructFunctions) int {
	res := fa.scope.FindSymbol(fn.StructName)
	switch res.Status {
	case symbols.StatusNotFound:
		return fa.errorf(diag.SemaStructFuncUnknown, fn.Span,
			"unknown type '%s' in struct function '%s'", fn.StructName, fn.Name)
	case symbols.StatusAmbiguous:
		return fa.reportAmbiguous(fn.Span, fn.StructName, res.Candidates)
	}
	s, ok := res.Decl.(*ast.StructTypeDecl)
	if !ok {
		return fa.errorf(diag.SemaStructFuncNotStruct, fn.Span,
			"'%s' is not a struct type", fn.StructName)
	}
	if res.IsExternal() {
		return fa.errorf(diag.SemaStructFuncExternal, fn.Span,
			"struct function '%s' must be declared in module '%s'", fn.Name, s.Module)
	}
	if m := s.FindMember(fn.MemberName); m != nil {
		diag.ReportError(fa.reporter, diag.SemaStructFuncDuplicate, fn.Span,
			fmt.Sprintf("struct function '%s' conflicts with member '%s'", fn.Name, fn.MemberName)).
			WithNote(m.Base().Span, "member declared here").
			Emit()
		return 1
	}
	if prev := table.Find(s, fn.MemberName); prev != nil {
		diag.ReportError(fa.reporter, diag.SemaStructFuncDuplicate, fn.Span,
			fmt.Sprintf("redefinition of struct function '%s'", fn.Name)).
			WithNote(prev.Span, "previous definition is here").
			Emit()
		return 1
	}
	table.Add(s, fn)
	return 0
}

// CheckVarInits checks the initializers of the file's globals, which must be
// compile-time constants, and the values it contributes to incremental
// arrays.
func (fa *FileAnalyser) CheckVarInits() int {
	errors := 0
	for _, v := range fa.file.Vars {
		errors += fa.checkVarInit(v)
	}
	for _, av := range fa.file.ArrayValues {
		v := fa.arrayTargets[av]
		if v == nil {
			continue
		}
		elem := v.Type.Canonical().T.Elem.Canonical()
		errors += fa.fn.checkInit(v, av.Value, elem, diag.SemaInitNotConstant)
	}
	return errors
}

// checkVarInit implements lateResolver. It checks the initializer of one of
// the file's globals once.
func (fa *FileAnalyser) checkVarInit(v *ast.VarDecl) int {
	if !fa.file.Declares(v) || fa.inits[v] != notStarted {
		return 0
	}
	fa.inits[v] = inProgress
	defer func() { fa.inits[v] = finished }()

	c := v.Type.Canonical()
	if c.IsNull() {
		return 0
	}
	if v.Init == nil {
		if c.IsConst() {
			return fa.errorf(diag.SemaUninitializedConst, v.Span,
				"default initialization of an object of const type '%s'", c)
		}
		return 0
	}
	if v.Incremental {
		if list, ok := v.Init.(*ast.InitListExpr); ok {
			n, err := safecast.Conv[uint64](len(list.Values()))
			if err != nil {
				panic(fmt.Errorf("incremental array length overflow: %w", err))
			}
			list.SetType(c)
			c.T.Array.Length = n
			c.T.Array.Evaluated = true
		}
		return 0
	}
	return fa.fn.checkInit(v, v.Init, c, diag.SemaInitNotConstant)
}

// CheckFunctionBodies runs the function analyser over every body of the file.
func (fa *FileAnalyser) CheckFunctionBodies() int {
	errors := 0
	for _, fn := range fa.file.Functions {
		if fn.Body == nil {
			continue
		}
		errors += fa.fn.Check(fn)
	}
	return errors
}
