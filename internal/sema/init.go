package sema

import (
	"fmt"

	"fortio.org/safecast"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/types"
)

// checkInit analyses init as the constant initializer of decl and returns
// the number of errors it found.
func (fa *FunctionAnalyser) checkInit(decl ast.Decl, init ast.Expr, expected ast.QualType, mode diag.Code) int {
	before := fa.errors
	prev := fa.initDecl
	fa.initDecl = decl
	fa.pushMode(mode)
	fa.analyseInitExpr(init, expected)
	fa.popMode()
	fa.initDecl = prev
	return fa.errors - before
}

// analyseInitExpr checks e as the initial value of an object of type
// expected. Initializer lists are only valid here.
func (fa *FunctionAnalyser) analyseInitExpr(e ast.Expr, expected ast.QualType) {
	if expected.IsNull() {
		fa.analyseExpr(e, sideRHS)
		return
	}
	if list, ok := e.(*ast.InitListExpr); ok {
		fa.analyseInitList(list, expected)
		return
	}
	if str, ok := e.(*ast.StringLiteral); ok && isCharArray(expected) {
		fa.initCharArray(str, expected)
		return
	}
	t := fa.analyseExpr(e, sideRHS)
	if t.IsNull() {
		return
	}
	if expected.T.IsArray() {
		fa.errorf(diag.SemaIncompatibleTypes, e.Span(),
			"array '%s' must be initialized with an initializer list", expected)
		return
	}
	fa.checkCompatible(expected, t, e.Span(), convInit, e)
}

func (fa *FunctionAnalyser) analyseInitList(list *ast.InitListExpr, expected ast.QualType) {
	list.SetType(expected)
	values := list.Values()
	switch {
	case expected.T.IsArray():
		elem := expected.T.Elem.Canonical()
		for _, v := range values {
			fa.analyseInitExpr(v, elem)
		}
		info := expected.T.Array
		if info.Incremental {
			return
		}
		if info.Evaluated && uint64(len(values)) > info.Length {
			fa.errorf(diag.SemaExcessElements, values[info.Length].Span(),
				"excess elements in array initializer (array has %d)", info.Length)
			return
		}
		if info.Size == nil && !info.Evaluated {
			fa.setArrayLength(info, len(values))
		}
	case expected.T.IsStruct():
		fa.analyseStructInit(list, expected.T.StructDecl())
	default:
		if len(values) != 1 {
			fa.errorf(diag.SemaInvalidInitList, list.Span(),
				"initializer list for scalar type '%s' must have exactly one element", expected)
			for _, v := range values {
				fa.analyseExpr(v, sideRHS)
			}
			return
		}
		fa.analyseInitExpr(values[0], expected)
	}
}

// analyseStructInit matches values to members in declaration order. A union
// takes a single value for its first member.
func (fa *FunctionAnalyser) analyseStructInit(list *ast.InitListExpr, s *ast.StructTypeDecl) {
	values := list.Values()
	limit := len(s.Members)
	if !s.IsStruct {
		limit = min(limit, 1)
	}
	for i, v := range values {
		if i >= limit {
			kind := "struct"
			if !s.IsStruct {
				kind = "union"
			}
			fa.errorf(diag.SemaExcessElements, v.Span(), "excess elements in %s initializer", kind)
			return
		}
		var mt ast.QualType
		switch m := s.Members[i].(type) {
		case *ast.VarDecl:
			mt = m.Type.Canonical()
		case *ast.StructTypeDecl:
			mt = m.DeclaredType()
		default:
			panic(fmt.Sprintf("sema: %s as a struct member", m.Kind()))
		}
		fa.analyseInitExpr(v, mt)
	}
}

func (fa *FunctionAnalyser) initCharArray(str *ast.StringLiteral, expected ast.QualType) {
	str.SetType(expected)
	n := len(str.Value) + 1
	info := expected.T.Array
	switch {
	case info.Evaluated && uint64(n-1) > info.Length:
		fa.errorf(diag.SemaExcessElements, str.Span(),
			"initializer string for char array is too long (%d > %d)", n-1, info.Length)
	case info.Size == nil && !info.Evaluated && !info.Incremental:
		fa.setArrayLength(info, n)
	}
}

func isCharArray(q ast.QualType) bool {
	if !q.T.IsArray() {
		return false
	}
	k := q.T.Elem.Canonical().Builtin()
	return k == types.KindInt8 || k == types.KindUInt8
}

// ownArrayType gives v its own copy of an unsized array type it names
// through an alias. The length of such an array comes from the initializer
// of each variable, so it cannot live in the alias's ArrayInfo.
func (fa *FunctionAnalyser) ownArrayType(v *ast.VarDecl) ast.QualType {
	c := v.Type.Canonical()
	if c.IsNull() || !c.T.IsArray() || c.T.Array.Size != nil || v.Type.T.Class == ast.ClassArray {
		return c
	}
	info := &ast.ArrayInfo{Incremental: c.T.Array.Incremental}
	v.Type = fa.types.ArrayWithInfo(c.T.Elem, info).WithQuals(c.Quals)
	return v.Type.Canonical()
}

func (fa *FunctionAnalyser) setArrayLength(info *ast.ArrayInfo, n int) {
	length, err := safecast.Conv[uint64](n)
	if err != nil {
		panic(fmt.Errorf("sema: array length: %w", err))
	}
	info.Length = length
	info.Evaluated = true
}

// checkArraySizes evaluates every array size reachable from qt through
// pointers and arrays. Each size is evaluated (or rejected) once, the result
// is kept in the shared ArrayInfo.
func (fa *FunctionAnalyser) checkArraySizes(qt ast.QualType) int {
	before := fa.errors
	for q := qt.Canonical(); !q.IsNull(); q = q.T.Elem.Canonical() {
		switch {
		case q.T.IsPointer():
			continue
		case !q.T.IsArray():
			return fa.errors - before
		}
		info := q.T.Array
		if info.Size == nil || info.Evaluated || info.Failed {
			continue
		}
		v, ok, _ := fa.evalConstant(info.Size, diag.SemaArraySizeNotConstant)
		if !ok {
			info.Failed = true
			continue
		}
		if v <= 0 {
			fa.errorf(diag.SemaInvalidArraySize, info.Size.Span(), "array size must be greater than zero, not %d", v)
			info.Failed = true
			continue
		}
		length, err := safecast.Conv[uint64](v)
		if err != nil {
			panic(fmt.Errorf("sema: array size: %w", err))
		}
		info.Length = length
		info.Evaluated = true
	}
	return fa.errors - before
}
