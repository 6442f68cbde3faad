package sema

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/symbols"
	"c2sema/internal/types"
)

// analyseExpr returns the canonical type of e and annotates e with it. A
// null result means an error was reported for e or below it; callers skip
// checks that depend on the type.
func (fa *FunctionAnalyser) analyseExpr(e ast.Expr, sd side) ast.QualType {
	t := fa.exprType(e, sd)
	e.SetType(t)
	return t
}

func (fa *FunctionAnalyser) exprType(e ast.Expr, sd side) ast.QualType {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return fa.types.Builtin(types.LiteralKind(e.Value))
	case *ast.FloatLiteral:
		return fa.types.Builtin(types.KindFloat64)
	case *ast.BoolLiteral:
		return fa.types.Builtin(types.KindBool)
	case *ast.CharLiteral:
		return fa.types.Builtin(types.KindInt8)
	case *ast.StringLiteral:
		return fa.types.Pointer(fa.types.Builtin(types.KindInt8).WithQuals(ast.QualConst))
	case *ast.NilExpr:
		return fa.types.Pointer(fa.types.Builtin(types.KindVoid))
	case *ast.IdentifierExpr:
		return fa.analyseIdentifier(e, sd)
	case *ast.TypeExpr:
		fa.errorf(diag.SemaTypeAsExpression, e.Span(), "type '%s' used as an expression", e.QT)
		return ast.QualType{}
	case *ast.CallExpr:
		return fa.analyseCall(e)
	case *ast.InitListExpr:
		fa.errorf(diag.SemaInvalidInitList, e.Span(), "initializer list is only allowed in an initializer")
		return ast.QualType{}
	case *ast.BinaryOperator:
		return fa.analyseBinary(e)
	case *ast.ConditionalOperator:
		return fa.analyseConditional(e)
	case *ast.UnaryOperator:
		return fa.analyseUnary(e)
	case *ast.BuiltinExpr:
		return fa.analyseBuiltin(e)
	case *ast.ArraySubscriptExpr:
		return fa.analyseSubscript(e)
	case *ast.MemberExpr:
		return fa.analyseMember(e, sd)
	case *ast.ParenExpr:
		return fa.analyseExpr(e.Inner, sd)
	case *ast.CastExpr:
		return fa.analyseCast(e)
	}
	panic(fmt.Sprintf("sema: unexpected expression %T", e))
}

func (fa *FunctionAnalyser) analyseIdentifier(e *ast.IdentifierExpr, sd side) ast.QualType {
	res := fa.scope.FindSymbol(e.Name)
	switch res.Status {
	case symbols.StatusNotFound:
		if fa.global.FindPackage(e.Name) != nil {
			fa.errorf(diag.SemaPackageAsValue, e.Span(), "package '%s' cannot be used as a value", e.Name)
			return ast.QualType{}
		}
		fa.errorf(diag.SemaUndeclaredVarUse, e.Span(), "use of undeclared identifier '%s'", e.Name)
		return ast.QualType{}
	case symbols.StatusAmbiguous:
		fa.reportAmbiguous(e, res.Candidates)
		return ast.QualType{}
	}
	if res.IsExternal() && !res.Decl.Base().Public {
		fa.errorf(diag.SemaSymbolNotPublic, e.Span(), "symbol '%s' is not public", e.Name)
		return ast.QualType{}
	}
	e.Decl = res.Decl
	return fa.declType(e, res.Decl, sd)
}

func (fa *FunctionAnalyser) reportAmbiguous(e ast.Expr, candidates []ast.Decl) {
	b := diag.ReportError(fa.reporter, diag.SemaAmbiguousSymbol, e.Span(), "reference is ambiguous")
	for _, c := range candidates {
		b.WithNote(c.Base().Span, fmt.Sprintf("candidate %s.%s", c.Base().Module, c.Base().Name))
	}
	b.Emit()
	fa.errors++
}

// declType returns the type of a declaration used as a value: it checks
// self-initialization and constant mode and marks the declaration used.
func (fa *FunctionAnalyser) declType(e ast.Expr, d ast.Decl, sd side) ast.QualType {
	if d == fa.initDecl {
		fa.errorf(diag.SemaVarSelfInit, e.Span(),
			"variable '%s' is uninitialized when used within its own initialization", d.Base().Name)
		return ast.QualType{}
	}
	if sd == sideRHS {
		d.Base().Used = true
	}

	switch d := d.(type) {
	case *ast.VarDecl:
		if !d.Type.HasCanonicalType() && d.VarKind == ast.VarGlobal {
			fa.lateErrors(func() int { return fa.late.resolveVar(d) })
		}
		t := d.Type.Canonical()
		if fa.inConstMode() && !isConstantVar(d, t) {
			fa.reportNotConstant(e)
			return ast.QualType{}
		}
		return t
	case *ast.FunctionDecl:
		return d.FunctionType()
	case *ast.EnumConstantDecl:
		if d.Enum == nil {
			panic(fmt.Sprintf("sema: enum constant %s without enum", d.Name))
		}
		return d.Enum.DeclaredType()
	case ast.TypeDecl:
		fa.errorf(diag.SemaTypeAsExpression, e.Span(), "type '%s' used as an expression", d.Base().Name)
		return ast.QualType{}
	}
	panic(fmt.Sprintf("sema: %s '%s' found by name lookup", d.Kind(), d.Base().Name))
}

func isConstantVar(v *ast.VarDecl, t ast.QualType) bool {
	return !t.IsNull() && t.IsConst() && v.Init != nil && !v.Incremental
}

func (fa *FunctionAnalyser) analyseCall(e *ast.CallExpr) ast.QualType {
	if fa.inConstMode() {
		fa.reportNotConstant(e)
		return ast.QualType{}
	}
	ft := fa.analyseExpr(e.Fn, sideRHS)
	if ft.IsNull() {
		for _, arg := range e.Args {
			fa.analyseExpr(arg, sideRHS)
		}
		return ast.QualType{}
	}
	fn := ft.T.FunctionDecl()
	if fn == nil {
		fa.errorf(diag.SemaCallNonFunction, e.Fn.Span(), "called object type '%s' is not a function", ft)
		return ast.QualType{}
	}

	params := fn.Args
	if m, ok := unparen(e.Fn).(*ast.MemberExpr); ok && m.IsStructFunc && !isTypeRef(m.Base) && len(params) > 0 {
		// неявный получатель: первый аргумент: сама структура
		fa.checkReceiver(m, params[0])
		params = params[1:]
	}
	minArgs := 0
	for i, p := range params {
		if p.Init == nil {
			minArgs = i + 1
		}
	}
	if len(e.Args) < minArgs {
		fa.errorf(diag.SemaTooFewArguments, e.Span(),
			"too few arguments to function call, expected %d, have %d", minArgs, len(e.Args))
	}
	if len(e.Args) > len(params) && !fn.Variadic {
		fa.errorf(diag.SemaTooManyArguments, e.Args[len(params)].Span(),
			"too many arguments to function call, expected %d, have %d", len(params), len(e.Args))
	}
	for i, arg := range e.Args {
		at := fa.analyseExpr(arg, sideRHS)
		if at.IsNull() || i >= len(params) {
			continue
		}
		pt := params[i].Type.Canonical()
		if !pt.IsNull() {
			fa.checkCompatible(pt, at, arg.Span(), convInit, arg)
		}
	}
	return fn.ReturnType.Canonical()
}

// checkReceiver matches the base of a struct function call against the
// receiver argument. A struct value is passed by address when the receiver
// is a pointer.
func (fa *FunctionAnalyser) checkReceiver(m *ast.MemberExpr, recv *ast.VarDecl) {
	rt := recv.Type.Canonical()
	bt := m.Base.Type().Canonical()
	if rt.IsNull() || bt.IsNull() {
		return
	}
	if rt.T.IsPointer() && !bt.T.IsPointer() {
		bt = fa.types.Pointer(bt)
	}
	fa.checkCompatible(rt, bt, m.Base.Span(), convInit, m.Base)
}

func (fa *FunctionAnalyser) analyseBinary(e *ast.BinaryOperator) ast.QualType {
	if e.Op.IsAssignment() {
		return fa.analyseAssignment(e)
	}
	lt := fa.analyseExpr(e.LHS, sideRHS)
	rt := fa.analyseExpr(e.RHS, sideRHS)
	if lt.IsNull() || rt.IsNull() {
		return ast.QualType{}
	}
	if e.Op == types.BinaryComma {
		if fa.inConstMode() {
			fa.reportNotConstant(e)
			return ast.QualType{}
		}
		return rt
	}

	lf, rf := familyOf(lt), familyOf(rt)
	for _, spec := range types.BinarySpecs(e.Op) {
		if !spec.Left.Matches(lf) || !spec.Right.Matches(rf) {
			continue
		}
		if spec.Flags&types.BinaryFlagSameFamily != 0 && !samePointee(lt, rt) {
			continue
		}
		switch spec.Result {
		case types.BinaryResultNumeric:
			k := types.Promote(kindOf(lt), kindOf(rt))
			if k == types.KindInvalid {
				continue
			}
			return fa.types.Builtin(k)
		case types.BinaryResultBool:
			return fa.types.Builtin(types.KindBool)
		case types.BinaryResultLeft:
			return fa.decay(lt.WithoutQuals())
		case types.BinaryResultRight:
			return fa.decay(rt.WithoutQuals())
		case types.BinaryResultPointerDiff:
			return fa.types.Builtin(types.KindInt64)
		}
	}
	fa.errorf(diag.SemaInvalidBinaryOperands, e.Span(),
		"invalid operands to binary expression ('%s' %s '%s')", lt, e.Op, rt)
	return ast.QualType{}
}

func (fa *FunctionAnalyser) analyseAssignment(e *ast.BinaryOperator) ast.QualType {
	if fa.inConstMode() {
		fa.reportNotConstant(e)
		return ast.QualType{}
	}
	lhsSide := sideRHS
	if e.Op == types.BinaryAssign {
		lhsSide = sideLHS
	}
	lt := fa.analyseExpr(e.LHS, lhsSide)
	rt := fa.analyseExpr(e.RHS, sideRHS)
	if lt.IsNull() || rt.IsNull() {
		return ast.QualType{}
	}
	if !fa.checkAssignee(e.LHS) {
		return ast.QualType{}
	}
	if e.Op == types.BinaryAssign {
		fa.checkCompatible(lt, rt, e.RHS.Span(), convAssign, e.RHS)
		return lt.WithoutQuals()
	}
	for _, spec := range types.BinarySpecs(e.Op) {
		if spec.Left.Matches(familyOf(lt)) && spec.Right.Matches(familyOf(rt)) {
			return lt.WithoutQuals()
		}
	}
	fa.errorf(diag.SemaInvalidBinaryOperands, e.Span(),
		"invalid operands to binary expression ('%s' %s '%s')", lt, e.Op, rt)
	return ast.QualType{}
}

func (fa *FunctionAnalyser) analyseConditional(e *ast.ConditionalOperator) ast.QualType {
	fa.analyseCondition(e.Cond)
	lt := fa.analyseExpr(e.LHS, sideRHS)
	rt := fa.analyseExpr(e.RHS, sideRHS)
	if lt.IsNull() || rt.IsNull() {
		return ast.QualType{}
	}
	switch {
	case lt.T.IsBuiltin() && rt.T.IsBuiltin() && lt.Builtin().IsScalar() && rt.Builtin().IsScalar():
		return fa.types.Builtin(types.Promote(lt.Builtin(), rt.Builtin()))
	case ast.SameType(lt, rt):
		return lt.WithoutQuals()
	case lt.T.IsPointer() && rt.T.IsPointer():
		if isVoidPointer(rt) {
			return lt.WithoutQuals()
		}
		if isVoidPointer(lt) {
			return rt.WithoutQuals()
		}
	}
	fa.errorf(diag.SemaIncompatibleOperands, e.Span(),
		"incompatible operand types ('%s' and '%s')", lt, rt)
	return ast.QualType{}
}

func (fa *FunctionAnalyser) analyseUnary(e *ast.UnaryOperator) ast.QualType {
	spec, ok := types.UnarySpecFor(e.Op)
	if !ok {
		panic(fmt.Sprintf("sema: unary operator %s has no spec", e.Op))
	}
	if spec.Flags&types.UnaryFlagModifies != 0 && fa.inConstMode() {
		fa.reportNotConstant(e)
		return ast.QualType{}
	}
	if e.Op == types.UnaryAddrOf {
		return fa.analyseAddrOf(e)
	}
	t := fa.analyseExpr(e.Operand, sideRHS)
	if t.IsNull() {
		return t
	}

	switch e.Op {
	case types.UnaryDeref:
		if fa.inConstMode() {
			fa.reportNotConstant(e)
			return ast.QualType{}
		}
		if !t.T.IsPointer() || t.T.Elem.Canonical().T.IsVoid() {
			fa.errorf(diag.SemaDerefNonPointer, e.Span(), "indirection requires pointer operand ('%s' invalid)", t)
			return ast.QualType{}
		}
		return t.T.Elem.Canonical()
	}

	if !spec.Operand.Matches(familyOf(t)) {
		fa.errorf(diag.SemaInvalidUnaryOperand, e.Span(),
			"invalid argument type '%s' to unary expression '%s'", t, e.Op)
		return ast.QualType{}
	}
	if spec.Flags&types.UnaryFlagModifies != 0 && !fa.checkAssignee(e.Operand) {
		return ast.QualType{}
	}
	switch spec.Result {
	case types.UnaryResultBool:
		return fa.types.Builtin(types.KindBool)
	case types.UnaryResultNumeric:
		return fa.types.Builtin(types.IntegerPromote(kindOf(t)))
	default:
		return t.WithoutQuals()
	}
}

// analyseAddrOf allows the address of a global in constant mode: it is known
// at link time.
func (fa *FunctionAnalyser) analyseAddrOf(e *ast.UnaryOperator) ast.QualType {
	constMode := fa.inConstMode()
	prev := fa.modes
	fa.modes = nil
	t := fa.analyseExpr(e.Operand, sideRHS)
	fa.modes = prev
	if t.IsNull() {
		return t
	}
	if !isAddressable(e.Operand) {
		fa.errorf(diag.SemaAddrOfRValue, e.Operand.Span(), "cannot take the address of an rvalue of type '%s'", t)
		return ast.QualType{}
	}
	if constMode && !isGlobalRef(e.Operand) {
		fa.reportNotConstant(e)
		return ast.QualType{}
	}
	return fa.types.Pointer(t)
}

func isGlobalRef(e ast.Expr) bool {
	var d ast.Decl
	switch e := unparen(e).(type) {
	case *ast.IdentifierExpr:
		d = e.Decl
	case *ast.MemberExpr:
		if !e.IsPackage {
			return false
		}
		d = e.Decl
	default:
		return false
	}
	switch d := d.(type) {
	case *ast.VarDecl:
		return d.VarKind == ast.VarGlobal
	case *ast.FunctionDecl:
		return true
	}
	return false
}

func (fa *FunctionAnalyser) analyseBuiltin(e *ast.BuiltinExpr) ast.QualType {
	result := fa.types.Builtin(types.KindUInt32)
	switch e.Builtin {
	case ast.BuiltinSizeof:
		if fa.typeArgument(e.Arg).IsNull() {
			return ast.QualType{}
		}
		return result
	case ast.BuiltinElemsof:
		t := fa.analyseExpr(e.Arg, sideRHS)
		if t.IsNull() {
			return t
		}
		if !t.T.IsArray() {
			fa.errorf(diag.SemaElemsofNonArray, e.Arg.Span(), "elemsof requires an array, not '%s'", t)
			return ast.QualType{}
		}
		return result
	}
	panic(fmt.Sprintf("sema: unexpected builtin %s", e.Builtin))
}

// typeArgument handles the operand of sizeof: a type, a name of a type or an
// expression.
func (fa *FunctionAnalyser) typeArgument(arg ast.Expr) ast.QualType {
	switch a := arg.(type) {
	case *ast.TypeExpr:
		t := fa.resolveType(fa.initDecl, a.QT)
		a.SetType(t)
		return t
	case *ast.IdentifierExpr:
		if fa.scope.FindLocal(a.Name) == nil {
			if res := fa.global.FindSymbol(a.Name); res.Ok() {
				if td, ok := res.Decl.(ast.TypeDecl); ok {
					td.Base().Used = true
					a.Decl = td
					t := td.DeclaredType().Canonical()
					a.SetType(t)
					return t
				}
			}
		}
	}
	// значение внутри sizeof не вычисляется, константность не нужна
	prev := fa.modes
	fa.modes = nil
	t := fa.analyseExpr(arg, sideRHS)
	fa.modes = prev
	return t
}

func (fa *FunctionAnalyser) analyseSubscript(e *ast.ArraySubscriptExpr) ast.QualType {
	if fa.inConstMode() {
		fa.reportNotConstant(e)
		return ast.QualType{}
	}
	bt := fa.analyseExpr(e.Base, sideRHS)
	it := fa.analyseExpr(e.Index, sideRHS)
	if bt.IsNull() || it.IsNull() {
		return ast.QualType{}
	}
	if !isIntegerLike(it) {
		fa.errorf(diag.SemaSubscriptNotInteger, e.Index.Span(), "array subscript is not an integer ('%s')", it)
		return ast.QualType{}
	}
	if !bt.T.IsArray() && !bt.T.IsPointer() {
		fa.errorf(diag.SemaSubscriptNonArray, e.Base.Span(), "subscripted value is not an array or pointer ('%s')", bt)
		return ast.QualType{}
	}
	elem := bt.T.Elem.Canonical()
	if bt.IsConst() {
		elem = elem.WithQuals(ast.QualConst)
	}
	return elem
}

func (fa *FunctionAnalyser) analyseMember(e *ast.MemberExpr, sd side) ast.QualType {
	if id, ok := e.Base.(*ast.IdentifierExpr); ok && fa.scope.FindLocal(id.Name) == nil {
		res := fa.global.FindSymbol(id.Name)
		if res.Status == symbols.StatusNotFound {
			if pkg := fa.global.FindPackage(id.Name); pkg != nil {
				return fa.analysePackageMember(e, id, pkg, sd)
			}
		}
		if s, ok := res.Decl.(*ast.StructTypeDecl); ok && res.Ok() {
			return fa.analyseStaticStructFunc(e, id, s)
		}
	}

	bt := fa.analyseExpr(e.Base, sideRHS)
	if bt.IsNull() {
		return bt
	}
	st := bt
	if st.T.IsPointer() {
		st = st.T.Elem.Canonical()
	}
	s := st.T.StructDecl()
	if s == nil {
		fa.errorf(diag.SemaMemberOnNonStruct, e.Span(),
			"member reference base type '%s' is not a struct or union", bt)
		return ast.QualType{}
	}

	if m := s.FindMember(e.Member); m != nil {
		e.Decl = m
		if sd == sideRHS {
			m.Base().Used = true
		}
		if fa.inConstMode() {
			fa.reportNotConstant(e)
			return ast.QualType{}
		}
		var t ast.QualType
		switch m := m.(type) {
		case *ast.VarDecl:
			t = m.Type.Canonical()
		case *ast.StructTypeDecl:
			t = m.DeclaredType()
		}
		if t.IsNull() {
			return t
		}
		if st.IsConst() {
			t = t.WithQuals(ast.QualConst)
		}
		return t
	}
	if fn := s.FindStructFunc(e.Member); fn != nil {
		e.Decl = fn
		e.IsStructFunc = true
		fn.Used = true
		return fn.FunctionType()
	}
	fa.errorf(diag.SemaNoMember, e.Span(), "no member named '%s' in '%s'", e.Member, s.Name)
	return ast.QualType{}
}

func (fa *FunctionAnalyser) analysePackageMember(e *ast.MemberExpr, id *ast.IdentifierExpr, pkg *ast.Module, sd side) ast.QualType {
	id.Package = pkg
	id.SetType(fa.types.Package(pkg))
	e.IsPackage = true

	res := fa.global.FindSymbolInPackage(id.Name, e.Member)
	if !res.Ok() {
		fa.errorf(diag.SemaUndeclaredVarUse, e.Span(), "use of undeclared identifier '%s.%s'", id.Name, e.Member)
		return ast.QualType{}
	}
	if res.IsExternal() && !res.Decl.Base().Public {
		fa.errorf(diag.SemaSymbolNotPublic, e.Span(), "symbol '%s.%s' is not public", id.Name, e.Member)
		return ast.QualType{}
	}
	e.Decl = res.Decl
	return fa.declType(e, res.Decl, sd)
}

// analyseStaticStructFunc handles "Struct.func" used without a receiver.
func (fa *FunctionAnalyser) analyseStaticStructFunc(e *ast.MemberExpr, id *ast.IdentifierExpr, s *ast.StructTypeDecl) ast.QualType {
	s.Used = true
	id.Decl = s
	id.SetType(s.DeclaredType())
	fn := s.FindStructFunc(e.Member)
	if fn == nil {
		fa.errorf(diag.SemaNoMember, e.Span(), "no struct function named '%s' in '%s'", e.Member, s.Name)
		return ast.QualType{}
	}
	e.Decl = fn
	e.IsStructFunc = true
	fn.Used = true
	return fn.FunctionType()
}

func (fa *FunctionAnalyser) analyseCast(e *ast.CastExpr) ast.QualType {
	dest := fa.resolveType(fa.initDecl, e.DestType)
	it := fa.analyseExpr(e.Inner, sideRHS)
	if dest.IsNull() || it.IsNull() {
		return ast.QualType{}
	}
	if !fa.checkCompatible(dest, it, e.Span(), convConv, e.Inner) {
		return ast.QualType{}
	}
	return dest
}

// decay turns arrays into pointers to their element in value position.
func (fa *FunctionAnalyser) decay(q ast.QualType) ast.QualType {
	if q.T != nil && q.T.IsArray() {
		return fa.types.Pointer(q.T.Elem.Canonical())
	}
	return q
}

func familyOf(q ast.QualType) types.FamilyMask {
	switch {
	case q.T == nil:
		return types.FamilyNone
	case q.T.IsBuiltin():
		return q.Builtin().Family()
	case q.T.IsPointer():
		return types.FamilyPointer
	case q.T.IsArray():
		return types.FamilyPointer | types.FamilyArray
	case q.T.IsEnum():
		return types.FamilyEnum
	}
	return types.FamilyNone
}

func samePointee(a, b ast.QualType) bool {
	pa, pb := pointee(a), pointee(b)
	if pa.IsNull() || pb.IsNull() {
		return false
	}
	return pa.T.IsVoid() || pb.T.IsVoid() || ast.SameType(pa.WithoutQuals(), pb.WithoutQuals())
}

func pointee(q ast.QualType) ast.QualType {
	if q.T == nil || (!q.T.IsPointer() && !q.T.IsArray()) {
		return ast.QualType{}
	}
	return q.T.Elem.Canonical()
}

func isVoidPointer(q ast.QualType) bool {
	p := pointee(q)
	return q.T.IsPointer() && !p.IsNull() && p.T.IsVoid()
}

func isAddressable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return isAddressable(e.Inner)
	case *ast.IdentifierExpr:
		switch e.Decl.(type) {
		case *ast.VarDecl, *ast.FunctionDecl:
			return true
		}
	case *ast.MemberExpr:
		switch e.Decl.(type) {
		case *ast.VarDecl, *ast.StructTypeDecl, *ast.FunctionDecl:
			return true
		}
	case *ast.ArraySubscriptExpr:
		return true
	case *ast.UnaryOperator:
		return e.Op == types.UnaryDeref
	}
	return false
}

func isTypeRef(e ast.Expr) bool {
	id, ok := unparen(e).(*ast.IdentifierExpr)
	if !ok {
		return false
	}
	_, isType := id.Decl.(ast.TypeDecl)
	return isType
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}
