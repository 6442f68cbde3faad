package sema

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/types"
)

// convKind selects the rules of checkCompatible: initialization and
// assignment allow only implicit conversions, a cast allows explicit ones.
type convKind uint8

const (
	convInit convKind = iota
	convAssign
	convConv
)

// checkCompatible reports whether a value of type right may be stored in (or
// cast to) left. e is the value expression, used to accept constants that fit.
func (fa *FunctionAnalyser) checkCompatible(left, right ast.QualType, span source.Span, conv convKind, e ast.Expr) bool {
	if left.IsNull() || right.IsNull() {
		return true
	}
	lt, rt := left.T, right.T
	switch {
	case lt.IsBuiltin():
		switch {
		case rt.IsBuiltin():
			return fa.checkBuiltin(left, right, span, conv, e)
		case rt.IsEnum():
			impl := kindOf(right)
			if conv == convConv || types.CanWiden(impl, left.Builtin()) {
				return true
			}
		case rt.IsPointer(), rt.IsFunction():
			if conv == convConv && left.Builtin().IsInteger() && left.Builtin().Width() == types.Width64 {
				return true
			}
		}
	case lt.IsPointer():
		switch {
		case rt.IsPointer():
			return fa.checkPointer(left, right, span, conv)
		case rt.IsArray():
			return fa.checkPointer(left, fa.decay(right), span, conv)
		case rt.IsFunction():
			if conv == convConv || isVoidPointer(left) {
				return true
			}
		case rt.IsBuiltin():
			if conv == convConv && right.Builtin().IsInteger() {
				return true
			}
		}
	case lt.IsEnum():
		if ast.SameType(left, right) {
			return true
		}
		if conv == convConv && isIntegerLike(right) {
			return true
		}
	case lt.IsFunction():
		switch {
		case rt.IsFunction():
			if sameSignature(lt.FunctionDecl(), rt.FunctionDecl()) {
				return true
			}
			if conv != convConv {
				fa.errorf(fa.incompatibleCode(conv), span,
					"incompatible function types '%s' and '%s'", lt.FunctionDecl().Signature(), rt.FunctionDecl().Signature())
				return false
			}
			return true
		case rt.IsPointer():
			// nil и явные приведения указателей
			if _, isNil := unparen(e).(*ast.NilExpr); isNil || conv == convConv {
				return true
			}
		}
	case lt.IsStruct(), lt.IsArray():
		if ast.SameType(left.WithoutQuals(), right.WithoutQuals()) {
			return true
		}
	}
	fa.reportIncompatible(left, right, span, conv)
	return false
}

func (fa *FunctionAnalyser) incompatibleCode(conv convKind) diag.Code {
	switch conv {
	case convAssign:
		return diag.SemaIncompatibleAssign
	case convConv:
		return diag.SemaInvalidCast
	}
	return diag.SemaIncompatibleTypes
}

func (fa *FunctionAnalyser) reportIncompatible(left, right ast.QualType, span source.Span, conv convKind) {
	switch conv {
	case convAssign:
		fa.errorf(diag.SemaIncompatibleAssign, span, "assigning to '%s' from incompatible type '%s'", left, right)
	case convConv:
		fa.errorf(diag.SemaInvalidCast, span, "invalid cast from '%s' to '%s'", right, left)
	default:
		fa.errorf(diag.SemaIncompatibleTypes, span, "cannot initialize a value of type '%s' with a value of type '%s'", left, right)
	}
}

// checkBuiltin handles builtin to builtin conversions. Implicit narrowing is
// allowed only for constants that fit the destination.
func (fa *FunctionAnalyser) checkBuiltin(left, right ast.QualType, span source.Span, conv convKind, e ast.Expr) bool {
	lk, rk := left.Builtin(), right.Builtin()
	if lk == rk && lk != types.KindVoid {
		return true
	}
	if lk == types.KindVoid || rk == types.KindVoid {
		fa.reportIncompatible(left, right, span, conv)
		return false
	}
	if conv == convConv {
		if types.CanConvert(rk, lk) {
			return true
		}
		fa.reportIncompatible(left, right, span, conv)
		return false
	}
	if types.CanWiden(rk, lk) {
		return true
	}
	if rk.IsInteger() || rk == types.KindBool {
		if v, ok := fa.eval(e); ok {
			if types.FitsInt(lk, v) {
				return true
			}
			lo, hi := types.Range(lk)
			if lk.IsInteger() {
				fa.errorf(diag.SemaConstantOutOfRange, span,
					"constant value %d out of range for '%s' [%d, %d]", v, lk, lo, hi)
			} else {
				fa.errorf(diag.SemaConstantOutOfRange, span,
					"constant value %d cannot be represented exactly in '%s'", v, lk)
			}
			return false
		}
	}
	if _, lit := unparen(e).(*ast.FloatLiteral); lit && lk.IsFloat() {
		return true
	}
	fa.errorf(diag.SemaImplicitNarrowing, span, "implicit conversion loses precision: '%s' to '%s'", right, left)
	return false
}

// checkPointer compares pointee types. void* converts both ways; dropping a
// const qualifier of the pointee needs a cast.
func (fa *FunctionAnalyser) checkPointer(left, right ast.QualType, span source.Span, conv convKind) bool {
	if conv == convConv {
		return true
	}
	lp, rp := left.T.Elem.Canonical(), right.T.Elem.Canonical()
	if lp.IsNull() || rp.IsNull() {
		return true
	}
	if rp.IsConst() && !lp.IsConst() {
		fa.errorf(diag.SemaDiscardsConst, span,
			"conversion from '%s' to '%s' discards const qualifier", right, left)
		return false
	}
	if lp.T.IsVoid() || rp.T.IsVoid() {
		return true
	}
	if ast.SameType(lp.WithoutQuals(), rp.WithoutQuals()) {
		return true
	}
	fa.errorf(diag.SemaIncompatiblePointer, span,
		"incompatible pointer types '%s' and '%s'", left, right)
	return false
}

func sameSignature(a, b *ast.FunctionDecl) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Variadic != b.Variadic || len(a.Args) != len(b.Args) {
		return false
	}
	if !sameQualType(a.ReturnType.Canonical(), b.ReturnType.Canonical()) {
		return false
	}
	for i := range a.Args {
		if !sameQualType(a.Args[i].Type.Canonical(), b.Args[i].Type.Canonical()) {
			return false
		}
	}
	return true
}

func sameQualType(a, b ast.QualType) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() == b.IsNull()
	}
	if a.T.IsFunction() && b.T.IsFunction() {
		return sameSignature(a.T.FunctionDecl(), b.T.FunctionDecl())
	}
	return a.Quals == b.Quals && ast.SameType(a, b)
}

// checkAssignee reports whether e denotes something that may be assigned to.
func (fa *FunctionAnalyser) checkAssignee(e ast.Expr) bool {
	t := e.Type()
	if !isAddressable(e) {
		fa.errorf(diag.SemaNotAssignable, e.Span(), "expression is not assignable")
		return false
	}
	switch {
	case t.IsNull():
		return false
	case t.IsConst():
		fa.errorf(diag.SemaAssignToConst, e.Span(), "cannot assign to %s with const-qualified type '%s'", describe(e), t)
		return false
	case t.T.IsFunction():
		if id, ok := unparen(e).(*ast.IdentifierExpr); ok {
			if _, isFunc := id.Decl.(*ast.FunctionDecl); isFunc {
				fa.errorf(diag.SemaAssignToFunction, e.Span(), "cannot assign to function '%s'", id.Name)
				return false
			}
		}
	case t.T.IsArray():
		fa.errorf(diag.SemaAssignToArray, e.Span(), "array type '%s' is not assignable", t)
		return false
	}
	return true
}

func describe(e ast.Expr) string {
	switch e := unparen(e).(type) {
	case *ast.IdentifierExpr:
		return fmt.Sprintf("variable '%s'", e.Name)
	case *ast.MemberExpr:
		return fmt.Sprintf("member '%s'", e.Member)
	}
	return "expression"
}
