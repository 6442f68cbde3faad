package sema

import (
	"math"

	"fortio.org/safecast"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/types"
)

var notConstantMessages = map[diag.Code]string{
	diag.SemaInitNotConstant:       "initializer element is not a compile-time constant",
	diag.SemaArgDefaultNotConstant: "default argument is not a compile-time constant",
	diag.SemaArraySizeNotConstant:  "array size is not a compile-time constant",
	diag.SemaEnumValueNotConstant:  "enum value is not a compile-time constant",
	diag.SemaCaseNotConstant:       "case value is not a compile-time constant",
}

// pushMode enters constant mode: until the matching popMode every expression
// must be computable at compile time, violations are reported with code.
func (fa *FunctionAnalyser) pushMode(code diag.Code) {
	fa.modes = append(fa.modes, code)
}

func (fa *FunctionAnalyser) popMode() {
	if len(fa.modes) == 0 {
		panic("sema: popMode without pushMode")
	}
	fa.modes = fa.modes[:len(fa.modes)-1]
}

func (fa *FunctionAnalyser) inConstMode() bool {
	return len(fa.modes) != 0
}

func (fa *FunctionAnalyser) reportNotConstant(e ast.Expr) {
	code := fa.modes[len(fa.modes)-1]
	fa.errorf(code, e.Span(), "%s", notConstantMessages[code])
}

// lateErrors runs a late resolution and accounts for its errors exactly once,
// whether it ran on this analyser or on the one of another file.
func (fa *FunctionAnalyser) lateErrors(resolve func() int) {
	before := fa.errors
	n := resolve()
	fa.errors = before + n
}

// evalConstant analyses e in constant mode and computes its integer value.
// It returns the value, whether it is known and the number of errors.
func (fa *FunctionAnalyser) evalConstant(e ast.Expr, mode diag.Code) (int64, bool, int) {
	before := fa.errors
	fa.pushMode(mode)
	t := fa.analyseExpr(e, sideRHS)
	fa.popMode()
	if t.IsNull() {
		return 0, false, fa.errors - before
	}
	if !isIntegerLike(t) && t.Builtin() != types.KindBool {
		fa.errorf(mode, e.Span(), "integer constant expression must have integer type, not '%s'", t)
		return 0, false, fa.errors - before
	}
	fa.overflow = false
	v, ok := fa.eval(e)
	switch {
	case ok || fa.errors != before:
	case fa.overflow:
		fa.errorf(diag.SemaConstantOutOfRange, e.Span(), "overflow in constant expression")
	default:
		fa.errorf(mode, e.Span(), "%s", notConstantMessages[mode])
	}
	return v, ok, fa.errors - before
}

// eval computes the value of an analysed integer expression. It reports
// nothing itself; ok is false when the value is not known at compile time.
func (fa *FunctionAnalyser) eval(e ast.Expr) (v int64, ok bool) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		n, err := safecast.Conv[int64](e.Value)
		return n, err == nil
	case *ast.CharLiteral:
		return int64(e.Value), true
	case *ast.BoolLiteral:
		if e.Value {
			return 1, true
		}
		return 0, true
	case *ast.ParenExpr:
		return fa.eval(e.Inner)
	case *ast.IdentifierExpr:
		return fa.evalDecl(e.Decl)
	case *ast.MemberExpr:
		if !e.IsPackage {
			return 0, false
		}
		return fa.evalDecl(e.Decl)
	case *ast.UnaryOperator:
		x, ok := fa.eval(e.Operand)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case types.UnaryPlus:
			return x, true
		case types.UnaryMinus:
			return -x, true
		case types.UnaryBitNot:
			return ^x, true
		case types.UnaryLogicalNot:
			return boolInt(x == 0), true
		}
	case *ast.BinaryOperator:
		return fa.evalBinary(e)
	case *ast.ConditionalOperator:
		c, ok := fa.eval(e.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return fa.eval(e.LHS)
		}
		return fa.eval(e.RHS)
	case *ast.CastExpr:
		x, ok := fa.eval(e.Inner)
		if !ok {
			return 0, false
		}
		return truncate(e.Type().Builtin(), x), true
	case *ast.BuiltinExpr:
		return fa.evalBuiltin(e)
	}
	return 0, false
}

func (fa *FunctionAnalyser) evalDecl(d ast.Decl) (int64, bool) {
	switch d := d.(type) {
	case *ast.EnumConstantDecl:
		if !d.Assigned && d.Enum != nil {
			fa.lateErrors(func() int { return fa.late.resolveEnum(d.Enum) })
		}
		return d.Value, d.Assigned
	case *ast.VarDecl:
		t := d.Type.Canonical()
		if !isConstantVar(d, t) || !isIntegerLike(t) || fa.visiting[d] {
			return 0, false
		}
		if d.VarKind == ast.VarGlobal {
			fa.lateErrors(func() int { return fa.late.checkVarInit(d) })
		}
		fa.visiting[d] = true
		defer delete(fa.visiting, d)
		v, ok := fa.eval(d.Init)
		if !ok {
			return 0, false
		}
		return truncate(kindOf(t), v), true
	}
	return 0, false
}

func (fa *FunctionAnalyser) evalBinary(e *ast.BinaryOperator) (int64, bool) {
	x, ok := fa.eval(e.LHS)
	if !ok {
		return 0, false
	}
	// правый операнд && и || не вычисляется, если результат уже известен
	switch e.Op {
	case types.BinaryLogicalAnd:
		if x == 0 {
			return 0, true
		}
	case types.BinaryLogicalOr:
		if x != 0 {
			return 1, true
		}
	}
	y, ok := fa.eval(e.RHS)
	if !ok {
		return 0, false
	}
	switch e.Op {
	case types.BinaryAdd:
		return fa.checked(addInt(x, y))
	case types.BinarySub:
		return fa.checked(subInt(x, y))
	case types.BinaryMul:
		return fa.checked(mulInt(x, y))
	case types.BinaryDiv:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x / y, true
	case types.BinaryRem:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x % y, true
	case types.BinaryShl:
		if y < 0 || y >= 64 {
			return 0, false
		}
		return x << uint(y), true
	case types.BinaryShr:
		if y < 0 || y >= 64 {
			return 0, false
		}
		return x >> uint(y), true
	case types.BinaryBitAnd:
		return x & y, true
	case types.BinaryBitOr:
		return x | y, true
	case types.BinaryBitXor:
		return x ^ y, true
	case types.BinaryLess:
		return boolInt(x < y), true
	case types.BinaryLessEq:
		return boolInt(x <= y), true
	case types.BinaryGreater:
		return boolInt(x > y), true
	case types.BinaryGreaterEq:
		return boolInt(x >= y), true
	case types.BinaryEq:
		return boolInt(x == y), true
	case types.BinaryNotEq:
		return boolInt(x != y), true
	case types.BinaryLogicalAnd, types.BinaryLogicalOr:
		return boolInt(y != 0), true
	}
	return 0, false
}

func (fa *FunctionAnalyser) evalBuiltin(e *ast.BuiltinExpr) (int64, bool) {
	switch e.Builtin {
	case ast.BuiltinSizeof:
		size, ok := sizeOf(e.Arg.Type(), 0)
		if !ok {
			return 0, false
		}
		n, err := safecast.Conv[int64](size)
		return n, err == nil
	case ast.BuiltinElemsof:
		t := e.Arg.Type()
		if t.IsNull() || !t.T.IsArray() || !t.T.Array.Evaluated {
			return 0, false
		}
		n, err := safecast.Conv[int64](t.T.Array.Length)
		return n, err == nil
	}
	return 0, false
}

// sizeOf computes the storage size of a canonical type: pointers take 8
// bytes, struct members are laid out with natural alignment.
func sizeOf(t ast.QualType, depth int) (uint64, bool) {
	if t.IsNull() || depth > MaxStructDepth {
		return 0, false
	}
	switch t.T.Class {
	case ast.ClassBuiltin:
		return t.Builtin().Size(), true
	case ast.ClassPointer, ast.ClassFunction:
		return 8, true
	case ast.ClassEnum:
		return kindOf(t).Size(), true
	case ast.ClassArray:
		if !t.T.Array.Evaluated {
			return 0, false
		}
		elem, ok := sizeOf(t.T.Elem.Canonical(), depth+1)
		if !ok {
			return 0, false
		}
		return elem * t.T.Array.Length, true
	case ast.ClassStruct:
		size, _, ok := structLayout(t.T.StructDecl(), depth+1)
		return size, ok
	}
	return 0, false
}

func alignOf(t ast.QualType, depth int) uint64 {
	if t.IsNull() || depth > MaxStructDepth {
		return 1
	}
	switch t.T.Class {
	case ast.ClassArray:
		return alignOf(t.T.Elem.Canonical(), depth+1)
	case ast.ClassStruct:
		_, align, _ := structLayout(t.T.StructDecl(), depth+1)
		return align
	}
	size, ok := sizeOf(t, depth)
	if !ok || size == 0 {
		return 1
	}
	return size
}

func structLayout(s *ast.StructTypeDecl, depth int) (size, align uint64, ok bool) {
	if s == nil {
		return 0, 1, false
	}
	align = 1
	for _, m := range s.Members {
		var mt ast.QualType
		switch m := m.(type) {
		case *ast.VarDecl:
			mt = m.Type.Canonical()
		case *ast.StructTypeDecl:
			mt = m.DeclaredType()
		}
		ms, ok := sizeOf(mt, depth)
		if !ok {
			return 0, 1, false
		}
		ma := alignOf(mt, depth)
		align = max(align, ma)
		if !s.IsStruct {
			size = max(size, ms)
			continue
		}
		size = alignUp(size, ma) + ms
	}
	return alignUp(size, align), align, true
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}

// truncate wraps v to the range of an integer kind.
func truncate(k types.Kind, v int64) int64 {
	switch k {
	case types.KindInt8:
		return int64(int8(v)) //nolint:gosec // намеренное усечение
	case types.KindInt16:
		return int64(int16(v)) //nolint:gosec
	case types.KindInt32:
		return int64(int32(v)) //nolint:gosec
	case types.KindUInt8:
		return int64(uint8(v)) //nolint:gosec
	case types.KindUInt16:
		return int64(uint16(v)) //nolint:gosec
	case types.KindUInt32:
		return int64(uint32(v)) //nolint:gosec
	case types.KindBool:
		return boolInt(v != 0)
	}
	return v
}

// checked records an overflow of the 64-bit evaluation, the value is then
// unknown.
func (fa *FunctionAnalyser) checked(v int64, ok bool) (int64, bool) {
	if !ok {
		fa.overflow = true
		return 0, false
	}
	return v, true
}

func addInt(x, y int64) (int64, bool) {
	r := x + y
	if (x > 0 && y > 0 && r < 0) || (x < 0 && y < 0 && r >= 0) {
		return 0, false
	}
	return r, true
}

func subInt(x, y int64) (int64, bool) {
	r := x - y
	if (x >= 0 && y < 0 && r < 0) || (x < 0 && y > 0 && r >= 0) {
		return 0, false
	}
	return r, true
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	r := x * y
	if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	return r, true
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
