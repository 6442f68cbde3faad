package sema

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/symbols"
	"c2sema/internal/types"
)

// side tells expression analysis whether a value is read or only stored to.
type side uint8

const (
	sideRHS side = iota
	sideLHS
)

// scopeBailout unwinds the analysis of a function whose nesting exceeds
// symbols.MaxScopeDepth.
type scopeBailout struct{}

// FunctionAnalyser type-checks function bodies and the expressions that
// appear outside of them: global initializers, default arguments, array sizes
// and enum values.
type FunctionAnalyser struct {
	global   *symbols.FileScope
	scope    *symbols.Stack
	types    *ast.TypeContext
	reporter diag.Reporter
	late     lateResolver

	warnUnusedLocals bool

	fn       *ast.FunctionDecl
	errors   int
	modes    []diag.Code // стек константного режима
	initDecl ast.Decl    // объявление, чей инициализатор проверяется
	visiting map[ast.Decl]bool
	overflow bool // последнее вычисление вышло за int64
}

func newFunctionAnalyser(global *symbols.FileScope, tc *ast.TypeContext, reporter diag.Reporter, late lateResolver, warnUnusedLocals bool) *FunctionAnalyser {
	return &FunctionAnalyser{
		global:           global,
		scope:            symbols.NewStack(global),
		types:            tc,
		reporter:         reporter,
		late:             late,
		warnUnusedLocals: warnUnusedLocals,
		visiting:         make(map[ast.Decl]bool),
	}
}

// Check analyses the body of fn and returns the number of errors. A body
// nested deeper than symbols.MaxScopeDepth is reported as fatal and the rest
// of the function is skipped.
func (fa *FunctionAnalyser) Check(fn *ast.FunctionDecl) (errors int) {
	fa.fn = fn
	fa.errors = 0
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(scopeBailout); !ok {
				panic(r)
			}
			fa.scope.Reset()
		}
		errors = fa.errors
		fa.fn = nil
		fa.modes = fa.modes[:0]
		fa.initDecl = nil
	}()

	fa.enterScope(symbols.FnScope|symbols.DeclScope, fn.Span)
	for _, arg := range fn.Args {
		if prev := fa.scope.FindLocal(arg.Name); prev != nil && arg.Name != "" {
			fa.reportRedefinition(arg, prev)
			continue
		}
		fa.scope.AddDecl(arg)
	}
	if fn.Body != nil {
		fa.analyseCompound(fn.Body, true)
	}
	fa.exitScope()
	return fa.errors
}

func (fa *FunctionAnalyser) errorf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(fa.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
	fa.errors++
}

func (fa *FunctionAnalyser) enterScope(flags symbols.ScopeFlags, span source.Span) {
	if err := fa.scope.Enter(flags); err != nil {
		diag.ReportFatal(fa.reporter, diag.SemaScopeTooDeep, span,
			fmt.Sprintf("%v: at most %d nested scopes are allowed", err, symbols.MaxScopeDepth)).Emit()
		fa.errors++
		panic(scopeBailout{})
	}
}

func (fa *FunctionAnalyser) exitScope() {
	decls := fa.scope.Exit()
	if !fa.warnUnusedLocals {
		return
	}
	for _, d := range decls {
		if d.VarKind == ast.VarLocal && !d.Used {
			diag.ReportWarning(fa.reporter, diag.SemaUnusedLocal, d.Span,
				fmt.Sprintf("unused variable '%s'", d.Name)).Emit()
		}
	}
}

func (fa *FunctionAnalyser) reportRedefinition(d, prev *ast.VarDecl) {
	diag.ReportError(fa.reporter, diag.SemaDuplicateLocal, d.Span,
		fmt.Sprintf("redefinition of '%s'", d.Name)).
		WithNote(prev.Span, "previous definition is here").
		Emit()
	fa.errors++
}

// analyseStmt dispatches on the statement kind. haveScope tells a compound
// statement that the caller already pushed the frame it should use.
func (fa *FunctionAnalyser) analyseStmt(s ast.Stmt, haveScope bool) {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		fa.analyseReturn(s)
	case *ast.ExprStmt:
		fa.analyseExpr(s.X, sideRHS)
	case *ast.DeclStmt:
		fa.analyseDeclStmt(s)
	case *ast.IfStmt:
		fa.analyseIf(s)
	case *ast.WhileStmt:
		fa.analyseCondition(s.Cond)
		fa.enterScope(loopScope, s.Span())
		fa.analyseStmt(s.Body, true)
		fa.exitScope()
	case *ast.DoStmt:
		fa.enterScope(loopScope, s.Span())
		fa.analyseStmt(s.Body, true)
		fa.exitScope()
		fa.analyseCondition(s.Cond)
	case *ast.ForStmt:
		fa.analyseFor(s)
	case *ast.SwitchStmt:
		fa.analyseSwitch(s)
	case *ast.CaseStmt, *ast.DefaultStmt:
		fa.errorf(diag.SemaCaseOutsideSwitch, s.Span(), "case label not within a switch statement")
	case *ast.BreakStmt:
		if !fa.scope.AllowBreak() {
			fa.errorf(diag.SemaMisplacedBreak, s.Span(), "'break' statement not in loop or switch statement")
		}
	case *ast.ContinueStmt:
		if !fa.scope.AllowContinue() {
			fa.errorf(diag.SemaMisplacedContinue, s.Span(), "'continue' statement not in loop statement")
		}
	case *ast.CompoundStmt:
		fa.analyseCompound(s, haveScope)
	default:
		panic(fmt.Sprintf("sema: unexpected statement %T", s))
	}
}

const loopScope = symbols.BreakScope | symbols.ContinueScope | symbols.DeclScope | symbols.ControlScope

func (fa *FunctionAnalyser) analyseCompound(s *ast.CompoundStmt, haveScope bool) {
	if !haveScope {
		fa.enterScope(symbols.DeclScope, s.Span())
	}
	for _, st := range s.Stmts {
		fa.analyseStmt(st, false)
	}
	if !haveScope {
		fa.exitScope()
	}
}

func (fa *FunctionAnalyser) analyseIf(s *ast.IfStmt) {
	fa.analyseCondition(s.Cond)
	fa.enterScope(symbols.DeclScope, s.Then.Span())
	fa.analyseStmt(s.Then, true)
	fa.exitScope()
	if s.Else != nil {
		fa.enterScope(symbols.DeclScope, s.Else.Span())
		fa.analyseStmt(s.Else, true)
		fa.exitScope()
	}
}

func (fa *FunctionAnalyser) analyseFor(s *ast.ForStmt) {
	fa.enterScope(loopScope, s.Span())
	if s.Init != nil {
		fa.analyseStmt(s.Init, false)
	}
	if s.Cond != nil {
		fa.analyseCondition(s.Cond)
	}
	if s.Incr != nil {
		fa.analyseExpr(s.Incr, sideRHS)
	}
	fa.analyseStmt(s.Body, true)
	fa.exitScope()
}

func (fa *FunctionAnalyser) analyseSwitch(s *ast.SwitchStmt) {
	ct := fa.analyseExpr(s.Cond, sideRHS)
	if !ct.IsNull() && !isIntegerLike(ct) {
		fa.errorf(diag.SemaSwitchNotInteger, s.Cond.Span(),
			"statement requires expression of integer type ('%s' invalid)", ct)
	}

	fa.enterScope(symbols.BreakScope|symbols.SwitchScope|symbols.DeclScope, s.Span())
	var seenDefault *ast.DefaultStmt
	for _, c := range s.Cases {
		switch c := c.(type) {
		case *ast.CaseStmt:
			fa.pushMode(diag.SemaCaseNotConstant)
			vt := fa.analyseExpr(c.Value, sideRHS)
			fa.popMode()
			if !vt.IsNull() && !ct.IsNull() && isIntegerLike(ct) {
				fa.checkCompatible(ct, vt, c.Value.Span(), convInit, c.Value)
			}
			fa.analyseCaseBody(c.Span(), c.Body)
		case *ast.DefaultStmt:
			if seenDefault != nil {
				diag.ReportError(fa.reporter, diag.SemaDuplicateDefault, c.Span(),
					"multiple default labels in one switch").
					WithNote(seenDefault.Span(), "previous default is here").
					Emit()
				fa.errors++
			}
			seenDefault = c
			fa.analyseCaseBody(c.Span(), c.Body)
		default:
			panic(fmt.Sprintf("sema: %T in the case list of a switch", c))
		}
	}
	fa.exitScope()
}

func (fa *FunctionAnalyser) analyseCaseBody(span source.Span, body []ast.Stmt) {
	fa.enterScope(symbols.DeclScope, span)
	for _, st := range body {
		fa.analyseStmt(st, false)
	}
	fa.exitScope()
}

func (fa *FunctionAnalyser) analyseReturn(s *ast.ReturnStmt) {
	rt := fa.fn.ReturnType.Canonical()
	if s.Value == nil {
		if !rt.IsNull() && !rt.T.IsVoid() {
			fa.errorf(diag.SemaReturnMissingValue, s.Span(),
				"non-void function '%s' should return a value", fa.fn.Name)
		}
		return
	}
	vt := fa.analyseExpr(s.Value, sideRHS)
	if rt.IsNull() {
		return
	}
	if rt.T.IsVoid() {
		fa.errorf(diag.SemaReturnValueInVoid, s.Value.Span(),
			"void function '%s' should not return a value", fa.fn.Name)
		return
	}
	if !vt.IsNull() {
		fa.checkCompatible(rt, vt, s.Value.Span(), convInit, s.Value)
	}
}

func (fa *FunctionAnalyser) analyseDeclStmt(s *ast.DeclStmt) {
	v := s.Var
	if prev := fa.scope.FindLocal(v.Name); prev != nil {
		fa.reportRedefinition(v, prev)
		return
	}
	qt := fa.resolveType(v, v.Type)
	if !qt.IsNull() {
		qt = fa.ownArrayType(v)
	}
	fa.scope.AddDecl(v)
	if qt.IsNull() {
		return
	}
	if qt.T.IsVoid() {
		fa.errorf(diag.SemaVoidVariable, v.Span, "variable '%s' has type void", v.Name)
		return
	}
	if v.Incremental {
		fa.errorf(diag.SemaIncrementalNotArray, v.Span, "local variable '%s' cannot be incremental", v.Name)
		return
	}
	if v.Init == nil {
		if qt.IsConst() {
			fa.errorf(diag.SemaUninitializedConst, v.Span,
				"default initialization of an object of const type '%s'", qt)
		}
		return
	}
	prev := fa.initDecl
	fa.initDecl = v
	fa.analyseInitExpr(v.Init, qt)
	fa.initDecl = prev
}

// analyseCondition accepts anything convertible to bool: scalars, enums and
// pointers.
func (fa *FunctionAnalyser) analyseCondition(e ast.Expr) {
	t := fa.analyseExpr(e, sideRHS)
	if t.IsNull() {
		return
	}
	switch {
	case t.T.IsBuiltin() && t.Builtin().IsScalar():
	case t.T.IsPointer(), t.T.IsEnum():
	default:
		fa.errorf(diag.SemaInvalidCondition, e.Span(), "value of type '%s' is not contextually convertible to 'bool'", t)
	}
}

// resolveType validates and canonicalises a type written inside an
// expression or a function body.
func (fa *FunctionAnalyser) resolveType(owner ast.Decl, qt ast.QualType) ast.QualType {
	if qt.IsNull() {
		return qt
	}
	if !qt.HasCanonicalType() {
		if n := fa.global.CheckType(qt, false); n != 0 {
			fa.errors += n
			return ast.QualType{}
		}
		if owner == nil {
			owner = fa.fn
		}
		c := fa.global.ResolveCanonicals(owner, qt, true)
		if c.IsNull() {
			fa.errors++
			return c
		}
	}
	if fa.checkArraySizes(qt) != 0 {
		return ast.QualType{}
	}
	return qt.Canonical()
}

func isIntegerLike(q ast.QualType) bool {
	if q.T == nil {
		return false
	}
	return q.T.IsEnum() || q.Builtin().IsInteger()
}

// kindOf maps enums to their implementation type.
func kindOf(q ast.QualType) types.Kind {
	if q.T == nil {
		return types.KindInvalid
	}
	if ed := q.T.EnumDecl(); ed != nil {
		return ed.ImplType.Canonical().Builtin()
	}
	return q.Builtin()
}
