package astwire

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/source"
	"c2sema/internal/types"
)

// Build turns a decoded document into AST nodes. Spans are placed in file;
// named types stay unresolved until analysis. Types are created through tc,
// which may be shared by concurrent builds.
func Build(doc *File, file source.FileID, tc *ast.TypeContext) (*ast.File, error) {
	b := builder{file: file, tc: tc, module: doc.Module}
	f := &ast.File{Path: doc.Path, Source: file, IsInterface: doc.Interface}

	for i := range doc.Uses {
		d, err := b.decl(&doc.Uses[i])
		if err != nil {
			return nil, err
		}
		u, ok := d.(*ast.UseDecl)
		if !ok {
			return nil, b.misplaced(d, "uses")
		}
		f.Uses = append(f.Uses, u)
	}
	for i := range doc.Types {
		d, err := b.decl(&doc.Types[i])
		if err != nil {
			return nil, err
		}
		if _, ok := d.(ast.TypeDecl); !ok {
			return nil, b.misplaced(d, "types")
		}
		f.Types = append(f.Types, d)
	}
	for i := range doc.Vars {
		v, err := b.varDecl(&doc.Vars[i], ast.VarGlobal)
		if err != nil {
			return nil, err
		}
		f.Vars = append(f.Vars, v)
	}
	for i := range doc.Funcs {
		d, err := b.decl(&doc.Funcs[i])
		if err != nil {
			return nil, err
		}
		fn, ok := d.(*ast.FunctionDecl)
		if !ok {
			return nil, b.misplaced(d, "funcs")
		}
		f.Functions = append(f.Functions, fn)
	}
	for i := range doc.ArrayValues {
		d, err := b.decl(&doc.ArrayValues[i])
		if err != nil {
			return nil, err
		}
		av, ok := d.(*ast.ArrayValueDecl)
		if !ok {
			return nil, b.misplaced(d, "array_values")
		}
		f.ArrayValues = append(f.ArrayValues, av)
	}
	return f, nil
}

type builder struct {
	file   source.FileID
	tc     *ast.TypeContext
	module string
}

func (b *builder) span(s Span) source.Span {
	return source.Span{File: b.file, Start: s.Start, End: s.End}
}

func (b *builder) base(d *Decl) ast.DeclBase {
	return ast.DeclBase{Name: d.Name, Span: b.span(d.Span), Public: d.Public, Module: b.module}
}

func (b *builder) misplaced(d ast.Decl, list string) error {
	return fmt.Errorf("%w: %s %q in %s", ErrMalformed, d.Kind(), d.Base().Name, list)
}

func unknown(what, kind string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownKind, what, kind)
}

func missing(what, field string) error {
	return fmt.Errorf("%w: %s without %s", ErrMalformed, what, field)
}

func (b *builder) decl(d *Decl) (ast.Decl, error) {
	switch d.Kind {
	case DeclUse:
		return &ast.UseDecl{
			DeclBase:  b.base(d),
			Alias:     d.Alias,
			AliasSpan: b.span(d.AliasSpan),
			IsLocal:   d.Local,
		}, nil
	case DeclVar:
		return b.varDecl(d, ast.VarGlobal)
	case DeclFunc:
		return b.function(d)
	case DeclAlias:
		ref, err := b.typeRef(d.Type, "alias "+d.Name)
		if err != nil {
			return nil, err
		}
		return &ast.AliasTypeDecl{DeclBase: b.base(d), RefType: ref}, nil
	case DeclStruct, DeclUnion:
		return b.structDecl(d, true)
	case DeclEnum:
		return b.enumDecl(d)
	case DeclFuncType:
		fn, err := b.function(d)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionTypeDecl{DeclBase: b.base(d), Func: fn}, nil
	case DeclArrayValue:
		value, err := b.expr(d.Value)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, missing("array value "+d.Name, "value")
		}
		return &ast.ArrayValueDecl{DeclBase: b.base(d), Value: value}, nil
	}
	return nil, unknown("decl", d.Kind)
}

func (b *builder) varDecl(d *Decl, kind ast.VarKind) (*ast.VarDecl, error) {
	if d.Kind != DeclVar {
		return nil, fmt.Errorf("%w: %s %q where a variable is expected", ErrMalformed, d.Kind, d.Name)
	}
	qt, err := b.typeRef(d.Type, "variable "+d.Name)
	if err != nil {
		return nil, err
	}
	init, err := b.expr(d.Init)
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{
		DeclBase:    b.base(d),
		VarKind:     kind,
		Type:        qt,
		Init:        init,
		Incremental: d.Incremental,
	}, nil
}

func (b *builder) function(d *Decl) (*ast.FunctionDecl, error) {
	ret, err := b.typeRef(d.Type, "function "+d.Name)
	if err != nil {
		return nil, err
	}
	fn := &ast.FunctionDecl{
		DeclBase:   b.base(d),
		ReturnType: ret,
		Variadic:   d.Variadic,
		StructName: d.StructName,
		MemberName: d.MemberName,
	}
	for i := range d.Args {
		arg, err := b.varDecl(&d.Args[i], ast.VarParam)
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
	}
	if d.Body != nil {
		body, err := b.stmt(d.Body)
		if err != nil {
			return nil, err
		}
		compound, ok := body.(*ast.CompoundStmt)
		if !ok {
			return nil, fmt.Errorf("%w: body of %s is a %s statement", ErrMalformed, d.Name, body.Kind())
		}
		fn.Body = compound
	}
	return fn, nil
}

func (b *builder) structDecl(d *Decl, global bool) (*ast.StructTypeDecl, error) {
	s := &ast.StructTypeDecl{DeclBase: b.base(d), IsStruct: d.Kind == DeclStruct, IsGlobal: global}
	for i := range d.Members {
		m := &d.Members[i]
		switch m.Kind {
		case DeclVar:
			v, err := b.varDecl(m, ast.VarMember)
			if err != nil {
				return nil, err
			}
			s.Members = append(s.Members, v)
		case DeclStruct, DeclUnion:
			sub, err := b.structDecl(m, false)
			if err != nil {
				return nil, err
			}
			s.Members = append(s.Members, sub)
		default:
			return nil, unknown("member of "+d.Name, m.Kind)
		}
	}
	return s, nil
}

func (b *builder) enumDecl(d *Decl) (*ast.EnumTypeDecl, error) {
	impl, err := b.typeRef(d.Type, "enum "+d.Name)
	if err != nil {
		return nil, err
	}
	ed := &ast.EnumTypeDecl{DeclBase: b.base(d), ImplType: impl}
	for i := range d.Constants {
		c := &d.Constants[i]
		if c.Kind != DeclConstant {
			return nil, unknown("constant of "+d.Name, c.Kind)
		}
		init, err := b.expr(c.Init)
		if err != nil {
			return nil, err
		}
		ed.Constants = append(ed.Constants, &ast.EnumConstantDecl{DeclBase: b.base(c), Init: init, Enum: ed})
	}
	return ed, nil
}

func (b *builder) typeRef(t *TypeRef, owner string) (ast.QualType, error) {
	if t == nil {
		return ast.QualType{}, missing(owner, "type")
	}
	var qt ast.QualType
	switch t.Kind {
	case TypeBuiltin:
		k, ok := types.KindByName[t.Builtin]
		if !ok {
			return ast.QualType{}, unknown("builtin type", t.Builtin)
		}
		qt = b.tc.Builtin(k)
	case TypePointer:
		elem, err := b.typeRef(t.Elem, owner)
		if err != nil {
			return ast.QualType{}, err
		}
		qt = b.tc.Pointer(elem)
	case TypeArray:
		elem, err := b.typeRef(t.Elem, owner)
		if err != nil {
			return ast.QualType{}, err
		}
		size, err := b.expr(t.Size)
		if err != nil {
			return ast.QualType{}, err
		}
		qt = b.tc.Array(elem, size, t.Incr)
	case TypeNamed:
		qt = b.tc.Unresolved(t.Pkg, t.Name, b.span(t.PkgSpan), b.span(t.NameSpan))
	default:
		return ast.QualType{}, unknown("type", t.Kind)
	}
	var quals ast.Qualifiers
	if t.Const {
		quals |= ast.QualConst
	}
	if t.Volatile {
		quals |= ast.QualVolatile
	}
	if t.Local {
		quals |= ast.QualLocal
	}
	return qt.WithQuals(quals), nil
}

// expr returns nil for a nil record: optional children are simply absent.
func (b *builder) expr(e *Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	base := ast.ExprBase{Loc: b.span(e.Span)}
	switch e.Kind {
	case ExprInt:
		return &ast.IntegerLiteral{ExprBase: base, Value: e.Int}, nil
	case ExprFloat:
		return &ast.FloatLiteral{ExprBase: base, Value: e.Float}, nil
	case ExprBool:
		return &ast.BoolLiteral{ExprBase: base, Value: e.Bool}, nil
	case ExprChar:
		if e.Int > 0xff {
			return nil, fmt.Errorf("%w: char literal %d", ErrMalformed, e.Int)
		}
		return &ast.CharLiteral{ExprBase: base, Value: uint8(e.Int)}, nil
	case ExprString:
		return &ast.StringLiteral{ExprBase: base, Value: e.Str}, nil
	case ExprNil:
		return &ast.NilExpr{ExprBase: base}, nil
	case ExprIdent:
		return &ast.IdentifierExpr{ExprBase: base, Name: e.Name}, nil
	case ExprType:
		qt, err := b.typeRef(e.Type, "type expression")
		if err != nil {
			return nil, err
		}
		return &ast.TypeExpr{ExprBase: base, QT: qt}, nil
	case ExprCall:
		fn, err := b.required(e.X, "call", "callee")
		if err != nil {
			return nil, err
		}
		args, err := b.exprs(e.Items)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{ExprBase: base, Fn: fn, Args: args}, nil
	case ExprInitList:
		values, err := b.exprs(e.Items)
		if err != nil {
			return nil, err
		}
		return ast.NewInitList(base.Loc, values), nil
	case ExprBinary:
		op, ok := types.ParseBinaryOp(e.Op)
		if !ok {
			return nil, unknown("binary operator", e.Op)
		}
		lhs, err := b.required(e.X, "binary", "lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := b.required(e.Y, "binary", "rhs")
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperator{ExprBase: base, Op: op, LHS: lhs, RHS: rhs}, nil
	case ExprCond:
		cond, err := b.required(e.Cond, "conditional", "cond")
		if err != nil {
			return nil, err
		}
		lhs, err := b.required(e.X, "conditional", "lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := b.required(e.Y, "conditional", "rhs")
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalOperator{ExprBase: base, Cond: cond, LHS: lhs, RHS: rhs}, nil
	case ExprUnary:
		op, ok := types.ParseUnaryOp(e.Op)
		if !ok {
			return nil, unknown("unary operator", e.Op)
		}
		operand, err := b.required(e.X, "unary", "operand")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOperator{ExprBase: base, Op: op, Operand: operand}, nil
	case ExprBuiltin:
		var kind ast.BuiltinKind
		switch e.Name {
		case "sizeof":
			kind = ast.BuiltinSizeof
		case "elemsof":
			kind = ast.BuiltinElemsof
		default:
			return nil, unknown("builtin", e.Name)
		}
		arg, err := b.required(e.X, e.Name, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.BuiltinExpr{ExprBase: base, Builtin: kind, Arg: arg}, nil
	case ExprSubscript:
		arr, err := b.required(e.X, "subscript", "base")
		if err != nil {
			return nil, err
		}
		idx, err := b.required(e.Y, "subscript", "index")
		if err != nil {
			return nil, err
		}
		return &ast.ArraySubscriptExpr{ExprBase: base, Base: arr, Index: idx}, nil
	case ExprMember:
		x, err := b.required(e.X, "member", "base")
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpr{ExprBase: base, Base: x, Member: e.Name, MemberSpan: b.span(e.NameSpan)}, nil
	case ExprParen:
		inner, err := b.required(e.X, "paren", "inner")
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{ExprBase: base, Inner: inner}, nil
	case ExprCast:
		qt, err := b.typeRef(e.Type, "cast")
		if err != nil {
			return nil, err
		}
		inner, err := b.required(e.X, "cast", "inner")
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{ExprBase: base, DestType: qt, Inner: inner}, nil
	}
	return nil, unknown("expr", e.Kind)
}

func (b *builder) required(e *Expr, what, field string) (ast.Expr, error) {
	if e == nil {
		return nil, missing(what, field)
	}
	return b.expr(e)
}

func (b *builder) exprs(list []Expr) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(list))
	for i := range list {
		e, err := b.expr(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *builder) stmt(s *Stmt) (ast.Stmt, error) {
	base := ast.StmtBase{Loc: b.span(s.Span)}
	switch s.Kind {
	case StmtReturn:
		v, err := b.expr(s.X)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{StmtBase: base, Value: v}, nil
	case StmtExpr:
		x, err := b.required(s.X, "expression statement", "x")
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{StmtBase: base, X: x}, nil
	case StmtDecl:
		if s.Var == nil {
			return nil, missing("decl statement", "var")
		}
		v, err := b.varDecl(s.Var, ast.VarLocal)
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{StmtBase: base, Var: v}, nil
	case StmtIf:
		cond, err := b.required(s.X, "if", "cond")
		if err != nil {
			return nil, err
		}
		then, err := b.requiredStmt(s.Then, "if", "then")
		if err != nil {
			return nil, err
		}
		els, err := b.optionalStmt(s.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{StmtBase: base, Cond: cond, Then: then, Else: els}, nil
	case StmtWhile:
		cond, err := b.required(s.X, "while", "cond")
		if err != nil {
			return nil, err
		}
		body, err := b.requiredStmt(s.Body, "while", "body")
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{StmtBase: base, Cond: cond, Body: body}, nil
	case StmtDo:
		body, err := b.requiredStmt(s.Body, "do", "body")
		if err != nil {
			return nil, err
		}
		cond, err := b.required(s.X, "do", "cond")
		if err != nil {
			return nil, err
		}
		return &ast.DoStmt{StmtBase: base, Body: body, Cond: cond}, nil
	case StmtFor:
		init, err := b.optionalStmt(s.Init)
		if err != nil {
			return nil, err
		}
		cond, err := b.expr(s.X)
		if err != nil {
			return nil, err
		}
		incr, err := b.expr(s.Incr)
		if err != nil {
			return nil, err
		}
		body, err := b.requiredStmt(s.Body, "for", "body")
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{StmtBase: base, Init: init, Cond: cond, Incr: incr, Body: body}, nil
	case StmtSwitch:
		cond, err := b.required(s.X, "switch", "cond")
		if err != nil {
			return nil, err
		}
		cases, err := b.stmts(s.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.SwitchStmt{StmtBase: base, Cond: cond, Cases: cases}, nil
	case StmtCase:
		v, err := b.required(s.X, "case", "value")
		if err != nil {
			return nil, err
		}
		body, err := b.stmts(s.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.CaseStmt{StmtBase: base, Value: v, Body: body}, nil
	case StmtDefault:
		body, err := b.stmts(s.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.DefaultStmt{StmtBase: base, Body: body}, nil
	case StmtBreak:
		return &ast.BreakStmt{StmtBase: base}, nil
	case StmtContinue:
		return &ast.ContinueStmt{StmtBase: base}, nil
	case StmtCompound:
		list, err := b.stmts(s.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{StmtBase: base, Stmts: list}, nil
	}
	return nil, unknown("stmt", s.Kind)
}

func (b *builder) requiredStmt(s *Stmt, what, field string) (ast.Stmt, error) {
	if s == nil {
		return nil, missing(what, field)
	}
	return b.stmt(s)
}

// optionalStmt keeps a nil interface for an absent child.
func (b *builder) optionalStmt(s *Stmt) (ast.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	return b.stmt(s)
}

func (b *builder) stmts(list []Stmt) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(list))
	for i := range list {
		st, err := b.stmt(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
