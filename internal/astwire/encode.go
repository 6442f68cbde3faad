package astwire

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/source"
)

// FromAST converts a file back into its interchange record. Only the source
// form is written: analysis results (bound decls, canonical types, values)
// are dropped, and types must still be spelled as builtin, pointer, array or
// named references.
func FromAST(f *ast.File, module, text string) (*File, error) {
	doc := &File{
		Schema:    SchemaVersion,
		Path:      f.Path,
		Module:    module,
		Interface: f.IsInterface,
		Source:    text,
	}
	var e encoder
	for _, u := range f.Uses {
		doc.Uses = append(doc.Uses, Decl{
			Kind: DeclUse, Name: u.Name, Span: wireSpan(u.Span), Public: u.Public,
			Alias: u.Alias, AliasSpan: wireSpan(u.AliasSpan), Local: u.IsLocal,
		})
	}
	for _, t := range f.Types {
		doc.Types = append(doc.Types, e.decl(t))
	}
	for _, v := range f.Vars {
		doc.Vars = append(doc.Vars, e.decl(v))
	}
	for _, fn := range f.Functions {
		doc.Funcs = append(doc.Funcs, e.decl(fn))
	}
	for _, av := range f.ArrayValues {
		doc.ArrayValues = append(doc.ArrayValues, e.decl(av))
	}
	if e.err != nil {
		return nil, e.err
	}
	return doc, nil
}

func wireSpan(s source.Span) Span {
	return Span{Start: s.Start, End: s.End}
}

// encoder keeps the first error so the walk itself stays linear.
type encoder struct {
	err error
}

func (e *encoder) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: "+format, append([]any{ErrMalformed}, args...)...)
	}
}

func (e *encoder) decl(d ast.Decl) Decl {
	b := d.Base()
	out := Decl{Name: b.Name, Span: wireSpan(b.Span), Public: b.Public}
	switch d := d.(type) {
	case *ast.VarDecl:
		out.Kind = DeclVar
		out.Type = e.typeRef(d.Type)
		out.Init = e.expr(d.Init)
		out.Incremental = d.Incremental
	case *ast.FunctionDecl:
		out.Kind = DeclFunc
		e.signature(&out, d)
		out.StructName = d.StructName
		out.MemberName = d.MemberName
		if d.Body != nil {
			out.Body = e.stmt(d.Body)
		}
	case *ast.AliasTypeDecl:
		out.Kind = DeclAlias
		out.Type = e.typeRef(d.RefType)
	case *ast.StructTypeDecl:
		out.Kind = DeclStruct
		if !d.IsStruct {
			out.Kind = DeclUnion
		}
		for _, m := range d.Members {
			out.Members = append(out.Members, e.decl(m))
		}
	case *ast.EnumTypeDecl:
		out.Kind = DeclEnum
		out.Type = e.typeRef(d.ImplType)
		for _, c := range d.Constants {
			out.Constants = append(out.Constants, Decl{
				Kind: DeclConstant, Name: c.Name, Span: wireSpan(c.Span), Public: c.Public,
				Init: e.expr(c.Init),
			})
		}
	case *ast.FunctionTypeDecl:
		out.Kind = DeclFuncType
		e.signature(&out, d.Func)
	case *ast.ArrayValueDecl:
		out.Kind = DeclArrayValue
		out.Value = e.expr(d.Value)
	default:
		e.fail("cannot encode %s %q", d.Kind(), b.Name)
	}
	return out
}

func (e *encoder) signature(out *Decl, fn *ast.FunctionDecl) {
	out.Type = e.typeRef(fn.ReturnType)
	out.Variadic = fn.Variadic
	for _, a := range fn.Args {
		out.Args = append(out.Args, e.decl(a))
	}
}

func (e *encoder) typeRef(q ast.QualType) *TypeRef {
	if q.IsNull() {
		e.fail("null type")
		return nil
	}
	out := &TypeRef{
		Const:    q.IsConst(),
		Volatile: q.IsVolatile(),
		Local:    q.Quals&ast.QualLocal != 0,
	}
	t := q.T
	switch t.Class {
	case ast.ClassBuiltin:
		out.Kind = TypeBuiltin
		out.Builtin = t.Builtin.String()
	case ast.ClassPointer:
		out.Kind = TypePointer
		out.Elem = e.typeRef(t.Elem)
	case ast.ClassArray:
		out.Kind = TypeArray
		out.Elem = e.typeRef(t.Elem)
		if t.Array != nil {
			out.Size = e.expr(t.Array.Size)
			out.Incr = t.Array.Incremental
		}
	case ast.ClassUnresolved:
		out.Kind = TypeNamed
		out.Pkg = t.Ref.Pkg
		out.Name = t.Ref.Name
		out.PkgSpan = wireSpan(t.Ref.PkgSpan)
		out.NameSpan = wireSpan(t.Ref.NameSpan)
	default:
		e.fail("cannot encode %s type %s", t.Class, t)
	}
	return out
}

func (e *encoder) exprs(list []ast.Expr) []Expr {
	out := make([]Expr, 0, len(list))
	for _, x := range list {
		if w := e.expr(x); w != nil {
			out = append(out, *w)
		}
	}
	return out
}

func (e *encoder) expr(x ast.Expr) *Expr {
	if x == nil {
		return nil
	}
	out := &Expr{Span: wireSpan(x.Span())}
	switch x := x.(type) {
	case *ast.IntegerLiteral:
		out.Kind, out.Int = ExprInt, x.Value
	case *ast.FloatLiteral:
		out.Kind, out.Float = ExprFloat, x.Value
	case *ast.BoolLiteral:
		out.Kind, out.Bool = ExprBool, x.Value
	case *ast.CharLiteral:
		out.Kind, out.Int = ExprChar, uint64(x.Value)
	case *ast.StringLiteral:
		out.Kind, out.Str = ExprString, x.Value
	case *ast.NilExpr:
		out.Kind = ExprNil
	case *ast.IdentifierExpr:
		out.Kind, out.Name = ExprIdent, x.Name
	case *ast.TypeExpr:
		out.Kind, out.Type = ExprType, e.typeRef(x.QT)
	case *ast.CallExpr:
		out.Kind, out.X, out.Items = ExprCall, e.expr(x.Fn), e.exprs(x.Args)
	case *ast.InitListExpr:
		out.Kind, out.Items = ExprInitList, e.exprs(x.Values())
	case *ast.BinaryOperator:
		out.Kind, out.Op = ExprBinary, x.Op.String()
		out.X, out.Y = e.expr(x.LHS), e.expr(x.RHS)
	case *ast.ConditionalOperator:
		out.Kind, out.Cond = ExprCond, e.expr(x.Cond)
		out.X, out.Y = e.expr(x.LHS), e.expr(x.RHS)
	case *ast.UnaryOperator:
		out.Kind, out.Op, out.X = ExprUnary, x.Op.String(), e.expr(x.Operand)
	case *ast.BuiltinExpr:
		out.Kind, out.Name, out.X = ExprBuiltin, x.Builtin.String(), e.expr(x.Arg)
	case *ast.ArraySubscriptExpr:
		out.Kind, out.X, out.Y = ExprSubscript, e.expr(x.Base), e.expr(x.Index)
	case *ast.MemberExpr:
		out.Kind, out.X, out.Name = ExprMember, e.expr(x.Base), x.Member
		out.NameSpan = wireSpan(x.MemberSpan)
	case *ast.ParenExpr:
		out.Kind, out.X = ExprParen, e.expr(x.Inner)
	case *ast.CastExpr:
		out.Kind, out.Type, out.X = ExprCast, e.typeRef(x.DestType), e.expr(x.Inner)
	default:
		e.fail("cannot encode %s expression", x.Kind())
	}
	return out
}

func (e *encoder) stmts(list []ast.Stmt) []Stmt {
	out := make([]Stmt, 0, len(list))
	for _, s := range list {
		if w := e.stmt(s); w != nil {
			out = append(out, *w)
		}
	}
	return out
}

func (e *encoder) stmt(s ast.Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Span: wireSpan(s.Span())}
	switch s := s.(type) {
	case *ast.ReturnStmt:
		out.Kind, out.X = StmtReturn, e.expr(s.Value)
	case *ast.ExprStmt:
		out.Kind, out.X = StmtExpr, e.expr(s.X)
	case *ast.DeclStmt:
		v := e.decl(s.Var)
		out.Kind, out.Var = StmtDecl, &v
	case *ast.IfStmt:
		out.Kind, out.X = StmtIf, e.expr(s.Cond)
		out.Then, out.Else = e.stmt(s.Then), e.stmt(s.Else)
	case *ast.WhileStmt:
		out.Kind, out.X, out.Body = StmtWhile, e.expr(s.Cond), e.stmt(s.Body)
	case *ast.DoStmt:
		out.Kind, out.X, out.Body = StmtDo, e.expr(s.Cond), e.stmt(s.Body)
	case *ast.ForStmt:
		out.Kind, out.Init, out.X = StmtFor, e.stmt(s.Init), e.expr(s.Cond)
		out.Incr, out.Body = e.expr(s.Incr), e.stmt(s.Body)
	case *ast.SwitchStmt:
		out.Kind, out.X, out.Stmts = StmtSwitch, e.expr(s.Cond), e.stmts(s.Cases)
	case *ast.CaseStmt:
		out.Kind, out.X, out.Stmts = StmtCase, e.expr(s.Value), e.stmts(s.Body)
	case *ast.DefaultStmt:
		out.Kind, out.Stmts = StmtDefault, e.stmts(s.Body)
	case *ast.BreakStmt:
		out.Kind = StmtBreak
	case *ast.ContinueStmt:
		out.Kind = StmtContinue
	case *ast.CompoundStmt:
		out.Kind, out.Stmts = StmtCompound, e.stmts(s.Stmts)
	default:
		e.fail("cannot encode %s statement", s.Kind())
	}
	return out
}
