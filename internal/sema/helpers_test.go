package sema

import (
	"context"
	"testing"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/types"
)

// builder creates AST nodes with distinct spans, the way the loader would.
type builder struct {
	tc  *ast.TypeContext
	pos uint32
}

func newBuilder() *builder {
	return &builder{tc: ast.NewTypeContext()}
}

func (b *builder) span() source.Span {
	b.pos += 4
	return source.Span{Start: b.pos, End: b.pos + 2}
}

func (b *builder) kind(k types.Kind) ast.QualType { return b.tc.Builtin(k) }
func (b *builder) i32() ast.QualType             { return b.tc.Builtin(types.KindInt32) }
func (b *builder) void() ast.QualType            { return b.tc.Builtin(types.KindVoid) }

func (b *builder) named(name string) ast.QualType {
	return b.tc.Unresolved("", name, source.NoSpan, b.span())
}

func (b *builder) global(name string, qt ast.QualType, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, VarKind: ast.VarGlobal, Type: qt, Init: init}
}

func (b *builder) local(name string, qt ast.QualType, init ast.Expr) *ast.DeclStmt {
	v := &ast.VarDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, VarKind: ast.VarLocal, Type: qt, Init: init}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: v.Span}, Var: v}
}

func (b *builder) num(v uint64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{ExprBase: ast.ExprBase{Loc: b.span()}, Value: v}
}

func (b *builder) ident(name string) *ast.IdentifierExpr {
	return &ast.IdentifierExpr{ExprBase: ast.ExprBase{Loc: b.span()}, Name: name}
}

func (b *builder) member(base ast.Expr, name string) *ast.MemberExpr {
	return &ast.MemberExpr{ExprBase: ast.ExprBase{Loc: b.span()}, Base: base, Member: name, MemberSpan: b.span()}
}

func (b *builder) binary(op types.BinaryOp, lhs, rhs ast.Expr) *ast.BinaryOperator {
	return &ast.BinaryOperator{ExprBase: ast.ExprBase{Loc: b.span()}, Op: op, LHS: lhs, RHS: rhs}
}

func (b *builder) call(fn ast.Expr, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{ExprBase: ast.ExprBase{Loc: b.span()}, Fn: fn, Args: args}
}

func (b *builder) expr(e ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Loc: e.Span()}, X: e}
}

func (b *builder) ret(e ast.Expr) *ast.ReturnStmt {
	return &ast.ReturnStmt{StmtBase: ast.StmtBase{Loc: b.span()}, Value: e}
}

func (b *builder) block(stmts ...ast.Stmt) *ast.CompoundStmt {
	return &ast.CompoundStmt{StmtBase: ast.StmtBase{Loc: b.span()}, Stmts: stmts}
}

func (b *builder) function(name string, ret ast.QualType, args []*ast.VarDecl, body ...ast.Stmt) *ast.FunctionDecl {
	return &ast.FunctionDecl{
		DeclBase:   ast.DeclBase{Name: name, Span: b.span(), Public: true},
		ReturnType: ret,
		Args:       args,
		Body:       b.block(body...),
	}
}

func (b *builder) param(name string, qt ast.QualType) *ast.VarDecl {
	return &ast.VarDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, VarKind: ast.VarParam, Type: qt}
}

func (b *builder) structType(name string, members ...*ast.VarDecl) *ast.StructTypeDecl {
	s := &ast.StructTypeDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, IsStruct: true, IsGlobal: true}
	for _, m := range members {
		m.VarKind = ast.VarMember
		s.Members = append(s.Members, m)
	}
	return s
}

func (b *builder) enumType(name string, impl ast.QualType, consts ...string) *ast.EnumTypeDecl {
	ed := &ast.EnumTypeDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, ImplType: impl}
	for _, c := range consts {
		ed.Constants = append(ed.Constants, &ast.EnumConstantDecl{DeclBase: ast.DeclBase{Name: c, Span: b.span()}, Enum: ed})
	}
	return ed
}

func (b *builder) alias(name string, ref ast.QualType) *ast.AliasTypeDecl {
	return &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, RefType: ref}
}

func (b *builder) list(values ...ast.Expr) *ast.InitListExpr {
	return ast.NewInitList(b.span(), values)
}

func (b *builder) addrOf(e ast.Expr) *ast.UnaryOperator {
	return &ast.UnaryOperator{ExprBase: ast.ExprBase{Loc: b.span()}, Op: types.UnaryAddrOf, Operand: e}
}

func (b *builder) arrayValue(name string, value ast.Expr) *ast.ArrayValueDecl {
	return &ast.ArrayValueDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, Value: value}
}

func (b *builder) use(name, alias string) *ast.UseDecl {
	return &ast.UseDecl{DeclBase: ast.DeclBase{Name: name, Span: b.span()}, Alias: alias, AliasSpan: b.span()}
}

// addFile adds a file with decls to mod, sorting them into the lists the
// loader would.
func addFile(mod *ast.Module, path string, decls ...ast.Decl) *ast.File {
	f := &ast.File{Path: path}
	for _, d := range decls {
		d.Base().Module = mod.Name
		switch d := d.(type) {
		case *ast.UseDecl:
			f.Uses = append(f.Uses, d)
		case *ast.VarDecl:
			f.Vars = append(f.Vars, d)
		case *ast.FunctionDecl:
			f.Functions = append(f.Functions, d)
		case *ast.ArrayValueDecl:
			f.ArrayValues = append(f.ArrayValues, d)
		default:
			f.Types = append(f.Types, d)
		}
	}
	mod.AddFile(f)
	return f
}

type result struct {
	eng    *diag.Engine
	errors int
	ma     *ModuleAnalyser
}

func analyse(t *testing.T, b *builder, mod *ast.Module, others ...*ast.Module) result {
	t.Helper()
	eng := diag.NewEngine(nil, diag.EngineOptions{})
	all := append([]*ast.Module{mod}, others...)
	ma := NewModuleAnalyser(mod, all, eng, Options{Types: b.tc})
	return result{eng: eng, errors: ma.Analyse(context.Background()), ma: ma}
}

func (r result) codes() []diag.Code {
	return r.eng.Bag().Codes()
}
