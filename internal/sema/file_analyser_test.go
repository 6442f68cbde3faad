package sema

import (
	"testing"

	"github.com/go-test/deep"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/types"
)

func TestCanonicalResolutionIsIdempotent(t *testing.T) {
	b := newBuilder()
	mod := ast.NewModule("app", false)
	point := b.structType("Point", b.global("x", b.i32(), nil))
	ref := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "PointRef", Span: b.span()}, RefType: b.tc.Pointer(b.named("Point"))}
	f := addFile(mod, "a.c2", point, ref)

	eng := diag.NewEngine(nil, diag.EngineOptions{})
	fa := NewFileAnalyser(f, []*ast.Module{mod}, eng, Options{Types: b.tc})
	if n := fa.CheckUses() + fa.ResolveTypes(); n != 0 {
		t.Fatalf("resolve types: %d errors", n)
	}
	if n := fa.ResolveTypeCanonicals(); n != 0 {
		t.Fatalf("first canonical pass: %d errors", n)
	}
	first := ref.DeclaredType().Canonical()
	if n := fa.ResolveTypeCanonicals(); n != 0 {
		t.Fatalf("second canonical pass: %d errors", n)
	}
	again := fa.Scope().ResolveCanonicals(ref, ref.RefType, true)
	if first.T != again.T || eng.Bag().Len() != 0 {
		t.Fatalf("re-resolution must be a silent no-op, got %s vs %s, %v", first, again, eng.Bag().Codes())
	}
}

func TestEnumConstantValues(t *testing.T) {
	b := newBuilder()
	mod := ast.NewModule("app", false)
	color := b.enumType("Color", b.kind(types.KindUInt8), "Red", "Green", "Blue")
	color.Constants[1].Init = b.num(10)
	small := b.enumType("Small", b.kind(types.KindInt8), "Max", "Over")
	small.Constants[0].Init = b.num(127)
	f := addFile(mod, "a.c2", color, small)

	eng := diag.NewEngine(nil, diag.EngineOptions{})
	fa := NewFileAnalyser(f, []*ast.Module{mod}, eng, Options{Types: b.tc})
	fa.CheckUses()
	fa.ResolveTypes()
	fa.ResolveTypeCanonicals()
	if n := fa.ResolveEnumConstants(); n != 1 {
		t.Fatalf("want 1 overflow error, got %d: %v", n, eng.Bag().Codes())
	}
	var got []int64
	for _, c := range color.Constants {
		if !c.Assigned {
			t.Fatalf("%s not assigned", c.Name)
		}
		got = append(got, c.Value)
	}
	if diff := deep.Equal(got, []int64{0, 10, 11}); diff != nil {
		t.Fatalf("values: %v", diff)
	}
	if diff := deep.Equal(eng.Bag().Codes(), []diag.Code{diag.SemaEnumValueOverflow}); diff != nil {
		t.Fatalf("codes: %v", diff)
	}
}

func TestArraySizesResolveAcrossFiles(t *testing.T) {
	b := newBuilder()
	mod := ast.NewModule("app", false)
	byConst := b.global("buf", b.tc.Array(b.i32(), b.ident("LIMIT"), false), nil)
	byEnum := b.global("counts", b.tc.Array(b.i32(), b.ident("Count"), false), nil)
	addFile(mod, "a.c2", byConst, byEnum)
	addFile(mod, "b.c2",
		b.global("LIMIT", b.i32().WithQuals(ast.QualConst), b.num(4)),
		b.enumType("Slot", b.i32(), "First", "Second", "Count"),
	)

	res := analyse(t, b, mod)
	if res.errors != 0 || res.eng.Bag().Len() != 0 {
		t.Fatalf("want clean analysis, got %v", res.codes())
	}
	for _, tc := range []struct {
		v    *ast.VarDecl
		want uint64
	}{{byConst, 4}, {byEnum, 2}} {
		info := tc.v.Type.Canonical().T.Array
		if !info.Evaluated || info.Length != tc.want {
			t.Fatalf("%s: want length %d, got evaluated=%v length=%d", tc.v.Name, tc.want, info.Evaluated, info.Length)
		}
	}
}

func TestGlobalDeclarationErrors(t *testing.T) {
	cases := []struct {
		name  string
		decls func(b *builder) []ast.Decl
		want  []diag.Code
	}{
		{
			name: "incremental scalar",
			decls: func(b *builder) []ast.Decl {
				v := b.global("flags", b.i32(), nil)
				v.Incremental = true
				return []ast.Decl{v}
			},
			want: []diag.Code{diag.SemaIncrementalNotArray},
		},
		{
			name: "incremental with initializer",
			decls: func(b *builder) []ast.Decl {
				v := b.global("flags", b.tc.Array(b.i32(), nil, true), ast.NewInitList(b.span(), nil))
				v.Incremental = true
				return []ast.Decl{v}
			},
			want: []diag.Code{diag.SemaIncrementalWithInit},
		},
		{
			name: "void global",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.global("nothing", b.void(), nil)}
			},
			want: []diag.Code{diag.SemaVoidVariable},
		},
		{
			name: "initializer not constant",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{
					b.global("base", b.i32(), b.num(1)),
					b.global("derived", b.i32(), b.ident("base")),
				}
			},
			want: []diag.Code{diag.SemaInitNotConstant},
		},
		{
			name: "address of a global is constant",
			decls: func(b *builder) []ast.Decl {
				addr := &ast.UnaryOperator{ExprBase: ast.ExprBase{Loc: b.span()}, Op: types.UnaryAddrOf, Operand: b.ident("base")}
				return []ast.Decl{
					b.global("base", b.i32(), b.num(1)),
					b.global("ptr", b.tc.Pointer(b.i32()), addr),
				}
			},
		},
		{
			name: "array size overflows",
			decls: func(b *builder) []ast.Decl {
				size := b.binary(types.BinaryMul, b.num(1<<62), b.num(4))
				return []ast.Decl{b.global("huge", b.tc.Array(b.i32(), size, false), nil)}
			},
			want: []diag.Code{diag.SemaConstantOutOfRange},
		},
		{
			name: "unknown package",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.use("missing", "")}
			},
			want: []diag.Code{diag.SemaUnknownPackage},
		},
		{
			name: "unknown type",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.global("p", b.named("Missing"), nil)}
			},
			want: []diag.Code{diag.SemaUnknownType},
		},
		{
			name: "private entry point",
			decls: func(b *builder) []ast.Decl {
				main := b.function("main", b.i32(), nil, b.ret(b.num(0)))
				main.Public = false
				return []ast.Decl{main}
			},
			want: []diag.Code{diag.SemaEntryPointPrivate},
		},
		{
			name: "struct contains itself",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.structType("Node", b.global("next", b.named("Node"), nil))}
			},
			want: []diag.Code{diag.SemaStructRecursion},
		},
		{
			name: "struct holds a pointer to itself",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.structType("Node", b.global("next", b.tc.Pointer(b.named("Node")), nil))}
			},
		},
		{
			name: "duplicate member",
			decls: func(b *builder) []ast.Decl {
				return []ast.Decl{b.structType("Pair", b.global("a", b.i32(), nil), b.global("a", b.i32(), nil))}
			},
			want: []diag.Code{diag.SemaDuplicateMember},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			mod := ast.NewModule("app", false)
			addFile(mod, "a.c2", tc.decls(b)...)
			res := analyse(t, b, mod)
			got := res.codes()
			if len(got) == 0 {
				got = nil
			}
			if diff := deep.Equal(got, tc.want); diff != nil {
				t.Fatalf("codes: %v", diff)
			}
			if (res.errors == 0) != (tc.want == nil) {
				t.Fatalf("error count %d does not match diagnostics %v", res.errors, got)
			}
		})
	}
}
