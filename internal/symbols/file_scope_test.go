package symbols

import (
	"testing"

	"github.com/go-test/deep"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/types"
)

func newModule(name string, decls ...ast.Decl) *ast.Module {
	m := ast.NewModule(name, false)
	f := &ast.File{Path: name + ".c2"}
	for _, d := range decls {
		d.Base().Module = name
		switch d := d.(type) {
		case *ast.VarDecl:
			f.Vars = append(f.Vars, d)
		case *ast.FunctionDecl:
			f.Functions = append(f.Functions, d)
		default:
			f.Types = append(f.Types, d)
		}
	}
	m.AddFile(f)
	return m
}

func span(n uint32) source.Span {
	return source.Span{Start: n, End: n + 1}
}

func TestFindSymbolTiers(t *testing.T) {
	tc := ast.NewTypeContext()
	own := newModule("app", &ast.VarDecl{DeclBase: ast.DeclBase{Name: "count"}, Type: tc.Builtin(types.KindInt32)})
	shared := &ast.VarDecl{DeclBase: ast.DeclBase{Name: "count", Public: true}, Type: tc.Builtin(types.KindInt32)}
	lib := newModule("lib", shared, &ast.VarDecl{DeclBase: ast.DeclBase{Name: "limit", Public: true}})
	other := newModule("other", &ast.VarDecl{DeclBase: ast.DeclBase{Name: "limit", Public: true}})

	eng := diag.NewEngine(nil, diag.EngineOptions{})
	fs := NewFileScope(own, []*ast.Module{own, lib, other}, eng, tc)
	fs.AddPackage("lib", lib, true)

	if res := fs.FindSymbol("count"); res.Status != StatusFound || res.Decl.Base().Module != "app" {
		t.Fatalf("own module must win, got %+v", res)
	}
	if res := fs.FindSymbol("limit"); res.Status != StatusExternal || res.Package != lib {
		t.Fatalf("want external from lib, got %+v", res)
	}

	fs.AddPackage("other", other, true)
	res := fs.FindSymbol("limit")
	if res.Status != StatusAmbiguous || len(res.Candidates) != 2 {
		t.Fatalf("want ambiguous with 2 candidates, got %+v", res)
	}
	if res := fs.FindSymbol("missing"); res.Status != StatusNotFound || res.Decl != nil {
		t.Fatalf("want not found, got %+v", res)
	}
	if eng.Bag().Len() != 0 {
		t.Fatalf("lookups must not report, got %v", eng.Bag().Codes())
	}
}

func TestFindSymbolInPackage(t *testing.T) {
	own := newModule("app")
	hidden := &ast.VarDecl{DeclBase: ast.DeclBase{Name: "secret"}}
	lib := newModule("lib", hidden)
	fs := NewFileScope(own, []*ast.Module{own, lib}, diag.NewEngine(nil, diag.EngineOptions{}), ast.NewTypeContext())

	if res := fs.FindSymbolInPackage("lib", "secret"); res.Status != StatusNotFound || res.Package != nil {
		t.Fatalf("package not used yet, got %+v", res)
	}
	fs.AddPackage("l", lib, false)
	res := fs.FindSymbolInPackage("l", "secret")
	if res.Status != StatusExternal || res.Decl != hidden {
		t.Fatalf("want external secret, got %+v", res)
	}
	if res := fs.FindSymbol("secret"); res.Status != StatusNotFound {
		t.Fatalf("non-local package must not be searched unqualified, got %+v", res)
	}
	if fs.FindAnyPackage("lib") != lib || fs.FindPackage("lib") != nil || fs.FindPackage("l") != lib {
		t.Fatalf("package lookup mismatch")
	}
}

func TestCheckTypeDiagnostics(t *testing.T) {
	tc := ast.NewTypeContext()
	private := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "Priv"}, RefType: tc.Builtin(types.KindInt8)}
	variable := &ast.VarDecl{DeclBase: ast.DeclBase{Name: "v"}}
	own := newModule("app", private, variable)
	libType := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "Handle"}, RefType: tc.Builtin(types.KindInt32)}
	lib := newModule("lib", libType)

	cases := []struct {
		name   string
		qt     ast.QualType
		public bool
		want   []diag.Code
	}{
		{"unknown type", tc.Unresolved("", "Nope", span(0), span(1)), false, []diag.Code{diag.SemaUnknownType}},
		{"unknown package", tc.Unresolved("zz", "T", span(0), span(3)), false, []diag.Code{diag.SemaUnknownPackage}},
		{"not a type", tc.Pointer(tc.Unresolved("", "v", span(0), span(1))), false, []diag.Code{diag.SemaNotAType}},
		{"not public", tc.Unresolved("lib", "Handle", span(0), span(4)), false, []diag.Code{diag.SemaSymbolNotPublic}},
		{"private in public", tc.Unresolved("", "Priv", span(0), span(1)), true, []diag.Code{diag.SemaPublicUsesPrivate}},
		{"ok", tc.Unresolved("", "Priv", span(0), span(1)), false, []diag.Code{}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			eng := diag.NewEngine(nil, diag.EngineOptions{})
			fs := NewFileScope(own, []*ast.Module{own, lib}, eng, tc)
			fs.AddPackage("lib", lib, false)
			errs := fs.CheckType(tt.qt, tt.public)
			if errs != len(tt.want) {
				t.Fatalf("want %d errors, got %d", len(tt.want), errs)
			}
			if diff := deep.Equal(eng.Bag().Codes(), tt.want); diff != nil {
				t.Fatalf("codes: %v", diff)
			}
		})
	}
	if !private.Used {
		t.Fatalf("a bound type must be marked used")
	}
}

func TestResolveCanonicalsIdempotent(t *testing.T) {
	tc := ast.NewTypeContext()
	alias := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "Num"}, RefType: tc.Builtin(types.KindUInt16)}
	own := newModule("app", alias)
	eng := diag.NewEngine(nil, diag.EngineOptions{})
	fs := NewFileScope(own, []*ast.Module{own}, eng, tc)

	qt := tc.Pointer(tc.Unresolved("", "Num", span(0), span(1))).WithQuals(ast.QualConst)
	if errs := fs.CheckType(qt, false); errs != 0 {
		t.Fatalf("check: %v", eng.Bag().Codes())
	}
	first := fs.ResolveCanonicals(alias, qt, true)
	if !qt.HasCanonicalType() || first.T.Class != ast.ClassPointer || first.T.Elem.Builtin() != types.KindUInt16 || !first.IsConst() {
		t.Fatalf("unexpected canonical %s", first)
	}
	again := fs.ResolveCanonicals(alias, qt, true)
	if again != first {
		t.Fatalf("re-resolution changed the result: %s vs %s", first, again)
	}
	if eng.Bag().Len() != 0 {
		t.Fatalf("re-resolution must not report, got %v", eng.Bag().Codes())
	}
	if again.T != tc.Pointer(tc.Builtin(types.KindUInt16)).T {
		t.Fatalf("canonical pointers must be interned")
	}
}

func TestResolveCanonicalsAliasCycle(t *testing.T) {
	tc := ast.NewTypeContext()
	a := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "A"}, RefType: tc.Unresolved("", "B", span(0), span(1))}
	b := &ast.AliasTypeDecl{DeclBase: ast.DeclBase{Name: "B"}, RefType: tc.Unresolved("", "A", span(2), span(3))}
	own := newModule("app", a, b)
	eng := diag.NewEngine(nil, diag.EngineOptions{})
	fs := NewFileScope(own, []*ast.Module{own}, eng, tc)
	fs.CheckType(a.RefType, false)
	fs.CheckType(b.RefType, false)

	got := fs.ResolveCanonicals(a, a.DeclaredType(), true)
	if !got.IsNull() {
		t.Fatalf("cycle must not resolve, got %s", got)
	}
	if diff := deep.Equal(eng.Bag().Codes(), []diag.Code{diag.SemaCircularType}); diff != nil {
		t.Fatalf("codes: %v", diff)
	}
}
