package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"c2sema/internal/ast"
	"c2sema/internal/source"
	"c2sema/internal/types"
)

func TestDumpFile(t *testing.T) {
	tc := ast.NewTypeContext()
	i32 := tc.Builtin(types.KindInt32)
	mod := ast.NewModule("app", false)

	lit := &ast.IntegerLiteral{ExprBase: ast.ExprBase{Loc: source.Span{Start: 20, End: 21}}, Value: 7}
	lit.SetType(i32)
	ret := &ast.ReturnStmt{StmtBase: ast.StmtBase{Loc: source.Span{Start: 30, End: 39}}, Value: lit}
	f := &ast.File{
		Path: "main.c2",
		Uses: []*ast.UseDecl{{DeclBase: ast.DeclBase{Name: "utils"}, Alias: "u"}},
		Vars: []*ast.VarDecl{{DeclBase: ast.DeclBase{Name: "limit", Public: true}, Type: i32}},
		Functions: []*ast.FunctionDecl{{
			DeclBase:   ast.DeclBase{Name: "main", Public: true},
			ReturnType: i32,
			Body:       &ast.CompoundStmt{Stmts: []ast.Stmt{ret}},
		}},
	}
	mod.AddFile(f)

	var buf bytes.Buffer
	if err := DumpFile(&buf, f, nil); err != nil {
		t.Fatalf("DumpFile: %v", err)
	}
	want := strings.Join([]string{
		"File main.c2 (module app)",
		"├─ Use utils as u @[0,0)",
		"├─ Var(global) limit: int32 public @[0,0)",
		"└─ Func main int32 () public @[0,0)",
		"   └─ Compound @[0,0)",
		"      └─ Return @[30,39)",
		"         └─ IntegerLiteral 7 : int32",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("dump mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestDumpModuleSkipsInterfaces(t *testing.T) {
	mod := ast.NewModule("lib", true)
	mod.AddFile(&ast.File{Path: "lib.c2i", IsInterface: true})
	mod.AddFile(&ast.File{Path: "impl.c2"})

	var buf bytes.Buffer
	if err := DumpModule(&buf, mod, nil, false); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	if strings.Contains(buf.String(), "lib.c2i") || !strings.Contains(buf.String(), "impl.c2") {
		t.Fatalf("interface files are skipped without lib:\n%s", buf.String())
	}
	buf.Reset()
	if err := DumpModule(&buf, mod, nil, true); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	if !strings.Contains(buf.String(), "lib.c2i") {
		t.Fatalf("lib dumps interface files:\n%s", buf.String())
	}
}
