package astwire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/vmihailenco/msgpack/v5"

	"c2sema/internal/ast"
	"c2sema/internal/source"
)

func sampleDoc() *File {
	i32 := &TypeRef{Kind: TypeBuiltin, Builtin: "i32"}
	return &File{
		Path:   "main.c2",
		Module: "app",
		Source: "module app;\n",
		Uses:   []Decl{{Kind: DeclUse, Name: "utils", Alias: "u", Span: Span{Start: 1, End: 6}}},
		Types: []Decl{
			{Kind: DeclEnum, Name: "Color", Type: &TypeRef{Kind: TypeBuiltin, Builtin: "u8"}, Constants: []Decl{
				{Kind: DeclConstant, Name: "Red"},
				{Kind: DeclConstant, Name: "Green", Init: &Expr{Kind: ExprInt, Int: 4}},
			}},
			{Kind: DeclStruct, Name: "Point", Public: true, Members: []Decl{
				{Kind: DeclVar, Name: "x", Type: i32},
				{Kind: DeclUnion, Members: []Decl{{Kind: DeclVar, Name: "raw", Type: i32}}},
			}},
		},
		Vars: []Decl{{
			Kind: DeclVar, Name: "table",
			Type: &TypeRef{Kind: TypeArray, Elem: &TypeRef{Kind: TypeNamed, Pkg: "u", Name: "Entry"}, Incr: true},
		}},
		Funcs: []Decl{{
			Kind: DeclFunc, Name: "main", Public: true, Type: i32,
			Args: []Decl{{Kind: DeclVar, Name: "argc", Type: i32}},
			Body: &Stmt{Kind: StmtCompound, Span: Span{Start: 20, End: 40}, Stmts: []Stmt{
				{Kind: StmtIf, X: &Expr{Kind: ExprBinary, Op: "<", X: &Expr{Kind: ExprIdent, Name: "argc"}, Y: &Expr{Kind: ExprInt, Int: 2}},
					Then: &Stmt{Kind: StmtReturn, X: &Expr{Kind: ExprInt, Int: 1}}},
				{Kind: StmtReturn, X: &Expr{Kind: ExprUnary, Op: "-", X: &Expr{Kind: ExprInt, Int: 1}}},
			}},
		}},
		ArrayValues: []Decl{{Kind: DeclArrayValue, Name: "table", Value: initListValue()}},
	}
}

func initListValue() *Expr {
	return &Expr{Kind: ExprInitList, Items: []Expr{{Kind: ExprString, Str: "a"}, {Kind: ExprNil}}}
}

func TestBuildAssignsFileAndBackReferences(t *testing.T) {
	data, err := Marshal(sampleDoc())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	f, err := Build(doc, source.FileID(7), ast.NewTypeContext())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if f.Uses[0].Span.File != 7 || f.Uses[0].Alias != "u" || f.Uses[0].Module != "app" {
		t.Fatalf("use decl: %+v", f.Uses[0])
	}
	color, ok := f.Types[0].(*ast.EnumTypeDecl)
	if !ok {
		t.Fatalf("want enum first, got %T", f.Types[0])
	}
	for _, c := range color.Constants {
		if c.Enum != color {
			t.Fatalf("constant %s must point back at its enum", c.Name)
		}
	}
	point := f.Types[1].(*ast.StructTypeDecl)
	nested, ok := point.Members[1].(*ast.StructTypeDecl)
	if !ok || nested.IsStruct || nested.IsGlobal {
		t.Fatalf("nested union: %+v", point.Members[1])
	}
	if m := point.Members[0].(*ast.VarDecl); m.VarKind != ast.VarMember {
		t.Fatalf("member kind: %s", m.VarKind)
	}
	table := f.Vars[0]
	if !table.Type.T.IsArray() || !table.Type.T.Array.Incremental || table.Type.T.Elem.T.Ref.Pkg != "u" {
		t.Fatalf("incremental array of u.Entry, got %s", table.Type)
	}
	main := f.Functions[0]
	if main.Args[0].VarKind != ast.VarParam || len(main.Body.Stmts) != 2 {
		t.Fatalf("function: %+v", main)
	}
	if f.ArrayValues[0].Value.(*ast.InitListExpr).Values()[1].Kind() != ast.ExprNil {
		t.Fatalf("array value items")
	}
}

func TestFromASTRoundTrip(t *testing.T) {
	want := sampleDoc()
	want.Schema = SchemaVersion
	f, err := Build(want, 0, ast.NewTypeContext())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got, err := FromAST(f, want.Module, want.Source)
	if err != nil {
		t.Fatalf("FromAST: %v", err)
	}
	// "i32" и "u8" записываются каноническими именами.
	want.Funcs[0].Type = &TypeRef{Kind: TypeBuiltin, Builtin: "int32"}
	want.Funcs[0].Args[0].Type = want.Funcs[0].Type
	want.Types[0].Type = &TypeRef{Kind: TypeBuiltin, Builtin: "uint8"}
	want.Types[1].Members[0].Type = want.Funcs[0].Type
	want.Types[1].Members[1].Members[0].Type = want.Funcs[0].Type
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("round trip: %v", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*File)
		want   error
	}{
		{"unknown decl", func(f *File) { f.Types[0].Kind = "trait" }, ErrUnknownKind},
		{"unknown expr", func(f *File) { f.ArrayValues[0].Value.Items[0].Kind = "lambda" }, ErrUnknownKind},
		{"unknown stmt", func(f *File) { f.Funcs[0].Body.Stmts[1].Kind = "goto" }, ErrUnknownKind},
		{"unknown operator", func(f *File) { f.Funcs[0].Body.Stmts[0].X.Op = "<=>" }, ErrUnknownKind},
		{"unknown builtin type", func(f *File) { f.Vars[0].Type.Elem = &TypeRef{Kind: TypeBuiltin, Builtin: "int128"} }, ErrUnknownKind},
		{"missing type", func(f *File) { f.Vars[0].Type = nil }, ErrMalformed},
		{"function in types", func(f *File) { f.Types = append(f.Types, f.Funcs[0]) }, ErrMalformed},
		{"body is not compound", func(f *File) { f.Funcs[0].Body = &Stmt{Kind: StmtBreak} }, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := sampleDoc()
			tc.mutate(doc)
			_, err := Build(doc, 0, ast.NewTypeContext())
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&File{Schema: SchemaVersion + 1, Path: "x.c2"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Read(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("want ErrSchema, got %v", err)
	}
}
