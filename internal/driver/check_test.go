package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"c2sema/internal/astwire"
	"c2sema/internal/diag"
	"c2sema/internal/observ"
	"c2sema/internal/project"
)

var i32 = &astwire.TypeRef{Kind: astwire.TypeBuiltin, Builtin: "i32"}

func sp(start uint32) astwire.Span { return astwire.Span{Start: start, End: start + 3} }

func retStmt(at uint32, x *astwire.Expr) astwire.Stmt {
	return astwire.Stmt{Kind: astwire.StmtReturn, Span: sp(at), X: x}
}

func body(at uint32, stmts ...astwire.Stmt) *astwire.Stmt {
	return &astwire.Stmt{Kind: astwire.StmtCompound, Span: sp(at), Stmts: stmts}
}

func intLit(at uint32, v uint64) *astwire.Expr {
	return &astwire.Expr{Kind: astwire.ExprInt, Span: sp(at), Int: v}
}

func ident(at uint32, name string) *astwire.Expr {
	return &astwire.Expr{Kind: astwire.ExprIdent, Span: sp(at), Name: name}
}

func utilsDoc(ret *astwire.Expr) *astwire.File {
	return &astwire.File{
		Path:   "utils.c2",
		Module: "utils",
		Funcs: []astwire.Decl{{
			Kind: astwire.DeclFunc, Name: "helper", Span: sp(10), Public: true, Type: i32,
			Body: body(20, retStmt(24, ret)),
		}},
	}
}

func appDoc() *astwire.File {
	call := &astwire.Expr{Kind: astwire.ExprCall, Span: sp(60), X: &astwire.Expr{
		Kind: astwire.ExprMember, Span: sp(60), X: ident(60, "utils"), Name: "helper", NameSpan: sp(66),
	}}
	return &astwire.File{
		Path:   "app.c2",
		Module: "app",
		Uses:   []astwire.Decl{{Kind: astwire.DeclUse, Name: "utils", Span: sp(4)}},
		Funcs: []astwire.Decl{
			{Kind: astwire.DeclFunc, Name: "main", Span: sp(40), Public: true, Type: i32, Body: body(50, retStmt(55, call))},
			{Kind: astwire.DeclFunc, Name: "spare", Span: sp(80), Type: i32, Body: body(90, retStmt(94, intLit(98, 0)))},
		},
	}
}

// writeProject writes every document next to a manifest listing the modules
// in the given order and returns the loaded manifest.
func writeProject(t *testing.T, analysis string, modules []string, docs map[string]*astwire.File) *project.Manifest {
	t.Helper()
	dir := t.TempDir()
	var sb strings.Builder
	sb.WriteString("[project]\nname = \"demo\"\n")
	sb.WriteString(analysis)
	for _, name := range modules {
		sb.WriteString("\n[[module]]\nname = \"" + name + "\"\nfiles = [\"" + name + ".c2ast\"]\n")
	}
	for name, doc := range docs {
		data, err := astwire.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".c2ast"), data, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}

func codes(bag *diag.Bag) []diag.Code {
	return bag.Codes()
}

func TestCheckAnalysesDependenciesFirst(t *testing.T) {
	m := writeProject(t, "", []string{"app", "utils"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": utilsDoc(intLit(28, 1)),
	})
	res, err := Check(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", codes(res.Bag))
	}
	if diff := deep.Equal(res.Order, []string{"utils", "app"}); diff != nil {
		t.Fatalf("order: %v", diff)
	}
	if diff := deep.Equal(res.Analysed, res.Order); diff != nil || res.Stopped {
		t.Fatalf("analysed: %v stopped=%v", diff, res.Stopped)
	}
	if !slices.Contains(codes(res.Bag), diag.SemaUnusedFunction) {
		t.Fatalf("want unused warning for spare, got %v", codes(res.Bag))
	}
	if res.Warnings == 0 {
		t.Fatalf("warnings not counted")
	}
}

func TestCheckStopsAfterFailingModule(t *testing.T) {
	m := writeProject(t, "", []string{"app", "utils"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": utilsDoc(ident(28, "missing")),
	})
	res, err := Check(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Stopped || !res.HasErrors() {
		t.Fatalf("want stopped run with errors, got %+v", res)
	}
	if diff := deep.Equal(res.Analysed, []string{"utils"}); diff != nil {
		t.Fatalf("analysed: %v", diff)
	}
	got := codes(res.Bag)
	if !slices.Contains(got, diag.SemaUndeclaredVarUse) || slices.Contains(got, diag.SemaUnusedFunction) {
		t.Fatalf("codes: %v", got)
	}
}

func TestCheckReportsLoadErrorsWithoutAnalysis(t *testing.T) {
	wrong := utilsDoc(intLit(28, 1))
	wrong.Module = "other"
	m := writeProject(t, "", []string{"app", "utils", "net"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": wrong,
	})
	res, err := Check(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := []diag.Code{diag.ProjInvalidModule, diag.IOLoadFileError}
	if diff := deep.Equal(codes(res.Bag), want); diff != nil {
		t.Fatalf("codes: %v", diff)
	}
	if len(res.Analysed) != 0 {
		t.Fatalf("analysis must not run after load errors: %v", res.Analysed)
	}
	for _, d := range res.Bag.Items() {
		if f := res.FileSet.Get(d.Primary.File); f == nil || filepath.Base(f.Path) != project.ManifestName {
			t.Fatalf("load errors must point at the manifest, got %+v", d.Primary)
		}
	}
}

func TestCheckReportsMalformedDocuments(t *testing.T) {
	broken := utilsDoc(intLit(28, 1))
	broken.Funcs[0].Body.Stmts[0].Kind = "goto"
	m := writeProject(t, "", []string{"utils"}, map[string]*astwire.File{"utils": broken})
	res, err := Check(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if diff := deep.Equal(codes(res.Bag), []diag.Code{diag.IOLoadFileError}); diff != nil {
		t.Fatalf("codes: %v", diff)
	}
	if msg := res.Bag.Items()[0].Message; !strings.Contains(msg, "malformed") {
		t.Fatalf("message: %s", msg)
	}
	if len(res.Modules) != 1 || len(res.Modules[0].Files) != 0 {
		t.Fatalf("malformed file must be left out")
	}
}

func TestCheckReportsUseCycles(t *testing.T) {
	a := &astwire.File{Path: "a.c2", Module: "a", Uses: []astwire.Decl{{Kind: astwire.DeclUse, Name: "b", Span: sp(1)}}}
	b := &astwire.File{Path: "b.c2", Module: "b", Uses: []astwire.Decl{{Kind: astwire.DeclUse, Name: "a", Span: sp(1)}}}
	m := writeProject(t, "", []string{"a", "b"}, map[string]*astwire.File{"a": a, "b": b})
	res, err := Check(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if diff := deep.Equal(codes(res.Bag), []diag.Code{diag.ProjUseCycle, diag.ProjUseCycle}); diff != nil {
		t.Fatalf("codes: %v", diff)
	}
	if len(res.Analysed) != 0 {
		t.Fatalf("cyclic projects are not analysed")
	}
}

func TestCheckTimingsAndPrintHooks(t *testing.T) {
	analysis := "[analysis]\nprint-types = true\ncheck-unused = false\n"
	m := writeProject(t, analysis, []string{"app", "utils"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": utilsDoc(intLit(28, 1)),
	})
	var out bytes.Buffer
	res, err := Check(context.Background(), m, Options{Timings: true, Output: &out})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	items := res.Bag.Items()
	last := items[len(items)-1]
	if last.Code != diag.ObsTimings || len(last.Notes) != 1 || !strings.Contains(last.Notes[0].Msg, `"kind":"check"`) {
		t.Fatalf("timings diagnostic: %+v", last)
	}
	phases := res.Timer.Phases()
	if phases[0].Name != "load" || !slices.ContainsFunc(phases, func(p observ.Phase) bool { return p.Name == "utils/resolve-types" }) {
		t.Fatalf("phases: %+v", phases)
	}
	if slices.Contains(codes(res.Bag), diag.SemaUnusedFunction) {
		t.Fatalf("check-unused = false must skip the audit")
	}
	if !strings.Contains(out.String(), "// utils: utils.c2") || !strings.Contains(out.String(), "// app: app.c2") {
		t.Fatalf("print hooks output:\n%s", out.String())
	}
}

func TestCheckWarningsAsErrors(t *testing.T) {
	m := writeProject(t, "", []string{"app", "utils"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": utilsDoc(intLit(28, 1)),
	})
	res, err := Check(context.Background(), m, Options{WarningsAsErrors: true})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.HasErrors() || res.Warnings != 0 {
		t.Fatalf("unused warning must become an error: errors=%d warnings=%d", res.Errors, res.Warnings)
	}
}

type recordSink struct{ events []Event }

func (s *recordSink) OnEvent(ev Event) { s.events = append(s.events, ev) }

func TestCheckEmitsProgress(t *testing.T) {
	m := writeProject(t, "", []string{"app", "utils"}, map[string]*astwire.File{
		"app":   appDoc(),
		"utils": utilsDoc(ident(28, "missing")),
	})
	sink := &recordSink{}
	if _, err := Check(context.Background(), m, Options{Progress: sink}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	type step struct {
		Module string
		Stage  Stage
		Status Status
	}
	got := make([]step, len(sink.events))
	for i, ev := range sink.events {
		got[i] = step{ev.Module, ev.Stage, ev.Status}
	}
	want := []step{
		{"", StageLoad, StatusWorking},
		{"", StageLoad, StatusDone},
		{"utils", StageAnalyse, StatusQueued},
		{"app", StageAnalyse, StatusQueued},
		{"utils", StageAnalyse, StatusWorking},
		{"utils", StageAnalyse, StatusError},
		{"app", StageAnalyse, StatusSkipped},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("events: %v", diff)
	}
}
