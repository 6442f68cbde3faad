package diag

import (
	"testing"

	"c2sema/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/testdata/golden/sample.c2", []byte("a\nb\n"), 0)
	otherFile := fs.Add("/workspace/lib/helper.c2", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevError,
			Code:     SemaVarSelfInit,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: otherFile, Start: 0, End: 0}, Msg: "declared here"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     SemaUnusedVariable,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "note SEM3007 helper.c2:1:1 declared here\n" +
		"error SEM3007 sample.c2:1:1 first line second\n" +
		"note SEM3007 sample.c2:2:1 note line\n" +
		"warning SEM3200 sample.c2:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsKeepsOrder(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	file := fs.Add("/workspace/a.c2", []byte("one\ntwo\n"), 0)

	diags := []Diagnostic{
		{Severity: SevError, Code: SemaUnknownType, Message: "second", Primary: source.Span{File: file, Start: 4, End: 7}},
		{Severity: SevError, Code: SemaUnknownType, Message: "first", Primary: source.Span{File: file, Start: 0, End: 3}},
	}
	expected := "error SEM3020 a.c2:2:1 second\n" +
		"error SEM3020 a.c2:1:1 first"
	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{SemaUnknownPackage, "SEM3002"},
		{SemaAliasIsPackage, "SEM3003"},
		{SemaUninitializedConst, "SEM3039"},
		{SemaUnusedStructMember, "SEM3203"},
		{IOLoadFileError, "IO4001"},
		{ProjInvalidModule, "PRJ5001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Fatalf("%d: want %s, got %s", tc.code, tc.want, got)
		}
	}
	if SemaScopeTooDeep.Title() == UnknownCode.Title() {
		t.Fatalf("scope depth code has no description")
	}
}
