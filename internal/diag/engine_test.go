package diag

import (
	"testing"

	"github.com/go-test/deep"

	"c2sema/internal/source"
)

func TestEngineStickyFlag(t *testing.T) {
	eng := NewEngine(nil, EngineOptions{})
	if eng.HasErrorOccurred() {
		t.Fatalf("fresh engine must be clean")
	}
	eng.Report(New(SevWarning, SemaUnusedVariable, source.Span{}, "unused"))
	if eng.HasErrorOccurred() {
		t.Fatalf("warning must not set the error flag")
	}
	eng.Report(New(SevError, SemaUnknownType, source.Span{}, "unknown"))
	if !eng.HasErrorOccurred() {
		t.Fatalf("error must set the flag")
	}
	eng.Bag().Filter(func(Diagnostic) bool { return false })
	if !eng.HasErrorOccurred() {
		t.Fatalf("flag must stay set after the bag is emptied")
	}
	if eng.HasFatalOccurred() {
		t.Fatalf("no fatal reported yet")
	}
	ReportFatal(eng, SemaScopeTooDeep, source.Span{}, "too deep").Emit()
	if !eng.HasFatalOccurred() || eng.ErrorCount() != 2 {
		t.Fatalf("want fatal flag and 2 errors, got fatal=%v errors=%d", eng.HasFatalOccurred(), eng.ErrorCount())
	}
}

func TestEngineKeepsDuplicatesInOrder(t *testing.T) {
	eng := NewEngine(NewBag(10), EngineOptions{})
	sp := source.Span{File: 0, Start: 1, End: 2}
	eng.Report(New(SevError, SemaVarSelfInit, sp, "x"))
	eng.Report(New(SevError, SemaVarSelfInit, sp, "x"))
	eng.Report(New(SevError, SemaUnknownType, sp, "t"))

	want := []Code{SemaVarSelfInit, SemaVarSelfInit, SemaUnknownType}
	if diff := deep.Equal(eng.Bag().Codes(), want); diff != nil {
		t.Fatalf("codes mismatch: %v", diff)
	}
}

func TestEngineWarningPolicy(t *testing.T) {
	eng := NewEngine(nil, EngineOptions{WarningsAsErrors: true})
	eng.Report(New(SevWarning, SemaUnusedType, source.Span{}, "unused"))
	if !eng.HasErrorOccurred() || eng.Bag().Items()[0].Severity != SevError {
		t.Fatalf("warning must be promoted to error")
	}

	quiet := NewEngine(nil, EngineOptions{NoWarnings: true})
	quiet.Report(New(SevWarning, SemaUnusedType, source.Span{}, "unused"))
	if quiet.Bag().Len() != 0 || quiet.WarningCount() != 0 {
		t.Fatalf("warnings must be dropped")
	}
}

func TestEngineTee(t *testing.T) {
	eng := NewEngine(nil, EngineOptions{})
	mirror := NewBag(0)
	eng.Tee(BagReporter{Bag: mirror})
	ReportError(eng, SemaNoMember, source.Span{}, "no member").
		WithNote(source.Span{Start: 3, End: 4}, "struct declared here").
		Emit()
	if mirror.Len() != 1 || len(mirror.Items()[0].Notes) != 1 {
		t.Fatalf("tee must receive the diagnostic with its note, got %+v", mirror.Items())
	}
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(SemaUnknownType, source.Span{Start: 5, End: 6}, "b")) {
		t.Fatalf("first add must succeed")
	}
	b.Add(New(SevWarning, SemaUnusedType, source.Span{Start: 1, End: 2}, "a"))
	if b.Add(NewError(SemaNotAType, source.Span{}, "c")) {
		t.Fatalf("limit must be enforced")
	}
	b.Sort()
	if got := b.Items()[0].Message; got != "a" {
		t.Fatalf("want a first, got %s", got)
	}
	if b.Count(SevError) != 1 || !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("unexpected counts")
	}
}

func TestErrorfFormatsAndCounts(t *testing.T) {
	d := Errorf(ProjUseCycle, source.Span{}, "module %q is part of a use cycle: %s", "a", "a -> b -> a")
	if d.Message != `module "a" is part of a use cycle: a -> b -> a` || !d.IsError() {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if New(SevWarning, SemaUnusedType, source.Span{}, "unused").IsError() {
		t.Fatalf("warning must not count as an error")
	}
}
