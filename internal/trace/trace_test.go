package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func TestRingTracerRespectsLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase, nil)
	ctx := WithTracer(context.Background(), ring)
	tr := FromContext(ctx)

	phase := Begin(tr, ScopePhase, "resolve-types", Parent(ctx), Subject{Module: "app"})
	file := Begin(tr, ScopeFile, "file", phase.ID(), Subject{Module: "app", Phase: "resolve-types", File: "a.c2"})
	file.End("")
	Point(tr, ScopeDecl, "decl", phase.ID(), Subject{}, "skipped")
	phase.WithErrors(0).End("ok")

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("want begin+end of the phase only, got %d events", len(events))
	}
	end := events[1]
	if events[0].Kind != KindSpanBegin || end.Kind != KindSpanEnd || !end.Counted || end.Errors != 0 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if end.Subject.Module != "app" {
		t.Fatalf("end event must keep the module, got %+v", end.Subject)
	}
	if file.ID() != 0 {
		t.Fatalf("filtered spans have no id")
	}
}

func TestRingKeepsPhasesAtErrorLevel(t *testing.T) {
	var out bytes.Buffer
	stream := NewStreamTracer(&out, LevelError, FormatText)
	ring := NewRingTracer(8, LevelError, stream)

	mod := Begin(ring, ScopeModule, "module", 0, Subject{Module: "app"})
	Begin(ring, ScopeFile, "file", mod.ID(), Subject{File: "a.c2"}).End("")
	mod.WithErrors(3).End("")

	if out.Len() != 0 {
		t.Fatalf("error level must not stream, got:\n%s", out.String())
	}
	var got []string
	for _, ev := range ring.Snapshot() {
		got = append(got, ev.Kind.String()+" "+ev.Name)
	}
	if diff := deep.Equal(got, []string{"begin module", "end module"}); diff != nil {
		t.Fatalf("retained events: %v", diff)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug, nil)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeDriver, name, 0, Subject{}, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("ring must keep the newest events in order, got %+v", events)
	}
}

func TestBothModeForwardsToStream(t *testing.T) {
	var out bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &out, Format: FormatText})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ring, ok := tr.(*RingTracer)
	if !ok {
		t.Fatalf("both mode must keep a ring, got %T", tr)
	}
	Point(tr, ScopeModule, "stop", 0, Subject{Module: "app"}, "2 errors")
	if len(ring.Snapshot()) != 1 || !strings.Contains(out.String(), "• stop [app] (2 errors)") {
		t.Fatalf("event must reach ring and stream, got:\n%s", out.String())
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatText)
	sp := Begin(st, ScopeFile, "file", 0, Subject{Module: "app", Phase: "resolve-vars", File: "main.c2"})
	sp.WithErrors(2).End("done")

	out := buf.String()
	if !strings.Contains(out, "→ file [app resolve-vars main.c2]") ||
		!strings.Contains(out, "← file [app resolve-vars main.c2] (done) errors=2") {
		t.Fatalf("unexpected text output:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(st, ScopePhase, "resolve-vars", 0, Subject{Module: "app"}).WithErrors(0).End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	var begin, end map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &begin); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok := begin["errors"]; ok {
		t.Fatalf("begin event must not carry errors: %v", begin)
	}
	if end["module"] != "app" || end["errors"] != float64(0) {
		t.Fatalf("end event must carry module and a zero error count: %v", end)
	}
}

func TestParseHelpers(t *testing.T) {
	if lvl, err := ParseLevel("detail"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("invalid level must fail")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if formatFor(FormatAuto, "run.ndjson") != FormatNDJSON || formatFor(FormatAuto, "-") != FormatText {
		t.Fatalf("auto format must follow the output extension")
	}
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr.Enabled() {
		t.Fatalf("off level must give a disabled tracer")
	}
}
