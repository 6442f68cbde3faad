package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerAggregatesPhasesAcrossModules(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	for _, name := range []string{"app/resolve-types", "app/check-functions", "utils/resolve-types"} {
		idx := tm.Begin(name)
		tm.End(idx, "0 errors")
	}
	load := tm.Begin("load")
	tm.End(load, "")

	report := tm.Report()
	if report.TotalMS != 4 {
		t.Fatalf("total: want 4ms, got %v", report.TotalMS)
	}
	want := []PhaseReport{
		{Name: "resolve-types", DurationMS: 2},
		{Name: "check-functions", DurationMS: 1},
	}
	if diff := deep.Equal(report.Totals, want); diff != nil {
		t.Fatalf("totals: %v", diff)
	}
	if !strings.Contains(tm.Summary(), "app/resolve-types") {
		t.Fatalf("summary lists every run:\n%s", tm.Summary())
	}
}

func TestTimerIgnoresUnknownIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "late")
	if len(tm.Phases()) != 0 || len(tm.Report().Phases) != 0 {
		t.Fatalf("End with an unknown index must be a no-op")
	}
}
