package ui

import (
	"strings"
	"testing"

	"c2sema/internal/driver"
)

func TestProgressModelTracksModules(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("demo", []string{"utils", "app"}, events).(*progressModel)

	m.applyEvent(driver.Event{Stage: driver.StageLoad, Status: driver.StatusWorking})
	if m.stageLabel != "loading" {
		t.Fatalf("stage label: %q", m.stageLabel)
	}
	m.applyEvent(driver.Event{Module: "utils", Stage: driver.StageAnalyse, Status: driver.StatusWorking})
	if got := m.percent(); got != 0.25 {
		t.Fatalf("percent after start: %v", got)
	}
	m.applyEvent(driver.Event{Module: "utils", Stage: driver.StageAnalyse, Status: driver.StatusError, Errors: 3})
	m.applyEvent(driver.Event{Module: "app", Stage: driver.StageAnalyse, Status: driver.StatusSkipped})
	if got := m.percent(); got != 1 {
		t.Fatalf("percent at end: %v", got)
	}
	m.applyEvent(driver.Event{Module: "unknown", Status: driver.StatusDone})

	view := m.View()
	for _, want := range []string{"3 errors", "skipped", "utils", "app"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a_long_module_name", 10, "a_long_..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
