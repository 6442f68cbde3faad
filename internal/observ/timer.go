package observ

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Phase records the duration and metadata of one analysis phase run.
type Phase struct {
	Name  string // "<module>/<phase>" для фаз анализа, иначе произвольное
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks analysis phases in the order they started.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 16), now: time.Now} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// Phases returns a copy of the recorded phases.
func (t *Timer) Phases() []Phase {
	return slices.Clone(t.phases)
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-36s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	if len(report.Totals) > 0 {
		sb.WriteString("per phase:\n")
		for _, p := range report.Totals {
			fmt.Fprintf(&sb, "  %-36s %8.2f ms\n", p.Name, p.DurationMS)
		}
	}
	fmt.Fprintf(&sb, "  %-36s %8.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	// Totals суммирует одноимённые фазы всех модулей, в порядке первого появления.
	Totals []PhaseReport `json:"totals,omitempty"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	byPhase := make(map[string]int)
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
		_, name, ok := strings.Cut(phase.Name, "/")
		if !ok {
			continue
		}
		idx, seen := byPhase[name]
		if !seen {
			idx = len(report.Totals)
			byPhase[name] = idx
			report.Totals = append(report.Totals, PhaseReport{Name: name})
		}
		report.Totals[idx].DurationMS += durationToMillis(phase.Dur)
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
