package driver

import (
	"encoding/json"
	"fmt"

	"c2sema/internal/diag"
	"c2sema/internal/observ"
	"c2sema/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Project string               `json:"project,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
	Totals  []observ.PhaseReport `json:"totals,omitempty"`
}

// appendTimingDiagnostic stores the timer report as an info diagnostic whose
// note carries the JSON payload. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, project string, timer *observ.Timer) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	payload := timingPayload{
		Kind:    "check",
		Project: project,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
		Totals:  report.Totals,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS),
		Primary:  source.Span{},
		Notes:    []diag.Note{{Span: source.Span{}, Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
