package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // выбор по расширению файла
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// formatFor resolves FormatAuto: .ndjson and .json outputs get NDJSON,
// everything else text.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".json") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time     string `json:"time"`
		Seq      uint64 `json:"seq"`
		Kind     string `json:"kind"`
		Scope    string `json:"scope"`
		SpanID   uint64 `json:"span_id,omitempty"`
		ParentID uint64 `json:"parent_id,omitempty"`
		GID      uint64 `json:"gid,omitempty"`
		Name     string `json:"name"`
		Module   string `json:"module,omitempty"`
		Phase    string `json:"phase,omitempty"`
		File     string `json:"file,omitempty"`
		Errors   *int   `json:"errors,omitempty"`
		Detail   string `json:"detail,omitempty"`
	}

	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Module:   ev.Subject.Module,
		Phase:    ev.Subject.Phase,
		File:     ev.Subject.File,
		Detail:   ev.Detail,
	}
	if ev.Counted {
		j.Errors = &ev.Errors
	}

	data, err := json.Marshal(j)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText formats an event as human-readable text.
// Format: #seq scope [indent]→/← name [module phase file] (detail) errors=N
func formatText(ev *Event) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%06d %-6s ", ev.Seq, ev.Scope)

	// отступ по глубине scope: driver без отступа, decl: самый глубокий
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ") // →
	case KindSpanEnd:
		sb.WriteString("← ") // ←
	case KindPoint:
		sb.WriteString("• ") // •
	}

	sb.WriteString(ev.Name)

	if !ev.Subject.IsZero() {
		parts := make([]string, 0, 3)
		for _, p := range []string{ev.Subject.Module, ev.Subject.Phase, ev.Subject.File} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(parts, " "))
	}

	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}

	if ev.Counted {
		fmt.Fprintf(&sb, " errors=%d", ev.Errors)
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
