package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeDriver represents top-level CLI operations (load, analyse, report).
	ScopeDriver Scope = iota + 1
	// ScopeModule represents per-module processing.
	ScopeModule
	// ScopePhase represents one analysis phase of a module.
	ScopePhase
	// ScopeFile represents one file inside a phase.
	ScopeFile
	// ScopeDecl represents a single declaration (most detailed).
	ScopeDecl
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeModule:
		return "module"
	case ScopePhase:
		return "phase"
	case ScopeFile:
		return "file"
	case ScopeDecl:
		return "decl"
	default:
		return "unknown"
	}
}

// Subject names the part of the project an event is about. Module and phase
// spans fill Module; per-file spans also carry the phase they run in.
type Subject struct {
	Module string
	Phase  string
	File   string
}

// IsZero reports whether no field of s is set.
func (s Subject) IsZero() bool {
	return s == Subject{}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time // wall-clock timestamp
	Seq      uint64    // global sequence number (monotonic)
	Kind     Kind      // event kind
	Scope    Scope     // granularity level
	SpanID   uint64    // unique span identifier
	ParentID uint64    // parent span (0 if root)
	GID      uint64    // goroutine ID (for concurrent spans)
	Name     string    // e.g., "load", "resolve-types", "file"
	Subject  Subject
	Errors   int  // ошибки, найденные за время спана
	Counted  bool // Errors заполнено (только у KindSpanEnd)
	Detail   string
}
