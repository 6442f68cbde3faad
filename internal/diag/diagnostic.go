package diag

import (
	"fmt"

	"c2sema/internal/source"
)

// Note points at a second location that explains the primary one, such as a
// previous definition or an ambiguous candidate.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding of the loader or the analyser.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Errorf форматирует сообщение ошибки.
func Errorf(code Code, primary source.Span, format string, args ...any) Diagnostic {
	return New(SevError, code, primary, fmt.Sprintf(format, args...))
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// IsError reports whether d counts towards the error total of a module.
func (d Diagnostic) IsError() bool {
	return d.Severity >= SevError
}
