package symbols

import (
	"fmt"

	"c2sema/internal/ast"
)

// Status classifies the outcome of a lookup.
type Status uint8

const (
	StatusNotFound Status = iota
	// StatusFound: объявление текущего модуля или локальная переменная.
	StatusFound
	// StatusExternal: объявление другого модуля, видимое через use.
	StatusExternal
	// StatusAmbiguous: несколько use-пакетов дают одно и то же имя.
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not-found"
	case StatusFound:
		return "found"
	case StatusExternal:
		return "external"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// ScopeResult is the outcome of a symbol lookup. Decl is set for Found and
// External, Candidates for Ambiguous.
type ScopeResult struct {
	Decl       ast.Decl
	Status     Status
	Package    *ast.Module // модуль, из которого пришёл Decl
	Candidates []ast.Decl
}

// Ok reports whether the lookup produced exactly one declaration.
func (r ScopeResult) Ok() bool {
	return r.Status == StatusFound || r.Status == StatusExternal
}

// IsExternal reports whether the declaration belongs to another module.
func (r ScopeResult) IsExternal() bool {
	return r.Status == StatusExternal
}
