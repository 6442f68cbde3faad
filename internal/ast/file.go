package ast

import (
	"c2sema/internal/source"
)

// File is one translation unit. Declaration lists keep source order.
type File struct {
	Path        string
	Source      source.FileID
	Module      *Module
	IsInterface bool // библиотечный интерфейс: только объявления

	Uses        []*UseDecl
	Types       []Decl
	Vars        []*VarDecl
	Functions   []*FunctionDecl
	ArrayValues []*ArrayValueDecl
}

// Module is a named set of files analysed together.
type Module struct {
	Name       string
	Files      []*File
	IsExternal bool

	symbols map[string]Decl
}

func NewModule(name string, external bool) *Module {
	return &Module{Name: name, IsExternal: external}
}

// AddFile appends f and sets its back reference.
func (m *Module) AddFile(f *File) {
	f.Module = m
	m.Files = append(m.Files, f)
	m.symbols = nil
}

// Symbol returns the top-level declaration called name, or nil. Enum
// constants are top-level names too. The first declaration wins when the
// loader hands over duplicates.
func (m *Module) Symbol(name string) Decl {
	if m.symbols == nil {
		m.buildIndex()
	}
	return m.symbols[name]
}

func (m *Module) buildIndex() {
	m.symbols = make(map[string]Decl)
	add := func(d Decl) {
		name := d.Base().Name
		if name == "" {
			return
		}
		if _, ok := m.symbols[name]; !ok {
			m.symbols[name] = d
		}
	}
	for _, f := range m.Files {
		for _, d := range f.Types {
			add(d)
			if ed, ok := d.(*EnumTypeDecl); ok {
				for _, c := range ed.Constants {
					add(c)
				}
			}
		}
		for _, v := range f.Vars {
			add(v)
		}
		for _, fn := range f.Functions {
			if !fn.IsStructFunc() {
				add(fn)
			}
		}
	}
}

// FileOf returns the file of m that declares d at top level, or nil.
func (m *Module) FileOf(d Decl) *File {
	for _, f := range m.Files {
		if f.Declares(d) {
			return f
		}
	}
	return nil
}

// Declares reports whether d is one of f's top-level declarations (enum
// constants count as their enum's).
func (f *File) Declares(d Decl) bool {
	if ec, ok := d.(*EnumConstantDecl); ok && ec.Enum != nil {
		d = ec.Enum
	}
	switch d := d.(type) {
	case *VarDecl:
		for _, v := range f.Vars {
			if v == d {
				return true
			}
		}
	case *FunctionDecl:
		for _, fn := range f.Functions {
			if fn == d {
				return true
			}
		}
	default:
		for _, t := range f.Types {
			if t == d {
				return true
			}
		}
	}
	return false
}
