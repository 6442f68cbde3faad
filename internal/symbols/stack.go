package symbols

import (
	"errors"

	"c2sema/internal/ast"
)

// MaxScopeDepth bounds lexical nesting inside one function.
const MaxScopeDepth = 15

// ErrScopeTooDeep is returned by Enter when MaxScopeDepth frames are active.
var ErrScopeTooDeep = errors.New("scope nesting too deep")

// ScopeFlags describe what a frame allows.
type ScopeFlags uint16

const (
	FnScope ScopeFlags = 1 << iota
	DeclScope
	BreakScope
	ContinueScope
	ControlScope
	SwitchScope
)

type frame struct {
	flags ScopeFlags
	decls []*ast.VarDecl
}

// Stack holds the lexical frames of the function being analysed (tiers 1
// and 2) on top of a FileScope (tiers 3 and 4). Frames live in a fixed array.
type Stack struct {
	global *FileScope
	frames [MaxScopeDepth]frame
	depth  int
}

func NewStack(global *FileScope) *Stack {
	return &Stack{global: global}
}

// Global returns the file scope below the frames.
func (s *Stack) Global() *FileScope {
	return s.global
}

// Enter pushes a frame. At full depth it returns ErrScopeTooDeep and leaves
// the frames untouched.
func (s *Stack) Enter(flags ScopeFlags) error {
	if s.depth >= MaxScopeDepth {
		return ErrScopeTooDeep
	}
	f := &s.frames[s.depth]
	f.flags = flags
	f.decls = f.decls[:0]
	s.depth++
	return nil
}

// Exit pops the innermost frame and returns the variables it declared. The
// returned slice is only valid until the next Enter.
func (s *Stack) Exit() []*ast.VarDecl {
	if s.depth == 0 {
		panic("symbols: Exit on empty scope stack")
	}
	s.depth--
	return s.frames[s.depth].decls
}

// AddDecl declares a local in the innermost frame.
func (s *Stack) AddDecl(d *ast.VarDecl) {
	if s.depth == 0 {
		panic("symbols: AddDecl without an active scope")
	}
	f := &s.frames[s.depth-1]
	f.decls = append(f.decls, d)
}

// FindLocal searches the active frames, innermost first.
func (s *Stack) FindLocal(name string) *ast.VarDecl {
	for i := s.depth - 1; i >= 0; i-- {
		decls := s.frames[i].decls
		for j := len(decls) - 1; j >= 0; j-- {
			if decls[j].Name == name {
				return decls[j]
			}
		}
	}
	return nil
}

// FindSymbol searches the four tiers: block frames, the function frame, the
// module of the file, then local packages.
func (s *Stack) FindSymbol(name string) ScopeResult {
	if d := s.FindLocal(name); d != nil {
		return ScopeResult{Decl: d, Status: StatusFound}
	}
	if s.global == nil {
		return ScopeResult{Status: StatusNotFound}
	}
	return s.global.FindSymbol(name)
}

// AllowBreak reports whether an enclosing frame accepts break.
func (s *Stack) AllowBreak() bool {
	return s.has(BreakScope)
}

// AllowContinue reports whether an enclosing frame accepts continue.
func (s *Stack) AllowContinue() bool {
	return s.has(ContinueScope)
}

// InSwitch reports whether the innermost breakable construct is a switch.
func (s *Stack) InSwitch() bool {
	for i := s.depth - 1; i >= 0; i-- {
		flags := s.frames[i].flags
		if flags&SwitchScope != 0 {
			return true
		}
		if flags&ContinueScope != 0 {
			return false
		}
	}
	return false
}

func (s *Stack) has(flag ScopeFlags) bool {
	for i := s.depth - 1; i >= 0; i-- {
		if s.frames[i].flags&flag != 0 {
			return true
		}
		if s.frames[i].flags&FnScope != 0 {
			break
		}
	}
	return false
}

// Depth returns the number of active frames.
func (s *Stack) Depth() int {
	return s.depth
}

// Reset drops every frame.
func (s *Stack) Reset() {
	for i := 0; i < s.depth; i++ {
		s.frames[i].decls = s.frames[i].decls[:0]
	}
	s.depth = 0
}
