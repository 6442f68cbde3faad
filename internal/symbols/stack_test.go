package symbols

import (
	"errors"
	"testing"

	"c2sema/internal/ast"
)

func TestStackDepthBound(t *testing.T) {
	s := NewStack(nil)
	for i := 0; i < MaxScopeDepth; i++ {
		if err := s.Enter(DeclScope); err != nil {
			t.Fatalf("enter %d: %v", i, err)
		}
		s.AddDecl(&ast.VarDecl{DeclBase: ast.DeclBase{Name: "v"}})
	}
	if err := s.Enter(DeclScope); !errors.Is(err, ErrScopeTooDeep) {
		t.Fatalf("want ErrScopeTooDeep, got %v", err)
	}
	if s.Depth() != MaxScopeDepth {
		t.Fatalf("failed Enter must not change depth, got %d", s.Depth())
	}
	s.Reset()
	if s.Depth() != 0 || s.FindLocal("v") != nil {
		t.Fatalf("reset must drop frames")
	}
	if err := s.Enter(FnScope); err != nil {
		t.Fatalf("enter after reset: %v", err)
	}
}

func TestStackLookupAndControl(t *testing.T) {
	s := NewStack(nil)
	outer := &ast.VarDecl{DeclBase: ast.DeclBase{Name: "x"}}
	inner := &ast.VarDecl{DeclBase: ast.DeclBase{Name: "x"}}

	if err := s.Enter(FnScope | DeclScope); err != nil {
		t.Fatal(err)
	}
	s.AddDecl(outer)
	if s.AllowBreak() || s.AllowContinue() {
		t.Fatalf("function scope allows neither break nor continue")
	}
	if err := s.Enter(BreakScope | ContinueScope | ControlScope | DeclScope); err != nil {
		t.Fatal(err)
	}
	if err := s.Enter(BreakScope | SwitchScope); err != nil {
		t.Fatal(err)
	}
	if !s.AllowBreak() || !s.AllowContinue() || !s.InSwitch() {
		t.Fatalf("switch in loop allows break and continue")
	}
	s.AddDecl(inner)
	if res := s.FindSymbol("x"); res.Decl != inner || res.Status != StatusFound {
		t.Fatalf("innermost declaration must win, got %+v", res)
	}
	if popped := s.Exit(); len(popped) != 1 || popped[0] != inner {
		t.Fatalf("exit must return the frame's locals, got %v", popped)
	}
	if s.FindLocal("x") != outer {
		t.Fatalf("outer declaration must be visible again")
	}
	s.Exit()
	if s.AllowBreak() {
		t.Fatalf("break not allowed after leaving loop")
	}
	if res := s.FindSymbol("nope"); res.Status != StatusNotFound {
		t.Fatalf("want not found, got %+v", res)
	}
}
