package sema

import (
	"fmt"

	"c2sema/internal/ast"
)

// IncrementalArrayValues collects the elements contributed to incremental
// arrays across all files of a module. Variables keep first-seen order,
// elements keep contribution order.
type IncrementalArrayValues struct {
	order  []*ast.VarDecl
	values map[*ast.VarDecl][]ast.Expr
}

func NewIncrementalArrayValues() *IncrementalArrayValues {
	return &IncrementalArrayValues{values: make(map[*ast.VarDecl][]ast.Expr)}
}

// Add appends value to the contributions of v.
func (t *IncrementalArrayValues) Add(v *ast.VarDecl, value ast.Expr) {
	if _, ok := t.values[v]; !ok {
		t.order = append(t.order, v)
	}
	t.values[v] = append(t.values[v], value)
}

// Len returns the number of distinct target variables.
func (t *IncrementalArrayValues) Len() int {
	return len(t.order)
}

// Values returns the contributions of v in order.
func (t *IncrementalArrayValues) Values(v *ast.VarDecl) []ast.Expr {
	return t.values[v]
}

// Merge installs every entry into the InitList of its variable, exactly once
// per variable, and clears the table. ResolveVars gives every incremental
// variable an empty InitList, so a missing list or an empty entry is a bug.
func (t *IncrementalArrayValues) Merge() {
	for _, v := range t.order {
		values := t.values[v]
		if len(values) == 0 {
			panic(fmt.Sprintf("sema: incremental array %s has an empty entry", v.Name))
		}
		list, ok := v.Init.(*ast.InitListExpr)
		if !ok || list == nil {
			panic(fmt.Sprintf("sema: incremental array %s has no init list", v.Name))
		}
		merged := make([]ast.Expr, len(values))
		copy(merged, values)
		list.SetValues(merged)
	}
	t.Clear()
}

func (t *IncrementalArrayValues) Clear() {
	t.order = nil
	t.values = make(map[*ast.VarDecl][]ast.Expr)
}

// StructFunctions maps structs to the struct functions declared for them
// anywhere in the module.
type StructFunctions struct {
	order []*ast.StructTypeDecl
	funcs map[*ast.StructTypeDecl][]*ast.FunctionDecl
}

func NewStructFunctions() *StructFunctions {
	return &StructFunctions{funcs: make(map[*ast.StructTypeDecl][]*ast.FunctionDecl)}
}

func (t *StructFunctions) Add(s *ast.StructTypeDecl, fn *ast.FunctionDecl) {
	if _, ok := t.funcs[s]; !ok {
		t.order = append(t.order, s)
	}
	t.funcs[s] = append(t.funcs[s], fn)
}

// Find returns the function already registered for s under member name.
func (t *StructFunctions) Find(s *ast.StructTypeDecl, member string) *ast.FunctionDecl {
	for _, fn := range t.funcs[s] {
		if fn.MemberName == member {
			return fn
		}
	}
	return nil
}

func (t *StructFunctions) Len() int {
	return len(t.order)
}

// Merge attaches the collected lists, once per struct, and clears the table.
func (t *StructFunctions) Merge() {
	for _, s := range t.order {
		funcs := t.funcs[s]
		merged := make([]*ast.FunctionDecl, len(funcs))
		copy(merged, funcs)
		s.SetStructFuncs(merged)
	}
	t.order = nil
	t.funcs = make(map[*ast.StructTypeDecl][]*ast.FunctionDecl)
}
