package ast

import (
	"sync"

	"c2sema/internal/source"
	"c2sema/internal/types"
)

type pointerKey struct {
	elem  *Type
	quals Qualifiers
}

// TypeContext creates types. Builtin types are singletons and canonical
// pointer types are interned, so the loader and the analyser can share one
// context across all modules.
type TypeContext struct {
	mu       sync.Mutex
	builtins [types.KindVoid + 1]*Type
	pointers map[pointerKey]*Type
}

func NewTypeContext() *TypeContext {
	ctx := &TypeContext{
		pointers: make(map[pointerKey]*Type),
	}
	for k := types.KindInt8; k <= types.KindVoid; k++ {
		t := &Type{Class: ClassBuiltin, Builtin: k}
		t.canonical = QualType{T: t}
		ctx.builtins[k] = t
	}
	return ctx
}

// Builtin returns the singleton type of kind k.
func (c *TypeContext) Builtin(k types.Kind) QualType {
	if k == types.KindInvalid || int(k) >= len(c.builtins) {
		return QualType{}
	}
	return QualType{T: c.builtins[k]}
}

// Pointer returns a pointer to elem. Pointers to canonical types are interned
// and canonical themselves.
func (c *TypeContext) Pointer(elem QualType) QualType {
	if !isCanonical(elem) {
		return QualType{T: &Type{Class: ClassPointer, Elem: elem}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pointerKey{elem: elem.T, quals: elem.Quals}
	if t, ok := c.pointers[key]; ok {
		return QualType{T: t}
	}
	t := &Type{Class: ClassPointer, Elem: elem}
	t.canonical = QualType{T: t}
	c.pointers[key] = t
	return QualType{T: t}
}

// Array returns a new array type. size is nil for incremental and unsized
// arrays.
func (c *TypeContext) Array(elem QualType, size Expr, incremental bool) QualType {
	return c.ArrayWithInfo(elem, &ArrayInfo{Size: size, Incremental: incremental})
}

// ArrayWithInfo builds an array type around existing size information.
func (c *TypeContext) ArrayWithInfo(elem QualType, info *ArrayInfo) QualType {
	t := &Type{Class: ClassArray, Elem: elem, Array: info}
	if isCanonical(elem) {
		t.canonical = QualType{T: t}
	}
	return QualType{T: t}
}

// Unresolved returns a named reference that type checking will bind.
func (c *TypeContext) Unresolved(pkg, name string, pkgSpan, nameSpan source.Span) QualType {
	return QualType{T: &Type{
		Class: ClassUnresolved,
		Ref:   &TypeRef{Pkg: pkg, Name: name, PkgSpan: pkgSpan, NameSpan: nameSpan},
	}}
}

// Package returns the type of an identifier naming a module.
func (c *TypeContext) Package(m *Module) QualType {
	t := &Type{Class: ClassPackage, Module: m}
	t.canonical = QualType{T: t}
	return QualType{T: t}
}

// IsCanonical reports whether q is its own canonical form.
func IsCanonical(q QualType) bool {
	return isCanonical(q)
}

func isCanonical(q QualType) bool {
	return q.T != nil && q.T.canonical.T == q.T && q.T.canonical.Quals == 0
}
