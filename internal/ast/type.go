package ast

import (
	"fmt"
	"strings"

	"c2sema/internal/source"
	"c2sema/internal/types"
)

// TypeClass enumerates the shapes a Type can take.
type TypeClass uint8

const (
	ClassBuiltin TypeClass = iota
	ClassPointer
	ClassArray
	ClassUnresolved
	ClassAlias
	ClassStruct
	ClassEnum
	ClassFunction
	ClassPackage
)

func (c TypeClass) String() string {
	switch c {
	case ClassBuiltin:
		return "builtin"
	case ClassPointer:
		return "pointer"
	case ClassArray:
		return "array"
	case ClassUnresolved:
		return "unresolved"
	case ClassAlias:
		return "alias"
	case ClassStruct:
		return "struct"
	case ClassEnum:
		return "enum"
	case ClassFunction:
		return "function"
	case ClassPackage:
		return "package"
	default:
		return fmt.Sprintf("TypeClass(%d)", c)
	}
}

// Qualifiers is a bit set of type qualifiers.
type Qualifiers uint8

const (
	QualConst Qualifiers = 1 << iota
	QualVolatile
	QualLocal
)

// ArrayInfo is shared between an array type and its canonical form, so a size
// evaluated after canonicalisation is visible through both.
type ArrayInfo struct {
	Size        Expr // nil for incremental arrays and unsized []
	Length      uint64
	Evaluated   bool
	Failed      bool // размер уже признан ошибочным, повторно не проверяется
	Incremental bool
}

// TypeRef is the unresolved form of a named type: "Name" or "pkg.Name".
type TypeRef struct {
	Pkg      string
	Name     string
	PkgSpan  source.Span
	NameSpan source.Span
	// Decl is filled by type checking.
	Decl TypeDecl
}

func (r *TypeRef) String() string {
	if r.Pkg == "" {
		return r.Name
	}
	return r.Pkg + "." + r.Name
}

// Type is a compact descriptor for any supported type. Which fields are
// meaningful depends on Class.
type Type struct {
	Class   TypeClass
	Builtin types.Kind // ClassBuiltin
	Elem    QualType   // ClassPointer, ClassArray
	Array   *ArrayInfo // ClassArray
	Ref     *TypeRef   // ClassUnresolved
	Decl    TypeDecl   // ClassAlias, ClassStruct, ClassEnum, ClassFunction
	Module  *Module    // ClassPackage

	canonical QualType
	fn        *FunctionDecl // ClassFunction owned by a FunctionDecl
}

// SetCanonical records the resolved canonical form. Setting it twice with a
// different type is a bug in canonical resolution.
func (t *Type) SetCanonical(q QualType) {
	if t.canonical.T != nil && !SameType(t.canonical, q) {
		panic(fmt.Sprintf("ast: canonical type of %s set twice", t))
	}
	t.canonical = q
}

// CanonicalType returns the canonical form, or a null QualType if unresolved.
func (t *Type) CanonicalType() QualType {
	return t.canonical
}

func (t *Type) IsBuiltin() bool  { return t.Class == ClassBuiltin }
func (t *Type) IsPointer() bool  { return t.Class == ClassPointer }
func (t *Type) IsArray() bool    { return t.Class == ClassArray }
func (t *Type) IsStruct() bool   { return t.Class == ClassStruct }
func (t *Type) IsEnum() bool     { return t.Class == ClassEnum }
func (t *Type) IsFunction() bool { return t.Class == ClassFunction }
func (t *Type) IsVoid() bool     { return t.Class == ClassBuiltin && t.Builtin == types.KindVoid }

// StructDecl returns the struct declaration of a struct type.
func (t *Type) StructDecl() *StructTypeDecl {
	if t == nil || t.Class != ClassStruct {
		return nil
	}
	sd, _ := t.Decl.(*StructTypeDecl)
	return sd
}

// EnumDecl returns the enum declaration of an enum type.
func (t *Type) EnumDecl() *EnumTypeDecl {
	if t == nil || t.Class != ClassEnum {
		return nil
	}
	ed, _ := t.Decl.(*EnumTypeDecl)
	return ed
}

// FunctionDecl returns the signature owner of a function type.
func (t *Type) FunctionDecl() *FunctionDecl {
	if t == nil || t.Class != ClassFunction {
		return nil
	}
	switch d := t.Decl.(type) {
	case *FunctionTypeDecl:
		return d.Func
	}
	return t.fn
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Class {
	case ClassBuiltin:
		return t.Builtin.String()
	case ClassPointer:
		return t.Elem.String() + "*"
	case ClassArray:
		switch {
		case t.Array == nil:
			return t.Elem.String() + "[]"
		case t.Array.Incremental:
			return t.Elem.String() + "[+]"
		case t.Array.Evaluated:
			return fmt.Sprintf("%s[%d]", t.Elem, t.Array.Length)
		case t.Array.Size != nil:
			return t.Elem.String() + "[?]"
		default:
			return t.Elem.String() + "[]"
		}
	case ClassUnresolved:
		return t.Ref.String()
	case ClassAlias, ClassStruct, ClassEnum:
		return t.Decl.Base().Name
	case ClassFunction:
		fn := t.FunctionDecl()
		if fn == nil {
			return "func"
		}
		return fn.Signature()
	case ClassPackage:
		if t.Module != nil {
			return "package " + t.Module.Name
		}
		return "package"
	}
	return "<?>"
}

// QualType is a possibly-unresolved type reference plus qualifiers.
type QualType struct {
	T     *Type
	Quals Qualifiers
}

func (q QualType) IsNull() bool     { return q.T == nil }
func (q QualType) IsConst() bool    { return q.Quals&QualConst != 0 }
func (q QualType) IsVolatile() bool { return q.Quals&QualVolatile != 0 }

// HasCanonicalType reports whether canonical resolution already ran.
func (q QualType) HasCanonicalType() bool {
	return q.T != nil && q.T.canonical.T != nil
}

// Canonical returns the canonical form with q's own qualifiers merged in.
// It returns a null QualType when resolution has not happened yet.
func (q QualType) Canonical() QualType {
	if !q.HasCanonicalType() {
		return QualType{}
	}
	c := q.T.canonical
	c.Quals |= q.Quals
	return c
}

func (q QualType) WithQuals(quals Qualifiers) QualType {
	q.Quals |= quals
	return q
}

func (q QualType) WithoutQuals() QualType {
	q.Quals = 0
	return q
}

// Builtin returns the builtin kind of a canonical builtin type, KindInvalid otherwise.
func (q QualType) Builtin() types.Kind {
	if q.T == nil || q.T.Class != ClassBuiltin {
		return types.KindInvalid
	}
	return q.T.Builtin
}

func (q QualType) String() string {
	if q.T == nil {
		return "<null>"
	}
	var sb strings.Builder
	if q.IsConst() {
		sb.WriteString("const ")
	}
	if q.IsVolatile() {
		sb.WriteString("volatile ")
	}
	if q.Quals&QualLocal != 0 {
		sb.WriteString("local ")
	}
	sb.WriteString(q.T.String())
	return sb.String()
}

// SameType compares two canonical types. Named types compare by identity,
// pointers and arrays structurally. Top-level qualifiers are ignored, element
// qualifiers are not.
func SameType(a, b QualType) bool {
	if a.T == b.T {
		return true
	}
	if a.T == nil || b.T == nil || a.T.Class != b.T.Class {
		return false
	}
	switch a.T.Class {
	case ClassBuiltin:
		return a.T.Builtin == b.T.Builtin
	case ClassPointer:
		return a.T.Elem.Quals == b.T.Elem.Quals && SameType(a.T.Elem, b.T.Elem)
	case ClassArray:
		if a.T.Array != nil && b.T.Array != nil && a.T.Array.Evaluated && b.T.Array.Evaluated &&
			a.T.Array.Length != b.T.Array.Length {
			return false
		}
		return a.T.Elem.Quals == b.T.Elem.Quals && SameType(a.T.Elem, b.T.Elem)
	case ClassStruct, ClassEnum, ClassFunction, ClassAlias:
		return a.T.Decl == b.T.Decl && a.T.fn == b.T.fn
	case ClassPackage:
		return a.T.Module == b.T.Module
	}
	return false
}
