package ast

import (
	"fmt"
	"strings"

	"c2sema/internal/source"
)

type DeclKind uint8

const (
	DeclFunction DeclKind = iota
	DeclVar
	DeclEnumConstant
	DeclAliasType
	DeclStructType
	DeclEnumType
	DeclFunctionType
	DeclArrayValue
	DeclUse
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclVar:
		return "variable"
	case DeclEnumConstant:
		return "enum constant"
	case DeclAliasType:
		return "alias type"
	case DeclStructType:
		return "struct type"
	case DeclEnumType:
		return "enum type"
	case DeclFunctionType:
		return "function type"
	case DeclArrayValue:
		return "array value"
	case DeclUse:
		return "use"
	default:
		return fmt.Sprintf("DeclKind(%d)", k)
	}
}

// Decl is the closed set of declarations. Every implementation lives in this
// package.
type Decl interface {
	Base() *DeclBase
	Kind() DeclKind
	declNode()
}

// TypeDecl is a declaration that introduces a named type.
type TypeDecl interface {
	Decl
	DeclaredType() QualType
	typeDeclNode()
}

// DeclBase carries what every declaration has.
type DeclBase struct {
	Name   string
	Span   source.Span // позиция имени
	Public bool
	Used   bool
	Module string // имя модуля-владельца
}

func (d *DeclBase) Base() *DeclBase { return d }

// VarKind tells where a variable was declared.
type VarKind uint8

const (
	VarGlobal VarKind = iota
	VarLocal
	VarParam
	VarMember
)

func (k VarKind) String() string {
	switch k {
	case VarGlobal:
		return "global"
	case VarLocal:
		return "local"
	case VarParam:
		return "param"
	case VarMember:
		return "member"
	default:
		return fmt.Sprintf("VarKind(%d)", k)
	}
}

type VarDecl struct {
	DeclBase
	VarKind     VarKind
	Type        QualType
	Init        Expr
	Incremental bool
}

func (*VarDecl) Kind() DeclKind { return DeclVar }
func (*VarDecl) declNode()      {}

// FunctionDecl is a function or, when StructName is set, a struct function
// declared as "Struct.member".
type FunctionDecl struct {
	DeclBase
	ReturnType QualType
	Args       []*VarDecl
	Body       *CompoundStmt // nil in interface files
	Variadic   bool
	StructName string
	MemberName string

	typ *Type
}

func (*FunctionDecl) Kind() DeclKind { return DeclFunction }
func (*FunctionDecl) declNode()      {}

// IsStructFunc reports whether the function extends a struct.
func (f *FunctionDecl) IsStructFunc() bool { return f.StructName != "" }

// FunctionType returns the (canonical) function type of f.
func (f *FunctionDecl) FunctionType() QualType {
	if f.typ == nil {
		f.typ = &Type{Class: ClassFunction, fn: f}
		f.typ.canonical = QualType{T: f.typ}
	}
	return QualType{T: f.typ}
}

// MinArgs returns the number of arguments without default values.
func (f *FunctionDecl) MinArgs() int {
	n := 0
	for _, a := range f.Args {
		if a.Init != nil {
			break
		}
		n++
	}
	return n
}

// Signature renders "ret (args)".
func (f *FunctionDecl) Signature() string {
	var sb strings.Builder
	sb.WriteString(f.ReturnType.String())
	sb.WriteString(" (")
	for i, a := range f.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Type.String())
	}
	if f.Variadic {
		if len(f.Args) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	return sb.String()
}

type EnumConstantDecl struct {
	DeclBase
	Init     Expr // optional explicit value
	Value    int64
	Assigned bool
	Enum     *EnumTypeDecl // владелец, задаётся при построении дерева
}

func (*EnumConstantDecl) Kind() DeclKind { return DeclEnumConstant }
func (*EnumConstantDecl) declNode()      {}

type AliasTypeDecl struct {
	DeclBase
	RefType QualType

	typ *Type
}

func (*AliasTypeDecl) Kind() DeclKind { return DeclAliasType }
func (*AliasTypeDecl) declNode()      {}
func (*AliasTypeDecl) typeDeclNode()  {}

// DeclaredType returns the alias type; its canonical form is the canonical
// form of RefType once resolved.
func (a *AliasTypeDecl) DeclaredType() QualType {
	if a.typ == nil {
		a.typ = &Type{Class: ClassAlias, Decl: a}
	}
	return QualType{T: a.typ}
}

// StructTypeDecl is a struct or union. Members are *VarDecl or nested
// *StructTypeDecl (possibly anonymous).
type StructTypeDecl struct {
	DeclBase
	IsStruct bool // false для union
	IsGlobal bool // false для вложенных
	Members  []Decl

	typ         *Type
	structFuncs []*FunctionDecl
	funcsSet    bool
}

func (*StructTypeDecl) Kind() DeclKind { return DeclStructType }
func (*StructTypeDecl) declNode()      {}
func (*StructTypeDecl) typeDeclNode()  {}

func (s *StructTypeDecl) DeclaredType() QualType {
	if s.typ == nil {
		s.typ = &Type{Class: ClassStruct, Decl: s}
		s.typ.canonical = QualType{T: s.typ}
	}
	return QualType{T: s.typ}
}

// SetStructFuncs attaches the module-wide list of struct functions. It may be
// called once per struct.
func (s *StructTypeDecl) SetStructFuncs(funcs []*FunctionDecl) {
	if s.funcsSet {
		panic(fmt.Sprintf("ast: struct functions of %s set twice", s.Name))
	}
	s.funcsSet = true
	s.structFuncs = funcs
}

// StructFuncs returns the attached struct functions (nil before the merge).
func (s *StructTypeDecl) StructFuncs() []*FunctionDecl {
	return s.structFuncs
}

// HasStructFuncs reports whether SetStructFuncs ran.
func (s *StructTypeDecl) HasStructFuncs() bool {
	return s.funcsSet
}

// FindMember looks a member up by name, descending into anonymous nested
// structs.
func (s *StructTypeDecl) FindMember(name string) Decl {
	for _, m := range s.Members {
		if m.Base().Name == name {
			return m
		}
		if sub, ok := m.(*StructTypeDecl); ok && sub.Name == "" {
			if found := sub.FindMember(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindStructFunc looks up an attached struct function by member name.
func (s *StructTypeDecl) FindStructFunc(name string) *FunctionDecl {
	for _, fn := range s.structFuncs {
		if fn.MemberName == name {
			return fn
		}
	}
	return nil
}

type EnumTypeDecl struct {
	DeclBase
	ImplType  QualType
	Constants []*EnumConstantDecl

	typ *Type
}

func (*EnumTypeDecl) Kind() DeclKind { return DeclEnumType }
func (*EnumTypeDecl) declNode()      {}
func (*EnumTypeDecl) typeDeclNode()  {}

func (e *EnumTypeDecl) DeclaredType() QualType {
	if e.typ == nil {
		e.typ = &Type{Class: ClassEnum, Decl: e}
		e.typ.canonical = QualType{T: e.typ}
	}
	return QualType{T: e.typ}
}

// FunctionTypeDecl names a function signature. Func is the synthetic function
// carrying the signature; it has no body.
type FunctionTypeDecl struct {
	DeclBase
	Func *FunctionDecl

	typ *Type
}

func (*FunctionTypeDecl) Kind() DeclKind { return DeclFunctionType }
func (*FunctionTypeDecl) declNode()      {}
func (*FunctionTypeDecl) typeDeclNode()  {}

func (f *FunctionTypeDecl) DeclaredType() QualType {
	if f.typ == nil {
		f.typ = &Type{Class: ClassFunction, Decl: f}
		f.typ.canonical = QualType{T: f.typ}
	}
	return QualType{T: f.typ}
}

// ArrayValueDecl contributes one element to the incremental array named by
// Name ("Name += Value").
type ArrayValueDecl struct {
	DeclBase
	Value Expr
}

func (*ArrayValueDecl) Kind() DeclKind { return DeclArrayValue }
func (*ArrayValueDecl) declNode()      {}

// UseDecl imports the module Name, optionally under Alias. A local use makes
// the module's public symbols visible without qualification.
type UseDecl struct {
	DeclBase
	Alias     string
	AliasSpan source.Span
	IsLocal   bool
}

func (*UseDecl) Kind() DeclKind { return DeclUse }
func (*UseDecl) declNode()      {}

// VisibleName returns the alias if present, the package name otherwise.
func (u *UseDecl) VisibleName() string {
	if u.Alias != "" {
		return u.Alias
	}
	return u.Name
}
