package ast

import (
	"fmt"

	"c2sema/internal/source"
	"c2sema/internal/types"
)

type ExprKind uint8

const (
	ExprIntegerLiteral ExprKind = iota
	ExprFloatLiteral
	ExprBoolLiteral
	ExprCharLiteral
	ExprStringLiteral
	ExprNil
	ExprIdentifier
	ExprType
	ExprCall
	ExprInitList
	ExprBinary
	ExprConditional
	ExprUnary
	ExprBuiltin
	ExprArraySubscript
	ExprMember
	ExprParen
	ExprCast
)

var exprKindNames = [...]string{
	ExprIntegerLiteral: "IntegerLiteral",
	ExprFloatLiteral:   "FloatLiteral",
	ExprBoolLiteral:    "BoolLiteral",
	ExprCharLiteral:    "CharLiteral",
	ExprStringLiteral:  "StringLiteral",
	ExprNil:            "Nil",
	ExprIdentifier:     "Identifier",
	ExprType:           "Type",
	ExprCall:           "Call",
	ExprInitList:       "InitList",
	ExprBinary:         "BinaryOperator",
	ExprConditional:    "ConditionalOperator",
	ExprUnary:          "UnaryOperator",
	ExprBuiltin:        "Builtin",
	ExprArraySubscript: "ArraySubscript",
	ExprMember:         "Member",
	ExprParen:          "Paren",
	ExprCast:           "Cast",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return fmt.Sprintf("ExprKind(%d)", k)
}

// Expr is the closed set of expressions. Analysis annotates every node with
// its resolved type through SetType.
type Expr interface {
	Kind() ExprKind
	Span() source.Span
	Type() QualType
	SetType(QualType)
	exprNode()
}

// ExprBase carries the span and the type annotation slot.
type ExprBase struct {
	Loc source.Span
	Typ QualType
}

func (e *ExprBase) Span() source.Span   { return e.Loc }
func (e *ExprBase) Type() QualType      { return e.Typ }
func (e *ExprBase) SetType(qt QualType) { e.Typ = qt }

type IntegerLiteral struct {
	ExprBase
	Value uint64
}

type FloatLiteral struct {
	ExprBase
	Value float64
}

type BoolLiteral struct {
	ExprBase
	Value bool
}

type CharLiteral struct {
	ExprBase
	Value uint8
}

type StringLiteral struct {
	ExprBase
	Value string
}

type NilExpr struct {
	ExprBase
}

// IdentifierExpr is a plain name. Decl is bound by analysis.
type IdentifierExpr struct {
	ExprBase
	Name string
	Decl Decl
	// Package is set instead of Decl when the name denotes a used module.
	Package *Module
}

// TypeExpr wraps a type in expression position (sizeof argument).
type TypeExpr struct {
	ExprBase
	QT QualType
}

type CallExpr struct {
	ExprBase
	Fn   Expr
	Args []Expr
}

// InitListExpr is a braced initializer. Values may be replaced exactly once
// through SetValues; the loader builds lists with NewInitList.
type InitListExpr struct {
	ExprBase
	values   []Expr
	setCount int
}

func NewInitList(span source.Span, values []Expr) *InitListExpr {
	return &InitListExpr{ExprBase: ExprBase{Loc: span}, values: values}
}

func (l *InitListExpr) Values() []Expr { return l.values }

// SetValues installs the merged values. A second call is a bug.
func (l *InitListExpr) SetValues(values []Expr) {
	if l.setCount > 0 {
		panic("ast: InitListExpr values set twice")
	}
	l.setCount++
	l.values = values
}

// SetCount returns how many times SetValues ran.
func (l *InitListExpr) SetCount() int { return l.setCount }

type BinaryOperator struct {
	ExprBase
	Op  types.BinaryOp
	LHS Expr
	RHS Expr
}

type ConditionalOperator struct {
	ExprBase
	Cond Expr
	LHS  Expr
	RHS  Expr
}

type UnaryOperator struct {
	ExprBase
	Op      types.UnaryOp
	Operand Expr
}

type BuiltinKind uint8

const (
	BuiltinSizeof BuiltinKind = iota
	BuiltinElemsof
)

func (k BuiltinKind) String() string {
	if k == BuiltinElemsof {
		return "elemsof"
	}
	return "sizeof"
}

type BuiltinExpr struct {
	ExprBase
	Builtin BuiltinKind
	Arg     Expr
}

type ArraySubscriptExpr struct {
	ExprBase
	Base  Expr
	Index Expr
}

// MemberExpr is "Base.Member": a struct field, a struct function, or a symbol
// of a used package.
type MemberExpr struct {
	ExprBase
	Base       Expr
	Member     string
	MemberSpan source.Span
	// Decl is bound by analysis.
	Decl         Decl
	IsPackage    bool
	IsStructFunc bool
}

type ParenExpr struct {
	ExprBase
	Inner Expr
}

type CastExpr struct {
	ExprBase
	DestType QualType
	Inner    Expr
}

func (*IntegerLiteral) Kind() ExprKind      { return ExprIntegerLiteral }
func (*FloatLiteral) Kind() ExprKind        { return ExprFloatLiteral }
func (*BoolLiteral) Kind() ExprKind         { return ExprBoolLiteral }
func (*CharLiteral) Kind() ExprKind         { return ExprCharLiteral }
func (*StringLiteral) Kind() ExprKind       { return ExprStringLiteral }
func (*NilExpr) Kind() ExprKind             { return ExprNil }
func (*IdentifierExpr) Kind() ExprKind      { return ExprIdentifier }
func (*TypeExpr) Kind() ExprKind            { return ExprType }
func (*CallExpr) Kind() ExprKind            { return ExprCall }
func (*InitListExpr) Kind() ExprKind        { return ExprInitList }
func (*BinaryOperator) Kind() ExprKind      { return ExprBinary }
func (*ConditionalOperator) Kind() ExprKind { return ExprConditional }
func (*UnaryOperator) Kind() ExprKind       { return ExprUnary }
func (*BuiltinExpr) Kind() ExprKind         { return ExprBuiltin }
func (*ArraySubscriptExpr) Kind() ExprKind  { return ExprArraySubscript }
func (*MemberExpr) Kind() ExprKind          { return ExprMember }
func (*ParenExpr) Kind() ExprKind           { return ExprParen }
func (*CastExpr) Kind() ExprKind            { return ExprCast }

func (*IntegerLiteral) exprNode()      {}
func (*FloatLiteral) exprNode()        {}
func (*BoolLiteral) exprNode()         {}
func (*CharLiteral) exprNode()         {}
func (*StringLiteral) exprNode()       {}
func (*NilExpr) exprNode()             {}
func (*IdentifierExpr) exprNode()      {}
func (*TypeExpr) exprNode()            {}
func (*CallExpr) exprNode()            {}
func (*InitListExpr) exprNode()        {}
func (*BinaryOperator) exprNode()      {}
func (*ConditionalOperator) exprNode() {}
func (*UnaryOperator) exprNode()       {}
func (*BuiltinExpr) exprNode()         {}
func (*ArraySubscriptExpr) exprNode()  {}
func (*MemberExpr) exprNode()          {}
func (*ParenExpr) exprNode()           {}
func (*CastExpr) exprNode()            {}
