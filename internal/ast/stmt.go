package ast

import (
	"fmt"

	"c2sema/internal/source"
)

type StmtKind uint8

const (
	StmtReturn StmtKind = iota
	StmtExpr
	StmtDecl
	StmtIf
	StmtWhile
	StmtDo
	StmtFor
	StmtSwitch
	StmtCase
	StmtDefault
	StmtBreak
	StmtContinue
	StmtCompound
)

var stmtKindNames = [...]string{
	StmtReturn:   "Return",
	StmtExpr:     "Expr",
	StmtDecl:     "Decl",
	StmtIf:       "If",
	StmtWhile:    "While",
	StmtDo:       "Do",
	StmtFor:      "For",
	StmtSwitch:   "Switch",
	StmtCase:     "Case",
	StmtDefault:  "Default",
	StmtBreak:    "Break",
	StmtContinue: "Continue",
	StmtCompound: "Compound",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return fmt.Sprintf("StmtKind(%d)", k)
}

// Stmt is the closed set of statements.
type Stmt interface {
	Kind() StmtKind
	Span() source.Span
	stmtNode()
}

type StmtBase struct {
	Loc source.Span
}

func (s *StmtBase) Span() source.Span { return s.Loc }

type ReturnStmt struct {
	StmtBase
	Value Expr
}

type ExprStmt struct {
	StmtBase
	X Expr
}

type DeclStmt struct {
	StmtBase
	Var *VarDecl
}

type IfStmt struct {
	StmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

type DoStmt struct {
	StmtBase
	Body Stmt
	Cond Expr
}

// ForStmt: every part except Body is optional.
type ForStmt struct {
	StmtBase
	Init Stmt
	Cond Expr
	Incr Expr
	Body Stmt
}

// SwitchStmt holds CaseStmt and DefaultStmt entries in source order.
type SwitchStmt struct {
	StmtBase
	Cond  Expr
	Cases []Stmt
}

type CaseStmt struct {
	StmtBase
	Value Expr
	Body  []Stmt
}

type DefaultStmt struct {
	StmtBase
	Body []Stmt
}

type BreakStmt struct {
	StmtBase
}

type ContinueStmt struct {
	StmtBase
}

type CompoundStmt struct {
	StmtBase
	Stmts []Stmt
}

func (*ReturnStmt) Kind() StmtKind   { return StmtReturn }
func (*ExprStmt) Kind() StmtKind     { return StmtExpr }
func (*DeclStmt) Kind() StmtKind     { return StmtDecl }
func (*IfStmt) Kind() StmtKind       { return StmtIf }
func (*WhileStmt) Kind() StmtKind    { return StmtWhile }
func (*DoStmt) Kind() StmtKind       { return StmtDo }
func (*ForStmt) Kind() StmtKind      { return StmtFor }
func (*SwitchStmt) Kind() StmtKind   { return StmtSwitch }
func (*CaseStmt) Kind() StmtKind     { return StmtCase }
func (*DefaultStmt) Kind() StmtKind  { return StmtDefault }
func (*BreakStmt) Kind() StmtKind    { return StmtBreak }
func (*ContinueStmt) Kind() StmtKind { return StmtContinue }
func (*CompoundStmt) Kind() StmtKind { return StmtCompound }

func (*ReturnStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}
func (*DeclStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*DoStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*SwitchStmt) stmtNode()   {}
func (*CaseStmt) stmtNode()     {}
func (*DefaultStmt) stmtNode()  {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*CompoundStmt) stmtNode() {}
