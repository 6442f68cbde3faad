// Package astwire reads and writes the AST interchange format: one msgpack
// document per translation unit, produced by the parser front end and
// consumed by the analyser.
package astwire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the record layout changes.
const SchemaVersion uint16 = 1

var (
	// ErrUnknownKind is returned for a node whose kind tag this version does not know.
	ErrUnknownKind = errors.New("astwire: unknown node kind")
	// ErrSchema is returned for documents written with another schema version.
	ErrSchema = errors.New("astwire: unsupported schema version")
	// ErrMalformed is returned for records missing a required child.
	ErrMalformed = errors.New("astwire: malformed record")
)

// Span is a byte range inside the file's source text.
type Span struct {
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

// File is the document root.
type File struct {
	Schema    uint16 `msgpack:"schema"`
	Path      string `msgpack:"path"`
	Module    string `msgpack:"module"`
	Interface bool   `msgpack:"interface,omitempty"`
	// Source is the original text; without it diagnostics print no snippet.
	Source    string `msgpack:"source,omitempty"`

	Uses        []Decl `msgpack:"uses,omitempty"`
	Types       []Decl `msgpack:"types,omitempty"`
	Vars        []Decl `msgpack:"vars,omitempty"`
	Funcs       []Decl `msgpack:"funcs,omitempty"`
	ArrayValues []Decl `msgpack:"array_values,omitempty"`
}

// Decl kinds.
const (
	DeclUse        = "use"
	DeclVar        = "var"
	DeclFunc       = "func"
	DeclAlias      = "alias"
	DeclStruct     = "struct"
	DeclUnion      = "union"
	DeclEnum       = "enum"
	DeclConstant   = "constant"
	DeclFuncType   = "functype"
	DeclArrayValue = "array_value"
)

// Decl is a declaration record. Which fields are set depends on Kind.
type Decl struct {
	Kind   string `msgpack:"kind"`
	Name   string `msgpack:"name"`
	Span   Span   `msgpack:"span"`
	Public bool   `msgpack:"public,omitempty"`

	// use
	Alias     string `msgpack:"alias,omitempty"`
	AliasSpan Span   `msgpack:"alias_span,omitempty"`
	Local     bool   `msgpack:"local,omitempty"`

	// var: тип; alias: целевой тип; enum: тип реализации; func/functype: тип результата
	Type        *TypeRef `msgpack:"type,omitempty"`
	Init        *Expr    `msgpack:"init,omitempty"`
	Incremental bool     `msgpack:"incremental,omitempty"`

	// func, functype
	Args       []Decl `msgpack:"args,omitempty"`
	Variadic   bool   `msgpack:"variadic,omitempty"`
	Body       *Stmt  `msgpack:"body,omitempty"`
	StructName string `msgpack:"struct_name,omitempty"`
	MemberName string `msgpack:"member_name,omitempty"`

	// struct, union, enum
	Members   []Decl `msgpack:"members,omitempty"`
	Constants []Decl `msgpack:"constants,omitempty"`

	// array_value
	Value *Expr `msgpack:"value,omitempty"`
}

// TypeRef kinds.
const (
	TypeBuiltin = "builtin"
	TypePointer = "pointer"
	TypeArray   = "array"
	TypeNamed   = "named"
)

// TypeRef is a type as written in source.
type TypeRef struct {
	Kind     string   `msgpack:"kind"`
	Builtin  string   `msgpack:"builtin,omitempty"`
	Elem     *TypeRef `msgpack:"elem,omitempty"`
	Size     *Expr    `msgpack:"size,omitempty"`
	Incr     bool     `msgpack:"incremental,omitempty"`
	Pkg      string   `msgpack:"pkg,omitempty"`
	Name     string   `msgpack:"name,omitempty"`
	PkgSpan  Span     `msgpack:"pkg_span,omitempty"`
	NameSpan Span     `msgpack:"name_span,omitempty"`
	Const    bool     `msgpack:"const,omitempty"`
	Volatile bool     `msgpack:"volatile,omitempty"`
	Local    bool     `msgpack:"local,omitempty"`
}

// Expr kinds.
const (
	ExprInt       = "int"
	ExprFloat     = "float"
	ExprBool      = "bool"
	ExprChar      = "char"
	ExprString    = "string"
	ExprNil       = "nil"
	ExprIdent     = "ident"
	ExprType      = "type"
	ExprCall      = "call"
	ExprInitList  = "init_list"
	ExprBinary    = "binary"
	ExprCond      = "conditional"
	ExprUnary     = "unary"
	ExprBuiltin   = "builtin"
	ExprSubscript = "subscript"
	ExprMember    = "member"
	ExprParen     = "paren"
	ExprCast      = "cast"
)

// Expr is an expression record.
type Expr struct {
	Kind string `msgpack:"kind"`
	Span Span   `msgpack:"span"`

	Int   uint64  `msgpack:"int,omitempty"`
	Float float64 `msgpack:"float,omitempty"`
	Bool  bool    `msgpack:"bool,omitempty"`
	Str   string  `msgpack:"str,omitempty"`

	Name     string   `msgpack:"name,omitempty"` // ident, member, builtin
	NameSpan Span     `msgpack:"name_span,omitempty"`
	Op       string   `msgpack:"op,omitempty"`
	Type     *TypeRef `msgpack:"type,omitempty"` // type, cast
	Items    []Expr   `msgpack:"items,omitempty"`
	X        *Expr    `msgpack:"x,omitempty"` // операнд, база, вызываемое
	Y        *Expr    `msgpack:"y,omitempty"` // правый операнд, индекс
	Cond     *Expr    `msgpack:"cond,omitempty"`
}

// Stmt kinds.
const (
	StmtReturn   = "return"
	StmtExpr     = "expr"
	StmtDecl     = "decl"
	StmtIf       = "if"
	StmtWhile    = "while"
	StmtDo       = "do"
	StmtFor      = "for"
	StmtSwitch   = "switch"
	StmtCase     = "case"
	StmtDefault  = "default"
	StmtBreak    = "break"
	StmtContinue = "continue"
	StmtCompound = "compound"
)

// Stmt is a statement record.
type Stmt struct {
	Kind  string `msgpack:"kind"`
	Span  Span   `msgpack:"span"`
	X     *Expr  `msgpack:"x,omitempty"` // значение return/case, выражение, условие
	Incr  *Expr  `msgpack:"incr,omitempty"`
	Var   *Decl  `msgpack:"var,omitempty"`
	Init  *Stmt  `msgpack:"init,omitempty"`
	Then  *Stmt  `msgpack:"then,omitempty"`
	Else  *Stmt  `msgpack:"else,omitempty"`
	Body  *Stmt  `msgpack:"body,omitempty"`
	Stmts []Stmt `msgpack:"stmts,omitempty"`
}

// Read decodes one document and checks its schema version.
func Read(r io.Reader) (*File, error) {
	var doc File
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("astwire: decode: %w", err)
	}
	if doc.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, doc.Schema, SchemaVersion)
	}
	return &doc, nil
}

// Unmarshal is Read over a byte slice.
func Unmarshal(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes doc, stamping the current schema version.
func Write(w io.Writer, doc *File) error {
	doc.Schema = SchemaVersion
	enc := msgpack.NewEncoder(w)
	enc.SetOmitEmpty(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("astwire: encode: %w", err)
	}
	return nil
}

// Marshal is Write into a byte slice.
func Marshal(doc *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
