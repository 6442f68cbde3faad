package sema

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/symbols"
)

// MaxStructDepth bounds the nesting of struct members, named or anonymous.
const MaxStructDepth = 32

type progress uint8

const (
	notStarted progress = iota
	inProgress
	finished
)

// lateResolver finishes the resolution of a global of the module on demand,
// in the scope of the file that declares it. Constant evaluation needs this
// when an array size or an enum value refers to a global that a later phase
// would otherwise handle.
type lateResolver interface {
	resolveVar(v *ast.VarDecl) int
	checkVarInit(v *ast.VarDecl) int
	resolveEnum(ed *ast.EnumTypeDecl) int
}

// FileAnalyser implements every module phase for the top-level declarations
// of one file.
type FileAnalyser struct {
	file     *ast.File
	module   *ast.Module
	scope    *symbols.FileScope
	reporter diag.Reporter
	types    *ast.TypeContext
	opts     *Options
	fn       *FunctionAnalyser

	varTypes     map[*ast.VarDecl]bool
	inits        map[*ast.VarDecl]progress
	enums        map[*ast.EnumTypeDecl]progress
	arrayTargets map[*ast.ArrayValueDecl]*ast.VarDecl
}

// NewFileAnalyser creates a standalone analyser for file; ModuleAnalyser is
// the usual way to get one.
func NewFileAnalyser(file *ast.File, all []*ast.Module, reporter diag.Reporter, opts Options) *FileAnalyser {
	if opts.Types == nil {
		opts.Types = ast.NewTypeContext()
	}
	return newFileAnalyser(file, file.Module, all, reporter, &opts, nil)
}

func newFileAnalyser(file *ast.File, mod *ast.Module, all []*ast.Module, reporter diag.Reporter, opts *Options, late lateResolver) *FileAnalyser {
	fa := &FileAnalyser{
		file:         file,
		module:       mod,
		scope:        symbols.NewFileScope(mod, all, reporter, opts.Types),
		reporter:     reporter,
		types:        opts.Types,
		opts:         opts,
		varTypes:     make(map[*ast.VarDecl]bool),
		inits:        make(map[*ast.VarDecl]progress),
		enums:        make(map[*ast.EnumTypeDecl]progress),
		arrayTargets: make(map[*ast.ArrayValueDecl]*ast.VarDecl),
	}
	if late == nil {
		late = fa
	}
	fa.fn = newFunctionAnalyser(fa.scope, opts.Types, reporter, late, opts.WarnUnusedLocals)
	return fa
}

// File returns the analysed file.
func (fa *FileAnalyser) File() *ast.File {
	return fa.file
}

// Scope returns the file-level scope.
func (fa *FileAnalyser) Scope() *symbols.FileScope {
	return fa.scope
}

func (fa *FileAnalyser) errorf(code diag.Code, span source.Span, format string, args ...any) int {
	diag.ReportError(fa.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
	return 1
}

// CheckUses registers the packages of the file's use declarations.
func (fa *FileAnalyser) CheckUses() int {
	errors := 0
	for _, u := range fa.file.Uses {
		pkg := fa.scope.FindAnyPackage(u.Name)
		if pkg == nil {
			errors += fa.errorf(diag.SemaUnknownPackage, u.Span, "unknown package '%s'", u.Name)
			continue
		}
		name := u.Name
		if u.Alias != "" {
			if fa.scope.FindAnyPackage(u.Alias) != nil {
				errors += fa.errorf(diag.SemaAliasIsPackage, u.AliasSpan, "alias name '%s' is already a package name", u.Alias)
				continue
			}
			name = u.Alias
		}
		fa.scope.AddPackage(name, pkg, u.IsLocal)
	}
	return errors
}

// ResolveTypes binds the named references of every type declaration.
// Canonical forms come in the next phase.
func (fa *FileAnalyser) ResolveTypes() int {
	errors := 0
	for _, d := range fa.file.Types {
		errors += fa.checkTypeDecl(d)
	}
	return errors
}

func (fa *FileAnalyser) checkTypeDecl(d ast.Decl) int {
	switch d := d.(type) {
	case *ast.AliasTypeDecl:
		return fa.scope.CheckType(d.RefType, d.Public)
	case *ast.StructTypeDecl:
		// члены структуры: в ResolveStructMembers
		return 0
	case *ast.EnumTypeDecl:
		return fa.scope.CheckType(d.ImplType, d.Public)
	case *ast.FunctionTypeDecl:
		// сигнатура: в ResolveTypeCanonicals
		return 0
	}
	panic(fmt.Sprintf("sema: %s '%s' in the type list of %s", d.Kind(), d.Base().Name, fa.file.Path))
}

// ResolveTypeCanonicals computes the canonical type of every type
// declaration. Function types additionally resolve their signature.
func (fa *FileAnalyser) ResolveTypeCanonicals() int {
	errors := 0
	for _, d := range fa.file.Types {
		switch d := d.(type) {
		case *ast.AliasTypeDecl:
			if fa.scope.ResolveCanonicals(d, d.DeclaredType(), true).IsNull() {
				errors++
				continue
			}
			errors += fa.fn.checkArraySizes(d.RefType)
		case *ast.StructTypeDecl:
			// canonical on construction
		case *ast.EnumTypeDecl:
			impl := fa.scope.ResolveCanonicals(d, d.ImplType, true)
			if impl.IsNull() {
				errors++
				continue
			}
			if !impl.Builtin().IsInteger() {
				errors += fa.errorf(diag.SemaInvalidEnumImplType, d.Span,
					"enum '%s' must have an integer implementation type, not '%s'", d.Name, impl)
			}
		case *ast.FunctionTypeDecl:
			errors += fa.resolveFunctionDecl(d.Func, d.Public)
		default:
			panic(fmt.Sprintf("sema: %s '%s' in the type list of %s", d.Kind(), d.Base().Name, fa.file.Path))
		}
	}
	return errors
}

// ResolveStructMembers resolves member types of every struct, nested
// structs depth-first.
func (fa *FileAnalyser) ResolveStructMembers() int {
	errors := 0
	for _, d := range fa.file.Types {
		if s, ok := d.(*ast.StructTypeDecl); ok {
			errors += fa.checkStructTypeDecl(s, s, 0, make(map[*ast.StructTypeDecl]bool))
		}
	}
	return errors
}

func (fa *FileAnalyser) checkStructTypeDecl(top, s *ast.StructTypeDecl, depth int, visiting map[*ast.StructTypeDecl]bool) int {
	if visiting[s] || depth >= MaxStructDepth {
		return fa.errorf(diag.SemaStructRecursion, s.Span, "struct '%s' is nested in itself", top.Name)
	}
	visiting[s] = true
	defer delete(visiting, s)

	errors := 0
	// члены анонимных вложенных структур проверяются вместе с родителем
	if depth == 0 || s.Name != "" {
		errors += fa.collectMembers(s, make(map[string]ast.Decl))
	}
	for _, m := range s.Members {
		switch m := m.(type) {
		case *ast.VarDecl:
			if m.Init != nil {
				panic(fmt.Sprintf("sema: struct member %s.%s has an initializer", top.Name, m.Name))
			}
			n := fa.resolveVarDecl(m, top.Public)
			if n == 0 {
				n += fa.checkMemberType(top, m)
			}
			errors += n
		case *ast.StructTypeDecl:
			errors += fa.checkStructTypeDecl(top, m, depth+1, visiting)
		default:
			panic(fmt.Sprintf("sema: %s '%s' inside struct %s", m.Kind(), m.Base().Name, top.Name))
		}
	}
	return errors
}

func (fa *FileAnalyser) collectMembers(s *ast.StructTypeDecl, seen map[string]ast.Decl) int {
	errors := 0
	for _, m := range s.Members {
		name := m.Base().Name
		if sub, ok := m.(*ast.StructTypeDecl); ok && name == "" {
			errors += fa.collectMembers(sub, seen)
			continue
		}
		if name == "" {
			continue
		}
		if prev, ok := seen[name]; ok {
			diag.ReportError(fa.reporter, diag.SemaDuplicateMember, m.Base().Span,
				fmt.Sprintf("duplicate member '%s'", name)).
				WithNote(prev.Base().Span, "previous declaration is here").
				Emit()
			errors++
			continue
		}
		seen[name] = m
	}
	return errors
}

func (fa *FileAnalyser) checkMemberType(top *ast.StructTypeDecl, m *ast.VarDecl) int {
	errors := fa.fn.checkArraySizes(m.Type)
	c := m.Type.Canonical()
	if c.IsNull() {
		return errors
	}
	if c.T.IsVoid() {
		return errors + fa.errorf(diag.SemaVoidVariable, m.Span, "member '%s' has type void", m.Name)
	}
	if containsStruct(c, top, 0) {
		errors += fa.errorf(diag.SemaStructRecursion, m.Span,
			"member '%s' has incomplete type: struct '%s' contains itself", m.Name, top.Name)
	}
	return errors
}

// containsStruct reports whether a value of type q embeds target. Pointers
// break the chain. Members that are not resolved yet are skipped; the phase
// reaches the other struct later and catches the cycle there.
func containsStruct(q ast.QualType, target *ast.StructTypeDecl, depth int) bool {
	if q.T == nil || depth >= MaxStructDepth {
		return false
	}
	switch q.T.Class {
	case ast.ClassArray:
		return containsStruct(q.T.Elem.Canonical(), target, depth+1)
	case ast.ClassStruct:
		sd := q.T.StructDecl()
		if sd == target {
			return true
		}
		return membersContain(sd, target, depth+1)
	}
	return false
}

func membersContain(s *ast.StructTypeDecl, target *ast.StructTypeDecl, depth int) bool {
	if s == nil || depth >= MaxStructDepth {
		return false
	}
	for _, m := range s.Members {
		switch m := m.(type) {
		case *ast.VarDecl:
			if containsStruct(m.Type.Canonical(), target, depth+1) {
				return true
			}
		case *ast.StructTypeDecl:
			if m == target || membersContain(m, target, depth+1) {
				return true
			}
		}
	}
	return false
}

// ResolveVars resolves the types of the file's globals. Incremental arrays
// get their empty InitList here.
func (fa *FileAnalyser) ResolveVars() int {
	errors := 0
	for _, v := range fa.file.Vars {
		n := fa.resolveVarDecl(v, v.Public)
		if n == 0 && v.Type.HasCanonicalType() {
			n += fa.checkGlobalType(v)
		}
		errors += n
	}
	return errors
}

func (fa *FileAnalyser) checkGlobalType(v *ast.VarDecl) int {
	errors := fa.fn.checkArraySizes(v.Type)
	c := v.Type.Canonical()
	if c.T.IsVoid() {
		return errors + fa.errorf(diag.SemaVoidVariable, v.Span, "variable '%s' has type void", v.Name)
	}
	if !v.Incremental {
		return errors
	}
	if !c.T.IsArray() || c.T.Array == nil || c.T.Array.Size != nil {
		return errors + fa.errorf(diag.SemaIncrementalNotArray, v.Span,
			"incremental variable '%s' must be an array without size, not '%s'", v.Name, c)
	}
	c.T.Array.Incremental = true
	if v.Init != nil {
		return errors + fa.errorf(diag.SemaIncrementalWithInit, v.Init.Span(),
			"incremental array '%s' cannot have an initializer", v.Name)
	}
	v.Init = ast.NewInitList(v.Span, nil)
	return errors
}

// resolveVar implements lateResolver for the file's own globals.
func (fa *FileAnalyser) resolveVar(v *ast.VarDecl) int {
	if !fa.file.Declares(v) {
		return 0
	}
	return fa.resolveVarDecl(v, v.Public)
}

// resolveVarDecl validates and canonicalises the type of v once. A failed
// attempt is not repeated, so its diagnostics appear once.
func (fa *FileAnalyser) resolveVarDecl(v *ast.VarDecl, public bool) int {
	if v.Type.HasCanonicalType() || fa.varTypes[v] {
		return 0
	}
	fa.varTypes[v] = true
	errors := fa.scope.CheckType(v.Type, public)
	if errors == 0 && fa.scope.ResolveCanonicals(v, v.Type, true).IsNull() {
		errors++
	}
	if errors == 0 && v.VarKind == ast.VarGlobal {
		fa.fn.ownArrayType(v)
	}
	return errors
}

// resolveFunctionDecl resolves the return type and every argument of fn,
// including the constant check of default values.
func (fa *FileAnalyser) resolveFunctionDecl(fn *ast.FunctionDecl, public bool) int {
	errors := 0
	if rt := fn.ReturnType; !rt.HasCanonicalType() {
		n := fa.scope.CheckType(rt, public)
		if n == 0 && fa.scope.ResolveCanonicals(fn, rt, true).IsNull() {
			n++
		}
		errors += n
	}
	for _, arg := range fn.Args {
		n := fa.resolveVarDecl(arg, public)
		if n == 0 {
			n += fa.checkArgument(fn, arg)
		}
		errors += n
	}
	return errors
}

func (fa *FileAnalyser) checkArgument(fn *ast.FunctionDecl, arg *ast.VarDecl) int {
	errors := fa.fn.checkArraySizes(arg.Type)
	c := arg.Type.Canonical()
	if c.IsNull() {
		return errors
	}
	if c.T.IsVoid() {
		return errors + fa.errorf(diag.SemaVoidVariable, arg.Span,
			"argument '%s' of '%s' has type void", arg.Name, fn.Name)
	}
	if arg.Init != nil {
		errors += fa.fn.checkInit(arg, arg.Init, c, diag.SemaArgDefaultNotConstant)
	}
	return errors
}
