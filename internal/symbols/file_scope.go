package symbols

import (
	"fmt"

	"c2sema/internal/ast"
	"c2sema/internal/diag"
)

type usedPackage struct {
	name   string
	module *ast.Module
	local  bool
}

// FileScope resolves names at file level: the file's own module (tier 3)
// and the packages brought in by use declarations (tier 4).
type FileScope struct {
	module   *ast.Module
	modules  map[string]*ast.Module
	packages []usedPackage
	reporter diag.Reporter
	types    *ast.TypeContext

	visiting map[*ast.AliasTypeDecl]bool
}

// NewFileScope creates the scope of one file of own. The own module is
// registered as a local package under its name.
func NewFileScope(own *ast.Module, all []*ast.Module, reporter diag.Reporter, tc *ast.TypeContext) *FileScope {
	fs := &FileScope{
		module:   own,
		modules:  make(map[string]*ast.Module, len(all)+1),
		reporter: reporter,
		types:    tc,
		visiting: make(map[*ast.AliasTypeDecl]bool),
	}
	for _, m := range all {
		if m != nil {
			fs.modules[m.Name] = m
		}
	}
	if own != nil {
		fs.modules[own.Name] = own
		fs.AddPackage(own.Name, own, true)
	}
	return fs
}

// Module returns the module the file belongs to.
func (fs *FileScope) Module() *ast.Module {
	return fs.module
}

// FindAnyPackage looks a module up among all modules by its true name,
// whether or not the file uses it.
func (fs *FileScope) FindAnyPackage(name string) *ast.Module {
	return fs.modules[name]
}

// FindPackage looks up a package visible in this file under name (true name
// or alias).
func (fs *FileScope) FindPackage(name string) *ast.Module {
	for i := range fs.packages {
		if fs.packages[i].name == name {
			return fs.packages[i].module
		}
	}
	return nil
}

// AddPackage makes mod visible under name. A local package also makes its
// symbols visible without qualification.
func (fs *FileScope) AddPackage(name string, mod *ast.Module, local bool) {
	for i := range fs.packages {
		if fs.packages[i].name == name {
			fs.packages[i].module = mod
			fs.packages[i].local = fs.packages[i].local || local
			return
		}
	}
	fs.packages = append(fs.packages, usedPackage{name: name, module: mod, local: local})
}

// FindSymbol resolves an unqualified name: own module first, then every
// local package.
func (fs *FileScope) FindSymbol(name string) ScopeResult {
	if fs.module != nil {
		if d := fs.module.Symbol(name); d != nil {
			return ScopeResult{Decl: d, Status: StatusFound, Package: fs.module}
		}
	}

	var (
		visible []ast.Decl
		hidden  ast.Decl
		from    *ast.Module
		hiddenM *ast.Module
	)
	seen := make(map[*ast.Module]bool, len(fs.packages))
	for _, p := range fs.packages {
		if !p.local || p.module == fs.module || seen[p.module] {
			continue
		}
		seen[p.module] = true
		d := p.module.Symbol(name)
		if d == nil {
			continue
		}
		if !d.Base().Public {
			if hidden == nil {
				hidden, hiddenM = d, p.module
			}
			continue
		}
		visible = append(visible, d)
		from = p.module
	}
	switch len(visible) {
	case 0:
		if hidden != nil {
			return ScopeResult{Decl: hidden, Status: StatusExternal, Package: hiddenM}
		}
		return ScopeResult{Status: StatusNotFound}
	case 1:
		return ScopeResult{Decl: visible[0], Status: StatusExternal, Package: from}
	default:
		return ScopeResult{Status: StatusAmbiguous, Candidates: visible}
	}
}

// FindSymbolInPackage resolves "pkg.name". An unknown package yields
// NotFound with a nil Package.
func (fs *FileScope) FindSymbolInPackage(pkg, name string) ScopeResult {
	mod := fs.FindPackage(pkg)
	if mod == nil {
		return ScopeResult{Status: StatusNotFound}
	}
	d := mod.Symbol(name)
	if d == nil {
		return ScopeResult{Status: StatusNotFound, Package: mod}
	}
	if mod == fs.module {
		return ScopeResult{Decl: d, Status: StatusFound, Package: mod}
	}
	return ScopeResult{Decl: d, Status: StatusExternal, Package: mod}
}

// CheckType binds every named reference inside qt to its type declaration
// and reports unresolvable ones. isPublic requests the visibility check for
// public declarations. It returns the number of errors reported.
func (fs *FileScope) CheckType(qt ast.QualType, isPublic bool) int {
	t := qt.T
	if t == nil {
		return 0
	}
	switch t.Class {
	case ast.ClassBuiltin, ast.ClassStruct, ast.ClassEnum, ast.ClassFunction, ast.ClassAlias, ast.ClassPackage:
		return 0
	case ast.ClassPointer, ast.ClassArray:
		return fs.CheckType(t.Elem, isPublic)
	case ast.ClassUnresolved:
		return fs.checkRef(t.Ref, isPublic)
	}
	panic(fmt.Sprintf("symbols: unexpected type class %s", t.Class))
}

func (fs *FileScope) checkRef(ref *ast.TypeRef, isPublic bool) int {
	if ref.Decl != nil {
		return 0
	}
	var res ScopeResult
	if ref.Pkg != "" {
		if fs.FindPackage(ref.Pkg) == nil {
			diag.ReportError(fs.reporter, diag.SemaUnknownPackage, ref.PkgSpan,
				fmt.Sprintf("unknown package '%s'", ref.Pkg)).Emit()
			return 1
		}
		res = fs.FindSymbolInPackage(ref.Pkg, ref.Name)
	} else {
		res = fs.FindSymbol(ref.Name)
	}

	switch res.Status {
	case StatusNotFound:
		diag.ReportError(fs.reporter, diag.SemaUnknownType, ref.NameSpan,
			fmt.Sprintf("unknown type '%s'", ref)).Emit()
		return 1
	case StatusAmbiguous:
		b := diag.ReportError(fs.reporter, diag.SemaAmbiguousSymbol, ref.NameSpan,
			fmt.Sprintf("type '%s' is ambiguous", ref))
		for _, c := range res.Candidates {
			b.WithNote(c.Base().Span, fmt.Sprintf("candidate %s.%s", c.Base().Module, c.Base().Name))
		}
		b.Emit()
		return 1
	}

	td, ok := res.Decl.(ast.TypeDecl)
	if !ok {
		diag.ReportError(fs.reporter, diag.SemaNotAType, ref.NameSpan,
			fmt.Sprintf("'%s' is not a type", ref)).
			WithNote(res.Decl.Base().Span, "declared here").
			Emit()
		return 1
	}
	base := td.Base()
	if res.IsExternal() && !base.Public {
		diag.ReportError(fs.reporter, diag.SemaSymbolNotPublic, ref.NameSpan,
			fmt.Sprintf("type '%s' is not public", ref)).Emit()
		return 1
	}
	if isPublic && !res.IsExternal() && !base.Public {
		diag.ReportError(fs.reporter, diag.SemaPublicUsesPrivate, ref.NameSpan,
			fmt.Sprintf("public declaration uses non-public type '%s'", ref)).Emit()
		return 1
	}
	base.Used = true
	ref.Decl = td
	return 0
}

// ResolveCanonicals computes the canonical form of qt. With set, canonical
// types are recorded on every Type on the way. Already canonical input is
// returned as is. Alias cycles are reported at decl and give a null
// QualType, as do references CheckType could not bind.
func (fs *FileScope) ResolveCanonicals(decl ast.Decl, qt ast.QualType, set bool) ast.QualType {
	if qt.T == nil {
		return ast.QualType{}
	}
	if qt.HasCanonicalType() {
		return qt.Canonical()
	}
	c := fs.resolveType(decl, qt.T, set)
	if c.T == nil {
		return c
	}
	c.Quals |= qt.Quals
	return c
}

func (fs *FileScope) resolveType(decl ast.Decl, t *ast.Type, set bool) ast.QualType {
	if c := t.CanonicalType(); c.T != nil {
		return c
	}
	var canon ast.QualType
	switch t.Class {
	case ast.ClassPointer:
		elem := fs.ResolveCanonicals(decl, t.Elem, set)
		if elem.T == nil {
			return ast.QualType{}
		}
		canon = fs.types.Pointer(elem)
	case ast.ClassArray:
		elem := fs.ResolveCanonicals(decl, t.Elem, set)
		if elem.T == nil {
			return ast.QualType{}
		}
		canon = fs.types.ArrayWithInfo(elem, t.Array)
	case ast.ClassUnresolved:
		if t.Ref.Decl == nil {
			return ast.QualType{}
		}
		canon = fs.ResolveCanonicals(decl, t.Ref.Decl.DeclaredType(), set)
	case ast.ClassAlias:
		alias, ok := t.Decl.(*ast.AliasTypeDecl)
		if !ok {
			panic(fmt.Sprintf("symbols: alias type without alias decl: %s", t))
		}
		if fs.visiting[alias] {
			diag.ReportError(fs.reporter, diag.SemaCircularType, decl.Base().Span,
				fmt.Sprintf("circular type definition via '%s'", alias.Name)).Emit()
			return ast.QualType{}
		}
		fs.visiting[alias] = true
		canon = fs.ResolveCanonicals(decl, alias.RefType, set)
		delete(fs.visiting, alias)
	default:
		panic(fmt.Sprintf("symbols: type %s has no canonical form", t))
	}
	if canon.T == nil {
		return canon
	}
	if set {
		t.SetCanonical(canon)
	}
	return canon
}
