package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"c2sema/internal/ast"
	"c2sema/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) *treeNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func leaf(format string, args ...any) *treeNode {
	return &treeNode{label: fmt.Sprintf(format, args...)}
}

// DumpFile prints the declarations of f as an indented tree. Expressions show
// the type analysis annotated them with ("<null>" before analysis), so the
// dump doubles as an observation hook between phases.
func DumpFile(w io.Writer, f *ast.File, fs *source.FileSet) error {
	d := dumper{fs: fs}
	root := d.file(f)
	bw := bufio.NewWriter(w)
	writeTree(bw, root, "", "", "")
	return bw.Flush()
}

// DumpModule prints every file of m, skipping interface files unless lib is set.
func DumpModule(w io.Writer, m *ast.Module, fs *source.FileSet, lib bool) error {
	for _, f := range m.Files {
		if f.IsInterface && !lib {
			continue
		}
		if err := DumpFile(w, f, fs); err != nil {
			return err
		}
	}
	return nil
}

func writeTree(w *bufio.Writer, n *treeNode, prefix, head, tail string) {
	w.WriteString(prefix)
	w.WriteString(head)
	w.WriteString(n.label)
	w.WriteByte('\n')
	for i, c := range n.children {
		if i == len(n.children)-1 {
			writeTree(w, c, prefix+tail, "└─ ", "   ")
		} else {
			writeTree(w, c, prefix+tail, "├─ ", "│  ")
		}
	}
}

type dumper struct {
	fs *source.FileSet
}

func (d dumper) at(sp source.Span) string {
	if d.fs == nil || d.fs.Get(sp.File) == nil {
		return fmt.Sprintf("[%d,%d)", sp.Start, sp.End)
	}
	start, _ := d.fs.Resolve(sp)
	return fmt.Sprintf("%d:%d", start.Line, start.Col)
}

func (d dumper) file(f *ast.File) *treeNode {
	label := "File " + f.Path
	if f.Module != nil {
		label += " (module " + f.Module.Name + ")"
	}
	if f.IsInterface {
		label += " interface"
	}
	root := &treeNode{label: label}
	for _, u := range f.Uses {
		root.add(d.use(u))
	}
	for _, t := range f.Types {
		root.add(d.decl(t))
	}
	for _, v := range f.Vars {
		root.add(d.varDecl(v))
	}
	for _, fn := range f.Functions {
		root.add(d.function(fn))
	}
	for _, av := range f.ArrayValues {
		root.add(leaf("ArrayValue %s += @%s", av.Name, d.at(av.Span)).add(d.expr(av.Value)))
	}
	return root
}

func (d dumper) use(u *ast.UseDecl) *treeNode {
	label := "Use " + u.Name
	if u.Alias != "" {
		label += " as " + u.Alias
	}
	if u.IsLocal {
		label += " local"
	}
	return leaf("%s @%s", label, d.at(u.Span))
}

func flags(b *ast.DeclBase) string {
	s := ""
	if b.Public {
		s += " public"
	}
	if b.Used {
		s += " used"
	}
	return s
}

func (d dumper) decl(decl ast.Decl) *treeNode {
	switch t := decl.(type) {
	case *ast.AliasTypeDecl:
		return leaf("Alias %s = %s%s @%s", t.Name, typeString(t.RefType), flags(&t.DeclBase), d.at(t.Span))
	case *ast.StructTypeDecl:
		kind := "Struct"
		if !t.IsStruct {
			kind = "Union"
		}
		name := t.Name
		if name == "" {
			name = "<anonymous>"
		}
		n := leaf("%s %s%s @%s", kind, name, flags(&t.DeclBase), d.at(t.Span))
		for _, m := range t.Members {
			n.add(d.decl(m))
		}
		if funcs := t.StructFuncs(); len(funcs) > 0 {
			fns := &treeNode{label: "StructFuncs"}
			for _, fn := range funcs {
				fns.add(leaf("%s", fn.Name))
			}
			n.add(fns)
		}
		return n
	case *ast.EnumTypeDecl:
		n := leaf("Enum %s : %s%s @%s", t.Name, typeString(t.ImplType), flags(&t.DeclBase), d.at(t.Span))
		for _, c := range t.Constants {
			value := "?"
			if c.Assigned {
				value = strconv.FormatInt(c.Value, 10)
			}
			cn := leaf("Constant %s = %s%s", c.Name, value, flags(&c.DeclBase))
			if c.Init != nil {
				cn.add(d.expr(c.Init))
			}
			n.add(cn)
		}
		return n
	case *ast.FunctionTypeDecl:
		return leaf("FuncType %s %s%s @%s", t.Name, t.Func.Signature(), flags(&t.DeclBase), d.at(t.Span))
	case *ast.VarDecl:
		return d.varDecl(t)
	case *ast.FunctionDecl:
		return d.function(t)
	}
	return leaf("%s %s", decl.Kind(), decl.Base().Name)
}

func (d dumper) varDecl(v *ast.VarDecl) *treeNode {
	label := fmt.Sprintf("Var(%s) %s: %s%s @%s", v.VarKind, v.Name, typeString(v.Type), flags(&v.DeclBase), d.at(v.Span))
	if v.Incremental {
		label += " incremental"
	}
	n := &treeNode{label: label}
	if v.Init != nil {
		n.add(d.expr(v.Init))
	}
	return n
}

func (d dumper) function(fn *ast.FunctionDecl) *treeNode {
	n := leaf("Func %s %s%s @%s", fn.Name, fn.Signature(), flags(&fn.DeclBase), d.at(fn.Span))
	for _, a := range fn.Args {
		n.add(d.varDecl(a))
	}
	if fn.Body != nil {
		n.add(d.stmt(fn.Body))
	}
	return n
}

// typeString prefers the canonical form once it exists.
func typeString(q ast.QualType) string {
	if c := q.Canonical(); !c.IsNull() && c.T != q.T {
		return q.String() + " (" + c.String() + ")"
	}
	return q.String()
}

func (d dumper) stmt(s ast.Stmt) *treeNode {
	if s == nil {
		return nil
	}
	n := leaf("%s @%s", s.Kind(), d.at(s.Span()))
	switch s := s.(type) {
	case *ast.ReturnStmt:
		n.add(d.expr(s.Value))
	case *ast.ExprStmt:
		n.add(d.expr(s.X))
	case *ast.DeclStmt:
		n.add(d.varDecl(s.Var))
	case *ast.IfStmt:
		n.add(d.expr(s.Cond), d.stmt(s.Then), d.stmt(s.Else))
	case *ast.WhileStmt:
		n.add(d.expr(s.Cond), d.stmt(s.Body))
	case *ast.DoStmt:
		n.add(d.stmt(s.Body), d.expr(s.Cond))
	case *ast.ForStmt:
		n.add(d.stmt(s.Init), d.expr(s.Cond), d.expr(s.Incr), d.stmt(s.Body))
	case *ast.SwitchStmt:
		n.add(d.expr(s.Cond))
		for _, c := range s.Cases {
			n.add(d.stmt(c))
		}
	case *ast.CaseStmt:
		n.add(d.expr(s.Value))
		for _, b := range s.Body {
			n.add(d.stmt(b))
		}
	case *ast.DefaultStmt:
		for _, b := range s.Body {
			n.add(d.stmt(b))
		}
	case *ast.CompoundStmt:
		for _, b := range s.Stmts {
			n.add(d.stmt(b))
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
	}
	return n
}

func (d dumper) expr(e ast.Expr) *treeNode {
	if e == nil {
		return nil
	}
	n := &treeNode{}
	detail := ""
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		detail = strconv.FormatUint(e.Value, 10)
	case *ast.FloatLiteral:
		detail = strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *ast.BoolLiteral:
		detail = strconv.FormatBool(e.Value)
	case *ast.CharLiteral:
		detail = strconv.QuoteRune(rune(e.Value))
	case *ast.StringLiteral:
		detail = strconv.Quote(e.Value)
	case *ast.NilExpr:
	case *ast.IdentifierExpr:
		detail = e.Name
	case *ast.TypeExpr:
		detail = typeString(e.QT)
	case *ast.CallExpr:
		n.add(d.expr(e.Fn))
		for _, a := range e.Args {
			n.add(d.expr(a))
		}
	case *ast.InitListExpr:
		for _, v := range e.Values() {
			n.add(d.expr(v))
		}
	case *ast.BinaryOperator:
		detail = e.Op.String()
		n.add(d.expr(e.LHS), d.expr(e.RHS))
	case *ast.ConditionalOperator:
		n.add(d.expr(e.Cond), d.expr(e.LHS), d.expr(e.RHS))
	case *ast.UnaryOperator:
		detail = e.Op.String()
		n.add(d.expr(e.Operand))
	case *ast.BuiltinExpr:
		detail = e.Builtin.String()
		n.add(d.expr(e.Arg))
	case *ast.ArraySubscriptExpr:
		n.add(d.expr(e.Base), d.expr(e.Index))
	case *ast.MemberExpr:
		detail = e.Member
		n.add(d.expr(e.Base))
	case *ast.ParenExpr:
		n.add(d.expr(e.Inner))
	case *ast.CastExpr:
		detail = typeString(e.DestType)
		n.add(d.expr(e.Inner))
	}
	n.label = e.Kind().String()
	if detail != "" {
		n.label += " " + detail
	}
	n.label += " : " + e.Type().String()
	return n
}
