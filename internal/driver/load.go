package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"c2sema/internal/ast"
	"c2sema/internal/astwire"
	"c2sema/internal/diag"
	"c2sema/internal/project"
	"c2sema/internal/source"
	"c2sema/internal/trace"
)

// Workspace is the loaded, not yet analysed, project.
type Workspace struct {
	Manifest *project.Manifest
	FileSet  *source.FileSet
	Types    *ast.TypeContext
	// Modules follow manifest order; a module whose files all failed to
	// load is still present, with no files.
	Modules []*ast.Module
	// ManifestFile is the FileID of c2sema.toml; project-level diagnostics
	// point at it.
	ManifestFile source.FileID
}

// loadSlot содержит состояние одного файла; каждая горутина пишет только в свой слот.
type loadSlot struct {
	module int
	path   string
	doc    *astwire.File
	err    error
	id     source.FileID
	file   *ast.File
	ok     bool
}

// Load reads every interchange file listed by the manifest and builds the
// AST of each module. Unreadable or malformed files are reported to r and
// left out; the returned error is only set when ctx is cancelled.
func Load(ctx context.Context, m *project.Manifest, r diag.Reporter, jobs int) (*Workspace, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "load", trace.Parent(ctx), trace.Subject{})

	ws := &Workspace{
		Manifest: m,
		FileSet:  source.NewFileSetWithBase(m.Root),
		Types:    ast.NewTypeContext(),
	}
	ws.ManifestFile = registerManifest(ws.FileSet, m)
	manifestSpan := source.Span{File: ws.ManifestFile}

	var slots []loadSlot
	for i, mc := range m.Modules {
		for _, path := range mc.FilePaths(m.Root) {
			slots = append(slots, loadSlot{module: i, path: path})
		}
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// 1: чтение и декодирование параллельно
	if err := forEachSlot(ctx, slots, jobs, func(s *loadSlot) {
		data, err := os.ReadFile(s.path) // #nosec G304 -- path comes from the manifest
		if err != nil {
			s.err = err
			return
		}
		s.doc, s.err = astwire.Unmarshal(data)
	}); err != nil {
		span.End("cancelled")
		return nil, err
	}

	// 2: регистрация в FileSet строго в порядке манифеста
	for i := range slots {
		s := &slots[i]
		want := m.Modules[s.module].Name
		switch {
		case s.err != nil:
			diag.ReportError(r, diag.IOLoadFileError, manifestSpan,
				fmt.Sprintf("failed to load %s: %v", s.path, s.err)).Emit()
			continue
		case s.doc.Module != want:
			diag.ReportError(r, diag.ProjInvalidModule, manifestSpan,
				fmt.Sprintf("%s belongs to module %q, but is listed under %q", s.path, s.doc.Module, want)).Emit()
			continue
		}
		s.id = registerDocument(ws.FileSet, m.Root, s.path, s.doc)
		trace.Point(tracer, trace.ScopeFile, "registered", span.ID(),
			trace.Subject{Module: want, File: ws.FileSet.Get(s.id).Path}, "")
	}

	// 3: построение AST; TypeContext общий и защищён мьютексом
	if err := forEachSlot(ctx, slots, jobs, func(s *loadSlot) {
		if s.err != nil || s.doc == nil || s.doc.Module != m.Modules[s.module].Name {
			return
		}
		s.file, s.err = astwire.Build(s.doc, s.id, ws.Types)
		s.ok = s.err == nil
	}); err != nil {
		span.End("cancelled")
		return nil, err
	}

	ws.Modules = make([]*ast.Module, len(m.Modules))
	for i, mc := range m.Modules {
		ws.Modules[i] = ast.NewModule(mc.Name, mc.External)
	}
	for i := range slots {
		s := &slots[i]
		if !s.ok {
			if s.doc != nil && s.err != nil {
				diag.ReportError(r, diag.IOLoadFileError, source.Span{File: s.id},
					fmt.Sprintf("malformed %s: %v", s.path, s.err)).Emit()
			}
			continue
		}
		ws.Modules[s.module].AddFile(s.file)
	}
	span.End(fmt.Sprintf("%d files", len(slots)))
	return ws, nil
}

func forEachSlot(ctx context.Context, slots []loadSlot, jobs int, fn func(*loadSlot)) error {
	if len(slots) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(slots)))
	for i := range slots {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fn(&slots[i])
			return nil
		})
	}
	return g.Wait()
}

func registerManifest(fs *source.FileSet, m *project.Manifest) source.FileID {
	if m.Path == "" {
		return fs.AddVirtual(project.ManifestName, nil)
	}
	id, err := fs.Load(m.Path)
	if err != nil {
		return fs.Add(m.Path, nil, source.FileNoContent)
	}
	return id
}

// registerDocument adds the source file a document was produced from. Without
// embedded text only the path is known, and snippets are not printed.
func registerDocument(fs *source.FileSet, root, wirePath string, doc *astwire.File) source.FileID {
	path := doc.Path
	switch {
	case path == "":
		path = wirePath
	case !filepath.IsAbs(path) && root != "":
		path = filepath.Join(root, filepath.FromSlash(path))
	}
	if doc.Source == "" {
		return fs.Add(path, nil, source.FileNoContent)
	}
	// spans are offsets into the text as written, so no CRLF/BOM normalisation
	return fs.Add(path, []byte(doc.Source), 0)
}
