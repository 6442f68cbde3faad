package driver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"c2sema/internal/astwire"
	"c2sema/internal/diag"
	"c2sema/internal/source"
	"c2sema/internal/testkit"
)

func TestLoadRegistersFilesInManifestOrder(t *testing.T) {
	app := appDoc()
	app.Source = "module app;\r\nuse utils;\r\n" + strings.Repeat("\n", 120)
	m := writeProject(t, "", []string{"app", "utils"}, map[string]*astwire.File{
		"app":   app,
		"utils": utilsDoc(intLit(28, 1)),
	})
	bag := diag.NewBag(10)
	for i := 0; i < 3; i++ {
		ws, err := Load(context.Background(), m, diag.BagReporter{Bag: bag}, 4)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if bag.Len() != 0 {
			t.Fatalf("unexpected diagnostics: %v", bag.Codes())
		}
		if ws.ManifestFile != 0 || ws.FileSet.Len() != 3 {
			t.Fatalf("file set: manifest=%d len=%d", ws.ManifestFile, ws.FileSet.Len())
		}
		if base := filepath.Base(ws.FileSet.Get(1).Path); base != "app.c2" {
			t.Fatalf("first document must be app.c2, got %s", base)
		}
		appFile := ws.Modules[0].Files[0]
		if appFile.Source != 1 || appFile.Module != ws.Modules[0] {
			t.Fatalf("app file: %+v", appFile)
		}
		// текст хранится как есть: смещения спанов считаются по нему
		if got := string(ws.FileSet.Get(1).Content); got != app.Source {
			t.Fatalf("content changed: %q", got)
		}
		if f := ws.FileSet.Get(2); f.Flags&source.FileNoContent == 0 {
			t.Fatalf("utils has no embedded text and must be marked FileNoContent")
		}
		for _, mod := range ws.Modules {
			for _, f := range mod.Files {
				if err := testkit.CheckSpanInvariants(f, ws.FileSet.Get(f.Source)); err != nil {
					t.Fatalf("%s: %v", f.Path, err)
				}
			}
		}
	}
}
