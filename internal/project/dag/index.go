package dag

import (
	"fmt"

	"fortio.org/safecast"

	"c2sema/internal/ast"
	"c2sema/internal/source"
)

type ModuleID uint32

// Use is one "use" of another module.
type Use struct {
	Name string
	Span source.Span
}

// ModuleMeta is what ordering needs to know about a module.
type ModuleMeta struct {
	Name string
	Uses []Use
}

// MetaOf collects the modules m uses, in file order.
func MetaOf(m *ast.Module) ModuleMeta {
	meta := ModuleMeta{Name: m.Name}
	for _, f := range m.Files {
		for _, u := range f.Uses {
			meta.Uses = append(meta.Uses, Use{Name: u.Name, Span: u.Span})
		}
	}
	return meta
}

type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// BuildIndex раздаёт ID в порядке манифеста; повторные имена игнорируются
// (манифест их уже отверг). Используемые, но не объявленные модули в индекс
// не попадают: о них сообщает анализ use.
func BuildIndex(metas []ModuleMeta) ModuleIndex {
	idx := ModuleIndex{NameToID: make(map[string]ModuleID, len(metas))}
	for _, meta := range metas {
		if _, ok := idx.NameToID[meta.Name]; ok || meta.Name == "" {
			continue
		}
		id, err := safecast.Conv[ModuleID](len(idx.IDToName))
		if err != nil {
			panic(fmt.Errorf("module id overflow: %w", err))
		}
		idx.NameToID[meta.Name] = id
		idx.IDToName = append(idx.IDToName, meta.Name)
	}
	return idx
}
