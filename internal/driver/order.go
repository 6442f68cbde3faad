package driver

import (
	"c2sema/internal/ast"
	"c2sema/internal/diag"
	"c2sema/internal/project/dag"
)

// analysisOrder sorts modules so that every module comes after the modules
// it uses. Use cycles are reported; their members still get analysed, last.
func analysisOrder(modules []*ast.Module, r diag.Reporter) []*ast.Module {
	metas := make([]dag.ModuleMeta, len(modules))
	for i, m := range modules {
		metas[i] = dag.MetaOf(m)
	}
	idx := dag.BuildIndex(metas)
	g := dag.BuildGraph(idx, metas)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(r, idx, g, topo)

	byName := make(map[string]*ast.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}
	out := make([]*ast.Module, 0, len(topo.Order))
	for _, id := range topo.Order {
		out = append(out, byName[idx.IDToName[id]])
	}
	return out
}
