package dag

import (
	"slices"
	"strings"

	"c2sema/internal/diag"
	"c2sema/internal/source"
)

// Graph stores edges from a used module to its users, so a topological
// order lists dependencies first.
type Graph struct {
	Edges [][]ModuleID // Edges[dep] = []user
	Indeg []int        // число различных модулей, которые использует узел
	// UseSpan[user][dep] is the first use of dep inside user.
	UseSpan []map[ModuleID]source.Span
}

// BuildGraph connects every module to the modules it uses. Unknown modules
// and self uses add no edge.
func BuildGraph(idx ModuleIndex, metas []ModuleMeta) Graph {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, n),
		Indeg:   make([]int, n),
		UseSpan: make([]map[ModuleID]source.Span, n),
	}
	for _, meta := range metas {
		user, ok := idx.NameToID[meta.Name]
		if !ok || g.UseSpan[user] != nil {
			continue
		}
		g.UseSpan[user] = make(map[ModuleID]source.Span, len(meta.Uses))
		for _, u := range meta.Uses {
			dep, ok := idx.NameToID[u.Name]
			if !ok || dep == user {
				continue
			}
			if _, dup := g.UseSpan[user][dep]; dup {
				continue
			}
			g.UseSpan[user][dep] = u.Span
			g.Edges[dep] = append(g.Edges[dep], user)
			g.Indeg[user]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g
}

// ReportCycles reports every module left in a cycle once, at its first use
// of another cycle member.
func ReportCycles(r diag.Reporter, idx ModuleIndex, g Graph, topo *Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	inCycle := make(map[ModuleID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[id])
		inCycle[id] = true
	}
	summary := strings.Join(names, ", ")

	for _, id := range topo.Cycles {
		var span source.Span
		found := false
		for _, dep := range topo.Cycles {
			if sp, ok := g.UseSpan[id][dep]; ok && inCycle[dep] {
				if !found || sp.Start < span.Start {
					span, found = sp, true
				}
			}
		}
		r.Report(diag.Errorf(diag.ProjUseCycle, span, "module %q is part of a use cycle: %s", idx.IDToName[id], summary))
	}
}
