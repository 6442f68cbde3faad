package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []ModuleID   // зависимости раньше использующих; циклы в конце
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Cycles  []ModuleID // узлы, оставшиеся в цикле
}

// ToposortKahn orders modules so that every module comes after the modules
// it uses. Ties keep manifest order. Modules stuck in a cycle (or behind
// one) are appended in manifest order.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := slices.Clone(g.Indeg)

	topo := &Topo{
		Order:   make([]ModuleID, 0, nodeCount),
		Batches: make([][]ModuleID, 0),
	}

	current := make([]ModuleID, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]ModuleID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != nodeCount {
		topo.Cyclic = true
		for i := 0; i < nodeCount; i++ {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toID(i))
			}
		}
		topo.Order = append(topo.Order, topo.Cycles...)
	}
	return topo
}

func toID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
