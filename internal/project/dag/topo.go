package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []ModuleID   // линейный порядок: зависимости раньше зависящих
	Batches [][]ModuleID // волны взаимно независимых модулей
	Cyclic  bool
}

// Toposort — алгоритм Кана поверх числа импортов. Модули без зависимостей
// образуют первую волну; снятый модуль уменьшает счётчики своих импортёров.
// Волны отсортированы по ID, как и порядок внутри волны.
func Toposort(g *Graph) *Topo {
	n := g.Len()
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		indeg[i] = len(g.Imports[i])
	}

	topo := &Topo{
		Order:   make([]ModuleID, 0, n),
		Batches: make([][]ModuleID, 0),
	}

	current := make([]ModuleID, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			mID, err := safecast.Conv[ModuleID](i)
			if err != nil {
				panic(fmt.Errorf("module id overflow: %w", err))
			}
			current = append(current, mID)
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]ModuleID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]ModuleID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Importers[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	topo.Cyclic = visited != n
	return topo
}
