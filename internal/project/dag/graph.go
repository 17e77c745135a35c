package dag

import "slices"

// Graph хранит рёбра в обе стороны: Imports для обхода зависимостей,
// Importers для Кана и распространения инвалидации.
type Graph struct {
	Imports   [][]ModuleID // Imports[from] = модули, которые from импортирует
	Importers [][]ModuleID // Importers[to] = модули, которые импортируют to
}

func NewGraph(n int) *Graph {
	return &Graph{
		Imports:   make([][]ModuleID, n),
		Importers: make([][]ModuleID, n),
	}
}

func (g *Graph) Len() int { return len(g.Imports) }

// AddEdge добавляет ребро importer → imported. Дубликаты игнорируются.
// Self-import сохраняется: его поймает FindCycle.
func (g *Graph) AddEdge(from, to ModuleID) {
	if slices.Contains(g.Imports[int(from)], to) {
		return
	}
	g.Imports[int(from)] = append(g.Imports[int(from)], to)
	g.Importers[int(to)] = append(g.Importers[int(to)], from)
}

// Normalize сортирует списки смежности, после этого обходы детерминированы.
func (g *Graph) Normalize() {
	for i := range g.Imports {
		slices.Sort(g.Imports[i])
	}
	for i := range g.Importers {
		slices.Sort(g.Importers[i])
	}
}

// Reach returns the transitive import closure of from, excluding from
// itself, in ascending ID order.
func Reach(g *Graph, from ModuleID) []ModuleID {
	return closure(g.Imports, from)
}

// Affected returns every module that directly or transitively imports
// from, excluding from itself, in ascending ID order.
func Affected(g *Graph, from ModuleID) []ModuleID {
	return closure(g.Importers, from)
}

func closure(adj [][]ModuleID, from ModuleID) []ModuleID {
	seen := make(map[ModuleID]struct{})
	queue := append([]ModuleID(nil), adj[int(from)]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == from {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		queue = append(queue, adj[int(id)]...)
	}

	out := make([]ModuleID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
