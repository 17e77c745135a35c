package dag

// FindCycle ищет первый цикл импортов обходом в глубину. Старты идут по
// возрастанию ID, списки смежности нормализованы, поэтому «первый» цикл
// детерминирован. Путь замкнут: первый и последний элементы совпадают.
func FindCycle(g *Graph) ([]ModuleID, bool) {
	n := g.Len()
	visited := make([]bool, n)
	onStack := make([]bool, n)
	parent := make([]ModuleID, n)

	var cycle []ModuleID

	var dfs func(id ModuleID) bool
	dfs = func(id ModuleID) bool {
		visited[int(id)] = true
		onStack[int(id)] = true

		for _, to := range g.Imports[int(id)] {
			if !visited[int(to)] {
				parent[int(to)] = id
				if dfs(to) {
					return true
				}
			} else if onStack[int(to)] {
				// нашли обратное ребро, восстанавливаем путь по parent
				cycle = []ModuleID{to}
				for curr := id; curr != to; curr = parent[int(curr)] {
					cycle = append([]ModuleID{curr}, cycle...)
				}
				cycle = append([]ModuleID{to}, cycle...)
				return true
			}
		}

		onStack[int(id)] = false
		return false
	}

	for i := 0; i < n; i++ {
		if !visited[i] {
			if dfs(ModuleID(i)) {
				return cycle, true
			}
		}
	}
	return nil, false
}
