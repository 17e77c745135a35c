package project

import (
	"argus/internal/cache"
	"argus/internal/project/dag"
)

// computeFingerprints строит фингерпринт каждого модуля по порядку
// топосортировки: зависимости идут раньше, поэтому их фингерпринты уже
// готовы. Fingerprint = Combine(content, dep1, dep2 ...) по
// отсортированным рёбрам. Для циклического графа ничего не делает.
func computeFingerprints(idx dag.Index, g *dag.Graph, topo *dag.Topo, modules map[string]*Module) map[string]cache.Digest {
	fps := make(map[string]cache.Digest, len(modules))
	if topo == nil || topo.Cyclic {
		return fps
	}
	for _, id := range topo.Order {
		path := idx.IDToPath[int(id)]
		mod, ok := modules[path]
		if !ok {
			continue
		}
		deps := make([]cache.Digest, 0, len(g.Imports[int(id)]))
		for _, to := range g.Imports[int(id)] {
			deps = append(deps, fps[idx.IDToPath[int(to)]])
		}
		fps[path] = cache.Combine(mod.Content, deps...)
	}
	return fps
}
