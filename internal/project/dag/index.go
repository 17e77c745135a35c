package dag

import "sort"

type ModuleID uint32

type Index struct {
	PathToID map[string]ModuleID
	IDToPath []string
}

// собрать уникальные пути модулей, sort.Strings, раздать ID по порядку
func BuildIndex(paths []string) Index {
	uniq := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			uniq[p] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(uniq))
	for p := range uniq {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	pathToID := make(map[string]ModuleID, len(sorted))
	for i, p := range sorted {
		pathToID[p] = ModuleID(i)
	}

	return Index{
		PathToID: pathToID,
		IDToPath: sorted,
	}
}
