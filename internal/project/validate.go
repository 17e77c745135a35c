package project

import (
	"sort"

	"argus/internal/cache"
	"argus/internal/project/dag"
)

// Validate проверяет набор распарсенных модулей и собирает из них
// неизменяемый Project. Порядок проверок фиксирован: парсинг → пустой
// набор → дубликаты имён → цикл импортов. Любая ошибка типизирована,
// частично построенных проектов не бывает.
func Validate(raw []RawModule, manifest *Manifest, readme *Readme, deps *DependencySet) (*Project, error) {
	if failed := collectParseFailures(raw); len(failed) > 0 {
		return nil, &ParseFailedError{Files: failed}
	}
	if len(raw) == 0 {
		return nil, ErrNoModules
	}
	if dup := findDuplicateName(raw); dup != nil {
		return nil, dup
	}

	modules := make(map[string]*Module, len(raw))
	byFile := make(map[string]*Module, len(raw))
	paths := make([]string, 0, len(raw))
	for _, rm := range raw {
		m := &Module{
			Path:    rm.AST.Name(),
			File:    rm.File,
			FileID:  rm.FileID,
			AST:     rm.AST,
			Content: rm.Content,
		}
		modules[m.Path] = m
		byFile[m.File] = m
		paths = append(paths, m.Path)
	}

	idx, graph := buildGraph(paths, modules)

	if cycle, found := dag.FindCycle(graph); found {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = idx.IDToPath[int(id)]
		}
		return nil, &ImportCycleError{Cycle: names}
	}

	topo := dag.Toposort(graph)
	fps := computeFingerprints(idx, graph, topo, modules)

	if deps == nil {
		deps = NewDependencySet(nil)
	}
	return &Project{
		modules:  modules,
		byFile:   byFile,
		manifest: manifest,
		readme:   readme,
		deps:     deps,
		idx:      idx,
		graph:    graph,
		topo:     topo,
		fps:      fps,
		store:    cache.NewStore(cache.DefaultCapacity),
	}, nil
}

func collectParseFailures(raw []RawModule) []string {
	var failed []string
	for _, rm := range raw {
		if rm.AST == nil {
			failed = append(failed, rm.File)
		}
	}
	sort.Strings(failed)
	return failed
}

// findDuplicateName группирует файлы по объявленному пути неймспейса.
// При нескольких дубликатах сообщается лексикографически наименьшее имя.
func findDuplicateName(raw []RawModule) *DuplicateNamesError {
	byName := make(map[string][]string, len(raw))
	for _, rm := range raw {
		name := rm.AST.Name()
		byName[name] = append(byName[name], rm.File)
	}

	dupName := ""
	for name, files := range byName {
		if len(files) < 2 {
			continue
		}
		if dupName == "" || name < dupName {
			dupName = name
		}
	}
	if dupName == "" {
		return nil
	}
	files := byName[dupName]
	sort.Strings(files)
	return &DuplicateNamesError{Name: dupName, Files: files}
}

// buildGraph строит граф только по импортам, указывающим на модули
// проекта; внешние импорты разрешаются таблицей зависимостей и рёбер
// не образуют.
func buildGraph(paths []string, modules map[string]*Module) (dag.Index, *dag.Graph) {
	idx := dag.BuildIndex(paths)
	graph := dag.NewGraph(len(idx.IDToPath))

	for path, mod := range modules {
		from := idx.PathToID[path]
		for _, imp := range mod.ImportPaths() {
			if _, local := modules[imp]; !local {
				continue
			}
			graph.AddEdge(from, idx.PathToID[imp])
		}
	}
	graph.Normalize()
	return idx, graph
}
