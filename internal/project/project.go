package project

import (
	"argus/internal/cache"
	"argus/internal/project/dag"
)

// Project is an immutable validated snapshot of the analyzed program:
// модули распарсены, имена уникальны, граф импортов ацикличен. Любая
// мутация (Patch, WithCache) возвращает производное значение, читатели
// старого снапшота остаются валидными.
type Project struct {
	modules  map[string]*Module // по пути неймспейса
	byFile   map[string]*Module // по пути файла
	manifest *Manifest
	readme   *Readme
	deps     *DependencySet
	idx      dag.Index
	graph    *dag.Graph
	topo     *dag.Topo
	fps      map[string]cache.Digest
	store    *cache.Store
	stale    bool // импорт-набор менялся патчем, graph/topo/fps устарели
}

// Modules returns every module sorted by namespace path.
func (p *Project) Modules() []*Module {
	out := make([]*Module, 0, len(p.modules))
	for _, path := range p.idx.IDToPath {
		if m, ok := p.modules[path]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ModuleByPath looks a module up by its namespace path.
func (p *Project) ModuleByPath(path string) (*Module, bool) {
	m, ok := p.modules[path]
	return m, ok
}

// ModuleByFile looks a module up by its file path.
func (p *Project) ModuleByFile(file string) (*Module, bool) {
	m, ok := p.byFile[file]
	return m, ok
}

// Len returns the module count.
func (p *Project) Len() int { return len(p.modules) }

// Manifest returns the project manifest, when one was loaded.
func (p *Project) Manifest() (*Manifest, bool) {
	return p.manifest, p.manifest != nil
}

// Readme returns the project readme, when one was loaded.
func (p *Project) Readme() (*Readme, bool) {
	return p.readme, p.readme != nil
}

// DependencySet returns the resolved library dependency table.
func (p *Project) DependencySet() *DependencySet { return p.deps }

// AllDependencies returns every installed dependency.
func (p *Project) AllDependencies() []*Dependency { return p.deps.All() }

// DirectDependencies returns the installed dependencies declared by the
// manifest (direct plus test). Без манифеста или без секции
// [dependencies] возвращаются все установленные зависимости: разрешающий
// дефолт сохранён сознательно.
func (p *Project) DirectDependencies() []*Dependency {
	if p.manifest == nil {
		return p.deps.All()
	}
	declared := p.manifest.DeclaredDependencies()
	if len(declared) == 0 {
		return p.deps.All()
	}
	out := make([]*Dependency, 0, len(declared))
	for _, name := range declared {
		if dep, ok := p.deps.Resolve(name); ok {
			out = append(out, dep)
		}
	}
	return out
}

// Graph returns the import graph together with its path index.
func (p *Project) Graph() (dag.Index, *dag.Graph) { return p.idx, p.graph }

// Order returns namespace paths in import-topological order: каждый
// модуль идёт после всех модулей, которые он импортирует.
func (p *Project) Order() []string {
	out := make([]string, 0, len(p.topo.Order))
	for _, id := range p.topo.Order {
		out = append(out, p.idx.IDToPath[int(id)])
	}
	return out
}

// Batches returns waves of mutually independent namespace paths; wave N
// depends only on waves before it.
func (p *Project) Batches() [][]string {
	out := make([][]string, len(p.topo.Batches))
	for i, batch := range p.topo.Batches {
		wave := make([]string, len(batch))
		for j, id := range batch {
			wave[j] = p.idx.IDToPath[int(id)]
		}
		out[i] = wave
	}
	return out
}

// Imports returns the project-local modules that path imports, sorted.
func (p *Project) Imports(path string) []string {
	id, ok := p.idx.PathToID[path]
	if !ok {
		return nil
	}
	edges := p.graph.Imports[int(id)]
	out := make([]string, len(edges))
	for i, to := range edges {
		out[i] = p.idx.IDToPath[int(to)]
	}
	return out
}

// Importers returns the project-local modules that import path, sorted.
func (p *Project) Importers(path string) []string {
	id, ok := p.idx.PathToID[path]
	if !ok {
		return nil
	}
	edges := p.graph.Importers[int(id)]
	out := make([]string, len(edges))
	for i, from := range edges {
		out[i] = p.idx.IDToPath[int(from)]
	}
	return out
}

// Fingerprint returns the module's dependency-aware content fingerprint.
func (p *Project) Fingerprint(path string) (cache.Digest, bool) {
	fp, ok := p.fps[path]
	return fp, ok
}

// Cache returns the incremental analysis store owned by this project.
func (p *Project) Cache() *cache.Store { return p.store }

// WithCache returns a derived project that carries store. Так кэш
// протаскивается между последовательными прогонами watch-режима.
func (p *Project) WithCache(store *cache.Store) *Project {
	next := *p
	next.store = store
	return &next
}

// Stale reports whether an import-changing patch invalidated the graph,
// order and fingerprints. A stale project must be revalidated before
// the next traversal.
func (p *Project) Stale() bool { return p.stale }

// Patch attempts to accept a single replacement module. Закрытый мир:
// файл обязан уже существовать в проекте, новые файлы так не добавить.
// Переименование неймспейса отклоняется (false) — это сигнал о
// несогласованности, разрешаемый только полной ревалидацией. При
// неизменном наборе импортов graph/order сохраняются, фингерпринты
// пересчитываются для модуля и его импортёров; при изменённом наборе
// проект помечается как stale.
func (p *Project) Patch(rm RawModule) (*Project, bool) {
	if rm.AST == nil {
		return nil, false
	}
	old, ok := p.byFile[rm.File]
	if !ok {
		return nil, false
	}
	if rm.AST.Name() != old.Path {
		return nil, false
	}

	replacement := &Module{
		Path:    old.Path,
		File:    rm.File,
		FileID:  rm.FileID,
		AST:     rm.AST,
		Content: rm.Content,
	}

	next := *p
	next.modules = make(map[string]*Module, len(p.modules))
	for k, v := range p.modules {
		next.modules[k] = v
	}
	next.byFile = make(map[string]*Module, len(p.byFile))
	for k, v := range p.byFile {
		next.byFile[k] = v
	}
	next.modules[replacement.Path] = replacement
	next.byFile[replacement.File] = replacement

	if !sameImportSet(old.ImportPaths(), replacement.ImportPaths()) {
		next.stale = true
		return &next, true
	}

	next.fps = refreshFingerprints(p, replacement)
	return &next, true
}

// refreshFingerprints пересчитывает фингерпринт изменённого модуля и всех,
// кто транзитивно его импортирует. Порядок пересчёта — топологический.
func refreshFingerprints(p *Project, changed *Module) map[string]cache.Digest {
	fps := make(map[string]cache.Digest, len(p.fps))
	for k, v := range p.fps {
		fps[k] = v
	}

	changedID := p.idx.PathToID[changed.Path]
	dirty := make(map[dag.ModuleID]struct{}, 1)
	dirty[changedID] = struct{}{}
	for _, id := range dag.Affected(p.graph, changedID) {
		dirty[id] = struct{}{}
	}

	for _, id := range p.topo.Order {
		if _, ok := dirty[id]; !ok {
			continue
		}
		path := p.idx.IDToPath[int(id)]
		content := p.modules[path].Content
		if path == changed.Path {
			content = changed.Content
		}
		deps := make([]cache.Digest, 0, len(p.graph.Imports[int(id)]))
		for _, to := range p.graph.Imports[int(id)] {
			deps = append(deps, fps[p.idx.IDToPath[int(to)]])
		}
		fps[path] = cache.Combine(content, deps...)
	}
	return fps
}

// Revalidate re-runs full validation over the current module table,
// сохраняя манифест, ридми, зависимости и кэш.
func (p *Project) Revalidate() (*Project, error) {
	raw := make([]RawModule, 0, len(p.modules))
	for _, m := range p.modules {
		raw = append(raw, RawModule{
			File:    m.File,
			FileID:  m.FileID,
			AST:     m.AST,
			Content: m.Content,
		})
	}
	next, err := Validate(raw, p.manifest, p.readme, p.deps)
	if err != nil {
		return nil, err
	}
	return next.WithCache(p.store), nil
}

// Cursor is a forward iterator over modules in import-topological
// order. Built eagerly from the order computed at validation time.
type Cursor struct {
	order []*Module
	pos   int
}

// Cursor returns a cursor positioned at the first module.
func (p *Project) Cursor() *Cursor {
	order := make([]*Module, 0, len(p.topo.Order))
	for _, id := range p.topo.Order {
		if m, ok := p.modules[p.idx.IDToPath[int(id)]]; ok {
			order = append(order, m)
		}
	}
	return &Cursor{order: order}
}

// Next returns the next module, or false when exhausted.
func (c *Cursor) Next() (*Module, bool) {
	if c.pos >= len(c.order) {
		return nil, false
	}
	m := c.order[c.pos]
	c.pos++
	return m, true
}

// Reset repositions the cursor to the start.
func (c *Cursor) Reset() { c.pos = 0 }

// Len returns the total number of modules the cursor walks.
func (c *Cursor) Len() int { return len(c.order) }
