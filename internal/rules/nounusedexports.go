package rules

import (
	"fmt"

	"argus/internal/ast"
	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/source"
)

type exposedName struct {
	name string
	span source.Span
}

type moduleExports struct {
	key   rule.ModuleKey
	names []exposedName
}

type usedExportsProject struct {
	entries map[string]bool // пути модулей, освобождённых от проверки
	exports map[string]moduleExports
	uses    map[string]map[string]bool // путь → имена, использованные извне
	whole   map[string]bool            // пути, втянутые через exposing (..)
}

type usedExportsModule struct {
	imports map[string]string
	names   []exposedName
	uses    map[string]map[string]bool
	whole   map[string]bool
}

func markUse(uses map[string]map[string]bool, path, name string) {
	set := uses[path]
	if set == nil {
		set = make(map[string]bool)
		uses[path] = set
	}
	set[name] = true
}

// NoUnusedExports flags names a module exposes that no other module
// references, either qualified or through an import's exposing list.
// Modules exposing (..) are skipped: without an explicit list there is
// nothing to trim. The entry module of an application is exempt, its
// exports are the program's surface.
func NoUnusedExports() *rule.Rule {
	return mustBuild(rule.NewProjectSchema[*usedExportsProject, *usedExportsModule]("nounusedexports", func() *usedExportsProject {
		return &usedExportsProject{
			entries: make(map[string]bool),
			exports: make(map[string]moduleExports),
			uses:    make(map[string]map[string]bool),
			whole:   make(map[string]bool),
		}
	}).
		WithManifestVisitor(func(m *project.Manifest, p *usedExportsProject) ([]rule.Error, *usedExportsProject) {
			if m.Kind == project.KindApplication {
				p.entries["main"] = true
			}
			return nil, p
		}).
		WithBridge(rule.Bridge[*usedExportsProject, *usedExportsModule]{
			ToModule: func(_ rule.ModuleKey, _ *usedExportsProject) *usedExportsModule {
				return &usedExportsModule{
					imports: make(map[string]string),
					uses:    make(map[string]map[string]bool),
					whole:   make(map[string]bool),
				}
			},
			ToProject: func(key rule.ModuleKey, m *usedExportsModule) *usedExportsProject {
				return &usedExportsProject{
					exports: map[string]moduleExports{key.Path(): {key: key, names: m.names}},
					uses:    m.uses,
					whole:   m.whole,
				}
			},
			Fold: func(a, b *usedExportsProject) *usedExportsProject {
				out := &usedExportsProject{
					entries: make(map[string]bool, len(a.entries)+len(b.entries)),
					exports: make(map[string]moduleExports, len(a.exports)+len(b.exports)),
					uses:    make(map[string]map[string]bool, len(a.uses)+len(b.uses)),
					whole:   make(map[string]bool, len(a.whole)+len(b.whole)),
				}
				for _, side := range []*usedExportsProject{a, b} {
					for path := range side.entries {
						out.entries[path] = true
					}
					for path, exp := range side.exports {
						out.exports[path] = exp
					}
					for path, names := range side.uses {
						for name := range names {
							markUse(out.uses, path, name)
						}
					}
					for path := range side.whole {
						out.whole[path] = true
					}
				}
				return out
			},
		}).
		WithModuleVisitor(func(ms *rule.ModuleSchema[*usedExportsModule]) {
			ms.
				WithHeaderVisitor(func(h *ast.Header, m *usedExportsModule) ([]rule.Error, *usedExportsModule) {
					if h.Exposing.All {
						return nil, m
					}
					for _, n := range h.Exposing.Names {
						m.names = append(m.names, exposedName{name: n.Name, span: n.Loc})
					}
					return nil, m
				}).
				WithImportVisitor(func(imp *ast.Import, m *usedExportsModule) ([]rule.Error, *usedExportsModule) {
					m.imports[imp.LocalName()] = imp.Path
					if imp.Exposing == nil {
						return nil, m
					}
					if imp.Exposing.All {
						m.whole[imp.Path] = true
						return nil, m
					}
					for _, n := range imp.Exposing.Names {
						markUse(m.uses, imp.Path, n.Name)
					}
					return nil, m
				}).
				WithExpressionEnterVisitor(func(e ast.Expr, m *usedExportsModule) ([]rule.Error, *usedExportsModule) {
					id, ok := e.(*ast.Ident)
					if !ok || id.Qual == "" {
						return nil, m
					}
					if path, imported := m.imports[id.Qual]; imported {
						markUse(m.uses, path, id.Name)
					}
					return nil, m
				})
		}).
		WithFinalProjectEvaluation(func(p *usedExportsProject) []rule.Error {
			var errs []rule.Error
			for path, exp := range p.exports {
				if p.entries[path] || p.whole[path] {
					continue
				}
				for _, n := range exp.names {
					if p.uses[path][n.name] {
						continue
					}
					errs = append(errs, rule.NewWarning(
						fmt.Sprintf("exposed value %s is never used outside %s", n.name, path),
						n.span,
					).ForModule(exp.key))
				}
			}
			return errs
		}).
		Build())
}
