package rules

import (
	"fmt"
	"strings"

	"argus/internal/ast"
	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/source"
)

type unusedDepsProject struct {
	hasManifest bool
	direct      []string
	provided    map[string]string // путь модуля библиотеки → имя зависимости
	imported    map[string]bool
}

type unusedDepsModule struct {
	imported map[string]bool
}

// NoUnusedDeps flags direct dependencies from the manifest that no
// module of the project imports. Imports resolve to a dependency via
// its listing; a dependency without one falls back to the first path
// segment. Test dependencies are not checked.
func NoUnusedDeps() *rule.Rule {
	return mustBuild(rule.NewProjectSchema[*unusedDepsProject, *unusedDepsModule]("nounuseddeps", func() *unusedDepsProject {
		return &unusedDepsProject{
			provided: make(map[string]string),
			imported: make(map[string]bool),
		}
	}).
		WithManifestVisitor(func(m *project.Manifest, p *unusedDepsProject) ([]rule.Error, *unusedDepsProject) {
			p.hasManifest = true
			p.direct = m.Direct
			return nil, p
		}).
		WithDependencySetVisitor(func(deps *project.DependencySet, p *unusedDepsProject) ([]rule.Error, *unusedDepsProject) {
			for _, dep := range deps.All() {
				for _, mod := range dep.Modules {
					p.provided[mod.Path] = dep.Name
				}
			}
			return nil, p
		}).
		WithBridge(rule.Bridge[*unusedDepsProject, *unusedDepsModule]{
			ToModule: func(_ rule.ModuleKey, _ *unusedDepsProject) *unusedDepsModule {
				return &unusedDepsModule{imported: make(map[string]bool)}
			},
			ToProject: func(_ rule.ModuleKey, m *unusedDepsModule) *unusedDepsProject {
				return &unusedDepsProject{imported: m.imported}
			},
			Fold: func(a, b *unusedDepsProject) *unusedDepsProject {
				// вклады модулей несут только imported, остальное — из затравки
				out := &unusedDepsProject{
					hasManifest: a.hasManifest || b.hasManifest,
					direct:      a.direct,
					provided:    a.provided,
					imported:    make(map[string]bool, len(a.imported)+len(b.imported)),
				}
				if len(out.direct) == 0 {
					out.direct = b.direct
				}
				if len(out.provided) == 0 {
					out.provided = b.provided
				}
				for path := range a.imported {
					out.imported[path] = true
				}
				for path := range b.imported {
					out.imported[path] = true
				}
				return out
			},
		}).
		WithModuleVisitor(func(ms *rule.ModuleSchema[*unusedDepsModule]) {
			ms.WithImportVisitor(func(imp *ast.Import, m *unusedDepsModule) ([]rule.Error, *unusedDepsModule) {
				m.imported[imp.Path] = true
				return nil, m
			})
		}).
		WithFinalProjectEvaluation(func(p *unusedDepsProject) []rule.Error {
			if !p.hasManifest || len(p.direct) == 0 {
				return nil
			}
			used := make(map[string]bool, len(p.imported))
			for path := range p.imported {
				if dep, ok := p.provided[path]; ok {
					used[dep] = true
					continue
				}
				if i := strings.IndexByte(path, '/'); i > 0 {
					used[path[:i]] = true
				} else {
					used[path] = true
				}
			}
			key := rule.NewModuleKey("", project.ManifestName)
			var errs []rule.Error
			for _, name := range p.direct {
				if used[name] {
					continue
				}
				errs = append(errs, rule.NewWarning(
					fmt.Sprintf("dependency %s is never imported", name),
					source.Span{},
				).ForModule(key))
			}
			return errs
		}).
		Build())
}
