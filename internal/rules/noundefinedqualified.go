package rules

import (
	"fmt"
	"slices"

	"argus/internal/ast"
	"argus/internal/project"
	"argus/internal/rule"
)

type exportsProject struct {
	// exports перечисляет имена, которые каждый известный модуль отдаёт
	// наружу. Затравка из листингов зависимостей, дальше свёртка модулей.
	exports map[string][]string
}

type exportsModule struct {
	avail   map[string][]string // общий контекст волны, только чтение
	imports map[string]string   // локальное имя → путь модуля
	ownAll  bool
	own     []string
	decls   []string
}

// NoUndefinedQualified flags qualified references to names the imported
// module does not expose. Exported-name sets flow along the import
// order, so a module is checked only against modules it directly
// imports; dependency listings seed the same map for library modules.
// A qualifier that is not an import at all is the compiler's problem,
// not this rule's.
func NoUndefinedQualified() *rule.Rule {
	return mustBuild(rule.NewProjectSchema[*exportsProject, *exportsModule]("noundefinedqualified", func() *exportsProject {
		return &exportsProject{exports: make(map[string][]string)}
	}).
		WithDependencySetVisitor(func(deps *project.DependencySet, p *exportsProject) ([]rule.Error, *exportsProject) {
			for _, dep := range deps.All() {
				for _, mod := range dep.Modules {
					// в выражениях адресуемы только значения
					p.exports[mod.Path] = mod.Values
				}
			}
			return nil, p
		}).
		WithContextFromImportedModules().
		WithBridge(rule.Bridge[*exportsProject, *exportsModule]{
			ToModule: func(_ rule.ModuleKey, p *exportsProject) *exportsModule {
				return &exportsModule{
					avail:   p.exports,
					imports: make(map[string]string),
				}
			},
			ToProject: func(key rule.ModuleKey, m *exportsModule) *exportsProject {
				own := m.own
				if m.ownAll {
					own = m.decls
				}
				return &exportsProject{exports: map[string][]string{key.Path(): own}}
			},
			Fold: func(a, b *exportsProject) *exportsProject {
				merged := make(map[string][]string, len(a.exports)+len(b.exports))
				for path, names := range a.exports {
					merged[path] = names
				}
				for path, names := range b.exports {
					merged[path] = names
				}
				return &exportsProject{exports: merged}
			},
		}).
		WithModuleVisitor(func(ms *rule.ModuleSchema[*exportsModule]) {
			ms.
				WithHeaderVisitor(func(h *ast.Header, m *exportsModule) ([]rule.Error, *exportsModule) {
					m.ownAll = h.Exposing.All
					for _, n := range h.Exposing.Names {
						m.own = append(m.own, n.Name)
					}
					return nil, m
				}).
				WithImportVisitor(func(imp *ast.Import, m *exportsModule) ([]rule.Error, *exportsModule) {
					m.imports[imp.LocalName()] = imp.Path
					return nil, m
				}).
				WithDeclarationListVisitor(func(decls []*ast.Decl, m *exportsModule) ([]rule.Error, *exportsModule) {
					for _, d := range decls {
						m.decls = append(m.decls, d.Name)
					}
					return nil, m
				}).
				WithExpressionEnterVisitor(func(e ast.Expr, m *exportsModule) ([]rule.Error, *exportsModule) {
					id, ok := e.(*ast.Ident)
					if !ok || id.Qual == "" {
						return nil, m
					}
					path, imported := m.imports[id.Qual]
					if !imported {
						return nil, m
					}
					names, known := m.avail[path]
					if !known || slices.Contains(names, id.Name) {
						return nil, m
					}
					err := rule.NewError(
						fmt.Sprintf("%s.%s is not exposed by %s", id.Qual, id.Name, path),
						id.Loc,
					)
					return []rule.Error{err}, m
				})
		}).
		Build())
}
