package rule

import (
	"fmt"

	"argus/internal/project"
)

// ProjectSchema collects project-level visitors over a context of type
// P and, optionally, module visitors over M connected through a
// Bridge. newContext seeds the project context once per run.
type ProjectSchema[P, M any] struct {
	name       string
	newContext func() P
	ordered    bool

	modules []*ModuleSchema[M]
	bridge  *Bridge[P, M]

	manifest []func(*project.Manifest, P) ([]Error, P)
	readme   []func(*project.Readme, P) ([]Error, P)
	deps     []func(*project.DependencySet, P) ([]Error, P)
	final    []func(P) []Error
}

// NewProjectSchema starts a project rule named name.
func NewProjectSchema[P, M any](name string, newContext func() P) *ProjectSchema[P, M] {
	return &ProjectSchema[P, M]{name: name, newContext: newContext}
}

// WithManifestVisitor registers a callback for the project manifest.
// The manifest may be absent; the callback is skipped then.
func (s *ProjectSchema[P, M]) WithManifestVisitor(fn func(*project.Manifest, P) ([]Error, P)) *ProjectSchema[P, M] {
	s.manifest = append(s.manifest, fn)
	return s
}

// WithReadmeVisitor registers a callback for the project readme.
// The readme may be absent; the callback is skipped then.
func (s *ProjectSchema[P, M]) WithReadmeVisitor(fn func(*project.Readme, P) ([]Error, P)) *ProjectSchema[P, M] {
	s.readme = append(s.readme, fn)
	return s
}

// WithDependencySetVisitor registers a callback for the declared
// dependency listings.
func (s *ProjectSchema[P, M]) WithDependencySetVisitor(fn func(*project.DependencySet, P) ([]Error, P)) *ProjectSchema[P, M] {
	s.deps = append(s.deps, fn)
	return s
}

// WithFinalProjectEvaluation registers a callback run after every
// module contribution has been folded.
func (s *ProjectSchema[P, M]) WithFinalProjectEvaluation(fn func(P) []Error) *ProjectSchema[P, M] {
	s.final = append(s.final, fn)
	return s
}

// WithModuleVisitor attaches module visitors: configure receives a
// fresh module schema to register callbacks on. May be called more
// than once; lists concatenate in attachment order. Module contexts
// come from the bridge, not from the attached schema.
func (s *ProjectSchema[P, M]) WithModuleVisitor(configure func(*ModuleSchema[M])) *ProjectSchema[P, M] {
	ms := &ModuleSchema[M]{name: s.name}
	configure(ms)
	s.modules = append(s.modules, ms)
	return s
}

// WithBridge sets the context bridge between P and M.
func (s *ProjectSchema[P, M]) WithBridge(b Bridge[P, M]) *ProjectSchema[P, M] {
	s.bridge = &b
	return s
}

// WithContextFromImportedModules switches the rule to import-ordered
// traversal: ToModule receives the fold of the seed context with the
// already-folded contributions of the module's direct imports.
func (s *ProjectSchema[P, M]) WithContextFromImportedModules() *ProjectSchema[P, M] {
	s.ordered = true
	return s
}

// Build finalizes the schema into a runnable rule.
func (s *ProjectSchema[P, M]) Build() (*Rule, error) {
	if s.name == "" {
		return nil, ErrNoName
	}
	if s.newContext == nil {
		return nil, fmt.Errorf("rule %s: nil context constructor", s.name)
	}
	hasModule := false
	for _, ms := range s.modules {
		if ms.hasAny() {
			hasModule = true
			break
		}
	}
	hasProject := len(s.manifest) > 0 || len(s.readme) > 0 || len(s.deps) > 0 || len(s.final) > 0
	if !hasModule && !hasProject {
		return nil, fmt.Errorf("rule %s: %w", s.name, ErrNoVisitors)
	}
	if hasModule && s.bridge == nil {
		return nil, fmt.Errorf("rule %s: %w", s.name, ErrNoBridge)
	}
	if s.bridge != nil && (s.bridge.ToModule == nil || s.bridge.ToProject == nil || s.bridge.Fold == nil) {
		return nil, fmt.Errorf("rule %s: incomplete bridge: %w", s.name, ErrNoBridge)
	}

	r := &Rule{
		name:    s.name,
		ordered: s.ordered,
		initialProject: func() any {
			return s.newContext()
		},
	}
	if s.bridge != nil {
		b := *s.bridge
		r.toModule = func(k ModuleKey, p any) any { return b.ToModule(k, p.(P)) }
		r.toProject = func(k ModuleKey, m any) any { return b.ToProject(k, m.(M)) }
		r.fold = func(a, c any) any { return b.Fold(a.(P), c.(P)) }
	} else {
		// правило без модульных визитеров: контексты не конвертируются
		r.toModule = func(_ ModuleKey, p any) any { return p }
		r.toProject = func(_ ModuleKey, m any) any { return m }
		r.fold = func(_, c any) any { return c }
	}

	for _, ms := range s.modules {
		r.headerVisitors = append(r.headerVisitors, eraseList(ms.header)...)
		r.commentsVisitors = append(r.commentsVisitors, eraseList(ms.comments)...)
		r.importVisitors = append(r.importVisitors, eraseList(ms.imports)...)
		r.declListVisitors = append(r.declListVisitors, eraseList(ms.declList)...)
		r.declVisitors = append(r.declVisitors, eraseDirList(ms.decls)...)
		r.exprVisitors = append(r.exprVisitors, eraseDirList(ms.exprs)...)
		r.finalModule = append(r.finalModule, eraseFinal(ms.final)...)
	}
	r.manifestVisitors = eraseList(s.manifest)
	r.readmeVisitors = eraseList(s.readme)
	r.depsVisitors = eraseList(s.deps)
	r.finalProject = eraseFinal(s.final)
	return r, nil
}

func eraseList[N, C any](visitors []func(N, C) ([]Error, C)) []func(N, any) ([]Error, any) {
	out := make([]func(N, any) ([]Error, any), len(visitors))
	for i, v := range visitors {
		v := v
		out[i] = func(n N, ctx any) ([]Error, any) {
			errs, next := v(n, ctx.(C))
			return errs, next
		}
	}
	return out
}

func eraseDirList[N, C any](visitors []func(N, Direction, C) ([]Error, C)) []func(N, Direction, any) ([]Error, any) {
	out := make([]func(N, Direction, any) ([]Error, any), len(visitors))
	for i, v := range visitors {
		v := v
		out[i] = func(n N, dir Direction, ctx any) ([]Error, any) {
			errs, next := v(n, dir, ctx.(C))
			return errs, next
		}
	}
	return out
}

func eraseFinal[C any](visitors []func(C) []Error) []func(any) []Error {
	out := make([]func(any) []Error, len(visitors))
	for i, v := range visitors {
		v := v
		out[i] = func(ctx any) []Error {
			return v(ctx.(C))
		}
	}
	return out
}
