// Package engine executes runnable rules over a validated project: it
// schedules per-module visits (parallel when the rule allows it),
// folds module contributions into a project context, consults the
// incremental cache and returns one globally ordered diagnostic list.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"argus/internal/cache"
	"argus/internal/diag"
	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/trace"
)

// DefaultMaxDiagnostics bounds the diagnostics of one run.
const DefaultMaxDiagnostics = 2048

// FilterFunc decides whether a rule runs on a file at all. It is
// applied before traversal; a skipped module is not visited and
// contributes nothing to the fold.
type FilterFunc func(ruleName, file string) bool

// Options configures one analysis run.
type Options struct {
	Rules  []*rule.Rule
	Filter FilterFunc
	// Jobs bounds worker goroutines per rule (GOMAXPROCS when <= 0).
	Jobs           int
	MaxDiagnostics int
	Sink           ProgressSink
	// ConfigFingerprint binds the project's cache to the rule
	// configuration that produced these options; a change purges the
	// cache. The zero digest leaves the cache unbound.
	ConfigFingerprint cache.Digest
}

// Result is the outcome of one analysis run.
type Result struct {
	// Diagnostics is sorted by file path, then span start, then span
	// end; ties keep emission order.
	Diagnostics []diag.Diagnostic
	// Contexts holds the final project context per rule name.
	Contexts map[string]any

	CacheHits   int
	CacheMisses int
}

// Clean reports whether the run produced no diagnostics.
func (res *Result) Clean() bool { return len(res.Diagnostics) == 0 }

// HasErrors reports whether any diagnostic is error severity.
func (res *Result) HasErrors() bool {
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Run executes every rule against the project. Rules run sequentially;
// modules within one rule run on a bounded worker pool. The project
// must be a valid non-stale snapshot.
func Run(ctx context.Context, p *project.Project, opts Options) (*Result, error) {
	if p == nil {
		return nil, errors.New("engine: nil project")
	}
	if p.Stale() {
		return nil, project.ErrStaleProject
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.Sink
	if sink == nil {
		sink = NopSink{}
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = DefaultMaxDiagnostics
	}
	if opts.ConfigFingerprint != (cache.Digest{}) {
		p.Cache().EnsureConfig(opts.ConfigFingerprint)
	}

	bag := diag.NewBag(maxDiags)
	res := &Result{Contexts: make(map[string]any, len(opts.Rules))}
	for _, r := range opts.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := runRule(ctx, p, r, opts.Filter, jobs, sink)
		if err != nil {
			return nil, err
		}
		for _, d := range run.diags {
			bag.Add(d)
		}
		res.Contexts[r.Name()] = run.final
		res.CacheHits += run.hits
		res.CacheMisses += run.misses
	}
	bag.Sort()
	res.Diagnostics = bag.Items()
	return res, nil
}

type ruleRun struct {
	diags  []diag.Diagnostic
	final  any
	hits   int
	misses int
}

// moduleOutcome is one module's result under one rule.
type moduleOutcome struct {
	contribution any
	diags        []diag.Diagnostic
	visited      bool
	cached       bool
}

func runRule(ctx context.Context, p *project.Project, r *rule.Rule, filter FilterFunc, jobs int, sink ProgressSink) (ruleRun, error) {
	start := time.Now()
	sink.OnEvent(Event{Rule: r.Name(), State: StateNotStarted})
	ruleSpan := trace.Begin(trace.FromContext(ctx), trace.ScopeRule, r.Name(), 0)

	var run ruleRun
	seed := r.NewProjectContext()
	var errs []rule.Error

	// проектные артефакты посещаются до модулей: их контекст — затравка
	// для модульных визитов
	if m, ok := p.Manifest(); ok {
		errs, seed = r.VisitManifest(m, seed)
		run.diags = append(run.diags, lower(errs, r.Name(), project.ManifestName)...)
	}
	if rd, ok := p.Readme(); ok {
		errs, seed = r.VisitReadme(rd, seed)
		run.diags = append(run.diags, lower(errs, r.Name(), project.ReadmeName)...)
	}
	errs, seed = r.VisitDependencies(p.DependencySet(), seed)
	run.diags = append(run.diags, lower(errs, r.Name(), "")...)

	outcomes := map[string]moduleOutcome{}
	if r.HasModuleVisitors() && p.Len() > 0 {
		sink.OnEvent(Event{Rule: r.Name(), State: StateVisitingModule})
		var err error
		if r.Ordered() {
			outcomes, err = runOrdered(ctx, p, r, seed, filter, jobs, sink, ruleSpan)
		} else {
			outcomes, err = runUnordered(ctx, p, r, seed, filter, jobs, sink, ruleSpan)
		}
		if err != nil {
			ruleSpan.End("interrupted")
			return run, err
		}
	}

	sink.OnEvent(Event{Rule: r.Name(), State: StateFolding})
	final := seed
	for _, path := range foldOrder(p, r) {
		out, ok := outcomes[path]
		if !ok || !out.visited {
			continue
		}
		final = r.Fold(final, out.contribution)
		run.diags = append(run.diags, out.diags...)
		if out.cached {
			run.hits++
		} else {
			run.misses++
		}
	}

	sink.OnEvent(Event{Rule: r.Name(), State: StateFinalEvaluation})
	run.diags = append(run.diags, lower(r.FinalProjectEval(final), r.Name(), "")...)
	run.final = final

	sink.OnEvent(Event{Rule: r.Name(), State: StateDone, Elapsed: time.Since(start)})
	ruleSpan.End(fmt.Sprintf("%d cached, %d computed", run.hits, run.misses))
	return run, nil
}

// foldOrder fixes the order contributions merge in: topological for
// import-ordered rules, namespace order otherwise. Fold associativity
// makes the choice invisible in the result; a fixed order keeps runs
// reproducible.
func foldOrder(p *project.Project, r *rule.Rule) []string {
	if r.Ordered() {
		return p.Order()
	}
	mods := p.Modules()
	paths := make([]string, len(mods))
	for i, mod := range mods {
		paths[i] = mod.Path
	}
	return paths
}

// runUnordered visits every module independently from the seed context.
func runUnordered(ctx context.Context, p *project.Project, r *rule.Rule, seed any, filter FilterFunc, jobs int, sink ProgressSink, rs *trace.Span) (map[string]moduleOutcome, error) {
	mods := p.Modules()

	// результаты пишутся по уникальным индексам, мьютекс не нужен
	results := make([]moduleOutcome, len(mods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(mods)))

	for i, mod := range mods {
		g.Go(func(i int, mod *project.Module) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				if filter != nil && !filter(r.Name(), mod.File) {
					sink.OnEvent(Event{Rule: r.Name(), Module: mod.Path, State: StateVisitingModule, Skipped: true})
					rs.Point(trace.ScopeModule, mod.Path, "skipped")
					return nil
				}

				// без межмодульных зависимостей отпечаток — только контент
				if e, ok := p.Cache().Lookup(r.Name(), mod.Path, mod.Content); ok {
					results[i] = moduleOutcome{contribution: e.Contribution, diags: e.Diagnostics, visited: true, cached: true}
					sink.OnEvent(Event{Rule: r.Name(), Module: mod.Path, State: StateVisitingModule, Cached: true})
					rs.Point(trace.ScopeModule, mod.Path, "cached")
					return nil
				}

				results[i] = visitOne(r, mod, seed, mod.Content, p.Cache())
				sink.OnEvent(Event{Rule: r.Name(), Module: mod.Path, State: StateVisitingModule})
				rs.Point(trace.ScopeModule, mod.Path, "")
				return nil
			}
		}(i, mod))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcomes := make(map[string]moduleOutcome, len(mods))
	for i, mod := range mods {
		if results[i].visited {
			outcomes[mod.Path] = results[i]
		}
	}
	return outcomes, nil
}

// runOrdered visits modules wave by wave along the topological order;
// each module starts from the seed folded with the contributions of
// its direct imports.
func runOrdered(ctx context.Context, p *project.Project, r *rule.Rule, seed any, filter FilterFunc, jobs int, sink ProgressSink, rs *trace.Span) (map[string]moduleOutcome, error) {
	outcomes := make(map[string]moduleOutcome, p.Len())

	for _, wave := range p.Batches() {
		results := make([]moduleOutcome, len(wave))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(wave)))

		for i, path := range wave {
			g.Go(func(i int, path string) func() error {
				return func() error {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}

					mod, ok := p.ModuleByPath(path)
					if !ok {
						return nil
					}
					if filter != nil && !filter(r.Name(), mod.File) {
						sink.OnEvent(Event{Rule: r.Name(), Module: path, State: StateVisitingModule, Skipped: true})
						rs.Point(trace.ScopeModule, path, "skipped")
						return nil
					}

					fp, haveFP := p.Fingerprint(path)
					if haveFP {
						if e, ok := p.Cache().Lookup(r.Name(), path, fp); ok {
							results[i] = moduleOutcome{contribution: e.Contribution, diags: e.Diagnostics, visited: true, cached: true}
							sink.OnEvent(Event{Rule: r.Name(), Module: path, State: StateVisitingModule, Cached: true})
							rs.Point(trace.ScopeModule, path, "cached")
							return nil
						}
					}

					// вклады прямых импортов уже опубликованы прошлыми волнами
					start := seed
					for _, dep := range p.Imports(path) {
						if out, ok := outcomes[dep]; ok && out.visited {
							start = r.Fold(start, out.contribution)
						}
					}

					var store *cache.Store
					if haveFP {
						store = p.Cache()
					}
					results[i] = visitOne(r, mod, start, fp, store)
					sink.OnEvent(Event{Rule: r.Name(), Module: path, State: StateVisitingModule})
					rs.Point(trace.ScopeModule, path, "")
					return nil
				}
			}(i, path))
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		// публикация после барьера волны: следующие волны читают без гонок
		for i, path := range wave {
			if results[i].visited {
				outcomes[path] = results[i]
			}
		}
	}
	return outcomes, nil
}

// visitOne runs the full per-module visitor chain and stores the
// outcome under fp when store is non-nil.
func visitOne(r *rule.Rule, mod *project.Module, start any, fp cache.Digest, store *cache.Store) moduleOutcome {
	key := rule.NewModuleKey(mod.Path, mod.File)
	mctx := r.ToModuleContext(key, start)
	errs, mctx := visitModule(r, mod, mctx)
	contrib := r.ToProjectContext(key, mctx)
	diags := lower(errs, r.Name(), mod.File)
	store.Put(r.Name(), mod.Path, cache.Entry{Fingerprint: fp, Contribution: contrib, Diagnostics: diags})
	return moduleOutcome{contribution: contrib, diags: diags, visited: true}
}
