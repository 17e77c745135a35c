// Package rule defines the visitor-schema builders rules are written
// against and the runnable form the engine executes. Builders are
// generic over the rule's context types; Build erases them so the
// engine can drive every rule through one code path.
package rule

import (
	"errors"

	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/project"
	"argus/internal/source"
)

var (
	// ErrNoVisitors is returned by Build when no callback was registered
	// at any granularity. Пустая схема — ошибка конфигурации, не no-op.
	ErrNoVisitors = errors.New("rule schema has no visitors")
	// ErrNoBridge is returned by Build when a project schema attaches a
	// module schema without a context bridge.
	ErrNoBridge = errors.New("rule schema has module visitors but no context bridge")
	// ErrNoName is returned by Build when the schema name is empty.
	ErrNoName = errors.New("rule schema has no name")
)

// Direction tags a declaration or expression visit.
type Direction uint8

const (
	OnEnter Direction = iota
	OnExit
)

func (d Direction) String() string {
	if d == OnExit {
		return "exit"
	}
	return "enter"
}

// ModuleKey is the capability to attribute an error to a concrete
// module. Ключи выдаёт только обходчик; правило может сохранить ключ в
// своём контексте и использовать его в финальной проектной оценке.
type ModuleKey struct {
	path string
	file string
}

// NewModuleKey mints a key. The engine mints keys for every visited
// module; project visitors may mint file-only keys (empty path) to
// target findings at non-module artifacts such as the manifest.
func NewModuleKey(path, file string) ModuleKey {
	return ModuleKey{path: path, file: file}
}

// Path returns the module namespace path.
func (k ModuleKey) Path() string { return k.path }

// File returns the module file path.
func (k ModuleKey) File() string { return k.file }

// Zero reports whether the key carries no module.
func (k ModuleKey) Zero() bool { return k.path == "" && k.file == "" }

// Error is one finding produced by a visitor. Target управляется
// возможностями: модульные визитеры получают файл текущего модуля
// автоматически, проектные — глобальную цель, если не предъявлен ключ.
type Error struct {
	Severity diag.Severity
	Message  string
	Details  []string
	Span     source.Span
	Notes    []diag.Note
	Fixes    []diag.Fix

	target    string
	forModule bool
}

// NewError creates an error-severity finding anchored at span.
func NewError(msg string, span source.Span) Error {
	return Error{Severity: diag.SevError, Message: msg, Span: span}
}

// NewWarning creates a warning-severity finding anchored at span.
func NewWarning(msg string, span source.Span) Error {
	return Error{Severity: diag.SevWarning, Message: msg, Span: span}
}

// NewInfo creates an info-severity finding anchored at span.
func NewInfo(msg string, span source.Span) Error {
	return Error{Severity: diag.SevInfo, Message: msg, Span: span}
}

// WithDetails appends detail paragraphs.
func (e Error) WithDetails(paragraphs ...string) Error {
	e.Details = append(e.Details, paragraphs...)
	return e
}

// WithNote attaches a secondary location with its own message.
func (e Error) WithNote(span source.Span, msg string) Error {
	e.Notes = append(e.Notes, diag.Note{Span: span, Msg: msg})
	return e
}

// WithFix attaches a suggested fix.
func (e Error) WithFix(title string, edits ...diag.TextEdit) Error {
	e.Fixes = append(e.Fixes, diag.Fix{Title: title, Edits: edits})
	return e
}

// ForModule targets the error at the module behind key. Это
// единственный способ проектного визитера пометить ошибку модульной.
func (e Error) ForModule(key ModuleKey) Error {
	if key.Zero() {
		return e
	}
	e.target = key.file
	e.forModule = true
	return e
}

// Diagnostic lowers the finding into the shared diagnostic model.
// fallbackPath подставляется, когда цель не задана: файл текущего
// модуля для модульных визитеров, "" (глобально) для проектных.
func (e Error) Diagnostic(ruleName, fallbackPath string) diag.Diagnostic {
	path := e.target
	if path == "" {
		path = fallbackPath
	}
	return diag.Diagnostic{
		Rule:     ruleName,
		Severity: e.Severity,
		Message:  e.Message,
		Details:  e.Details,
		Path:     path,
		Primary:  e.Span,
		Notes:    e.Notes,
		Fixes:    e.Fixes,
	}
}

// Bridge converts between the project context P and the module context
// M and folds project contributions. Fold обязан быть ассоциативным по
// наблюдаемому эффекту: при неупорядоченном обходе порядок свёртки
// недетерминирован.
type Bridge[P, M any] struct {
	ToModule  func(key ModuleKey, projectCtx P) M
	ToProject func(key ModuleKey, moduleCtx M) P
	Fold      func(a, b P) P
}

// Rule is the finalized, type-erased runnable form of a schema. All
// hook lists run in registration order; контексты протаскиваются через
// each callback по цепочке.
type Rule struct {
	name    string
	ordered bool

	initialProject func() any
	toModule       func(ModuleKey, any) any
	toProject      func(ModuleKey, any) any
	fold           func(a, b any) any

	headerVisitors   []func(*ast.Header, any) ([]Error, any)
	commentsVisitors []func([]ast.Comment, any) ([]Error, any)
	importVisitors   []func(*ast.Import, any) ([]Error, any)
	declListVisitors []func([]*ast.Decl, any) ([]Error, any)
	declVisitors     []func(*ast.Decl, Direction, any) ([]Error, any)
	exprVisitors     []func(ast.Expr, Direction, any) ([]Error, any)
	finalModule      []func(any) []Error

	manifestVisitors []func(*project.Manifest, any) ([]Error, any)
	readmeVisitors   []func(*project.Readme, any) ([]Error, any)
	depsVisitors     []func(*project.DependencySet, any) ([]Error, any)
	finalProject     []func(any) []Error
}

// Name returns the rule name diagnostics are reported under.
func (r *Rule) Name() string { return r.name }

// Ordered reports whether the rule needs import-ordered traversal.
func (r *Rule) Ordered() bool { return r.ordered }

// HasModuleVisitors reports whether any per-module hook is registered.
func (r *Rule) HasModuleVisitors() bool {
	return len(r.headerVisitors) > 0 ||
		len(r.commentsVisitors) > 0 ||
		len(r.importVisitors) > 0 ||
		len(r.declListVisitors) > 0 ||
		len(r.declVisitors) > 0 ||
		len(r.exprVisitors) > 0 ||
		len(r.finalModule) > 0
}

// HasProjectVisitors reports whether any project-level hook is registered.
func (r *Rule) HasProjectVisitors() bool {
	return len(r.manifestVisitors) > 0 ||
		len(r.readmeVisitors) > 0 ||
		len(r.depsVisitors) > 0 ||
		len(r.finalProject) > 0
}

// NewProjectContext returns a fresh seed project context.
func (r *Rule) NewProjectContext() any { return r.initialProject() }

// ToModuleContext lowers a project context into a module context.
func (r *Rule) ToModuleContext(key ModuleKey, projectCtx any) any {
	return r.toModule(key, projectCtx)
}

// ToProjectContext lifts a visited module context back into a project
// contribution.
func (r *Rule) ToProjectContext(key ModuleKey, moduleCtx any) any {
	return r.toProject(key, moduleCtx)
}

// Fold merges two project contributions.
func (r *Rule) Fold(a, b any) any { return r.fold(a, b) }

func runList[N any](visitors []func(N, any) ([]Error, any), node N, ctx any) ([]Error, any) {
	var errs []Error
	for _, v := range visitors {
		var es []Error
		es, ctx = v(node, ctx)
		errs = append(errs, es...)
	}
	return errs, ctx
}

// VisitHeader runs the module-definition hooks.
func (r *Rule) VisitHeader(h *ast.Header, ctx any) ([]Error, any) {
	return runList(r.headerVisitors, h, ctx)
}

// VisitComments runs the comments hooks over the module's comments.
func (r *Rule) VisitComments(comments []ast.Comment, ctx any) ([]Error, any) {
	return runList(r.commentsVisitors, comments, ctx)
}

// VisitImport runs the import hooks for one import node.
func (r *Rule) VisitImport(imp *ast.Import, ctx any) ([]Error, any) {
	return runList(r.importVisitors, imp, ctx)
}

// VisitDeclList runs the declaration-list hooks.
func (r *Rule) VisitDeclList(decls []*ast.Decl, ctx any) ([]Error, any) {
	return runList(r.declListVisitors, decls, ctx)
}

// VisitDecl runs the declaration hooks with a direction tag.
func (r *Rule) VisitDecl(decl *ast.Decl, dir Direction, ctx any) ([]Error, any) {
	var errs []Error
	for _, v := range r.declVisitors {
		var es []Error
		es, ctx = v(decl, dir, ctx)
		errs = append(errs, es...)
	}
	return errs, ctx
}

// VisitExpr runs the expression hooks with a direction tag.
func (r *Rule) VisitExpr(expr ast.Expr, dir Direction, ctx any) ([]Error, any) {
	var errs []Error
	for _, v := range r.exprVisitors {
		var es []Error
		es, ctx = v(expr, dir, ctx)
		errs = append(errs, es...)
	}
	return errs, ctx
}

// FinalModuleEval runs the final-module-evaluation hooks.
func (r *Rule) FinalModuleEval(ctx any) []Error {
	var errs []Error
	for _, v := range r.finalModule {
		errs = append(errs, v(ctx)...)
	}
	return errs
}

// VisitManifest runs the manifest hooks.
func (r *Rule) VisitManifest(m *project.Manifest, ctx any) ([]Error, any) {
	return runList(r.manifestVisitors, m, ctx)
}

// VisitReadme runs the readme hooks.
func (r *Rule) VisitReadme(rd *project.Readme, ctx any) ([]Error, any) {
	return runList(r.readmeVisitors, rd, ctx)
}

// VisitDependencies runs the dependency-set hooks.
func (r *Rule) VisitDependencies(deps *project.DependencySet, ctx any) ([]Error, any) {
	return runList(r.depsVisitors, deps, ctx)
}

// FinalProjectEval runs the final-project-evaluation hooks.
func (r *Rule) FinalProjectEval(ctx any) []Error {
	var errs []Error
	for _, v := range r.finalProject {
		errs = append(errs, v(ctx)...)
	}
	return errs
}
