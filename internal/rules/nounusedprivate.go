package rules

import (
	"fmt"

	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/rule"
	"argus/internal/source"
)

type privateDecl struct {
	name     string
	nameSpan source.Span
	declSpan source.Span
}

type unusedPrivateCtx struct {
	exposeAll bool
	exposed   map[string]bool
	privates  []privateDecl
	used      map[string]bool
	current   string // декларация под обходом: её самоссылки не считаются
}

// NoUnusedPrivate flags top-level declarations that are neither exposed
// nor referenced anywhere else in their module. References are counted
// without scope analysis, so a shadowed name still registers as a use;
// the rule misses a finding rather than inventing one. A recursive call
// does not keep its own declaration alive.
func NoUnusedPrivate() *rule.Rule {
	return mustBuild(rule.NewModuleSchema("nounusedprivate", func() *unusedPrivateCtx {
		return &unusedPrivateCtx{
			exposed: make(map[string]bool),
			used:    make(map[string]bool),
		}
	}).
		WithHeaderVisitor(func(h *ast.Header, ctx *unusedPrivateCtx) ([]rule.Error, *unusedPrivateCtx) {
			ctx.exposeAll = h.Exposing.All
			for _, n := range h.Exposing.Names {
				ctx.exposed[n.Name] = true
			}
			return nil, ctx
		}).
		WithDeclarationListVisitor(func(decls []*ast.Decl, ctx *unusedPrivateCtx) ([]rule.Error, *unusedPrivateCtx) {
			if ctx.exposeAll {
				return nil, ctx
			}
			for _, d := range decls {
				if ctx.exposed[d.Name] {
					continue
				}
				ctx.privates = append(ctx.privates, privateDecl{
					name:     d.Name,
					nameSpan: d.NameSpan,
					declSpan: d.Loc,
				})
			}
			return nil, ctx
		}).
		WithDeclarationVisitor(func(d *ast.Decl, dir rule.Direction, ctx *unusedPrivateCtx) ([]rule.Error, *unusedPrivateCtx) {
			if dir == rule.OnEnter {
				ctx.current = d.Name
			} else {
				ctx.current = ""
			}
			return nil, ctx
		}).
		WithExpressionEnterVisitor(func(e ast.Expr, ctx *unusedPrivateCtx) ([]rule.Error, *unusedPrivateCtx) {
			id, ok := e.(*ast.Ident)
			if !ok || id.Qual != "" || id.Name == ctx.current {
				return nil, ctx
			}
			ctx.used[id.Name] = true
			return nil, ctx
		}).
		WithFinalModuleEvaluation(func(ctx *unusedPrivateCtx) []rule.Error {
			var errs []rule.Error
			for _, d := range ctx.privates {
				if ctx.used[d.name] {
					continue
				}
				errs = append(errs, rule.NewError(
					fmt.Sprintf("private value %s is never used", d.name),
					d.nameSpan,
				).WithFix("remove the declaration", diag.TextEdit{Span: d.declSpan}))
			}
			return errs
		}).
		Build())
}
