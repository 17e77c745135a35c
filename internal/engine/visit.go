package engine

import (
	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/project"
	"argus/internal/rule"
)

// visitModule drives one rule over one module in the fixed hook order:
// header, comments, imports in source order, declaration list, then per
// declaration enter/expressions/exit, then the final module evaluation.
func visitModule(r *rule.Rule, mod *project.Module, ctx any) ([]rule.Error, any) {
	var errs []rule.Error
	var es []rule.Error

	es, ctx = r.VisitHeader(&mod.AST.Header, ctx)
	errs = append(errs, es...)

	es, ctx = r.VisitComments(mod.AST.Comments, ctx)
	errs = append(errs, es...)

	for _, imp := range mod.AST.Imports {
		es, ctx = r.VisitImport(imp, ctx)
		errs = append(errs, es...)
	}

	es, ctx = r.VisitDeclList(mod.AST.Decls, ctx)
	errs = append(errs, es...)

	for _, decl := range mod.AST.Decls {
		es, ctx = r.VisitDecl(decl, rule.OnEnter, ctx)
		errs = append(errs, es...)

		ctx = walkExpr(r, decl.Body, ctx, &errs)

		es, ctx = r.VisitDecl(decl, rule.OnExit, ctx)
		errs = append(errs, es...)
	}

	errs = append(errs, r.FinalModuleEval(ctx)...)
	return errs, ctx
}

// walkExpr fires expression hooks pre-order on enter and post-order on
// exit, descending into children in source order.
func walkExpr(r *rule.Rule, e ast.Expr, ctx any, errs *[]rule.Error) any {
	if e == nil {
		return ctx
	}

	es, ctx := r.VisitExpr(e, rule.OnEnter, ctx)
	*errs = append(*errs, es...)

	switch n := e.(type) {
	case *ast.Call:
		ctx = walkExpr(r, n.Fn, ctx, errs)
		for _, arg := range n.Args {
			ctx = walkExpr(r, arg, ctx, errs)
		}
	case *ast.Binary:
		ctx = walkExpr(r, n.Left, ctx, errs)
		ctx = walkExpr(r, n.Right, ctx, errs)
	case *ast.If:
		ctx = walkExpr(r, n.Cond, ctx, errs)
		ctx = walkExpr(r, n.Then, ctx, errs)
		ctx = walkExpr(r, n.Else, ctx, errs)
	case *ast.Let:
		for _, bind := range n.Binds {
			ctx = walkExpr(r, bind.Value, ctx, errs)
		}
		ctx = walkExpr(r, n.Body, ctx, errs)
	case *ast.Lambda:
		ctx = walkExpr(r, n.Body, ctx, errs)
	case *ast.List:
		for _, elem := range n.Elems {
			ctx = walkExpr(r, elem, ctx, errs)
		}
	case *ast.Paren:
		ctx = walkExpr(r, n.Inner, ctx, errs)
	}

	es, ctx = r.VisitExpr(e, rule.OnExit, ctx)
	*errs = append(*errs, es...)
	return ctx
}

// lower converts raw findings into diagnostics owned by fallbackPath
// unless a finding targeted another module through its key.
func lower(errs []rule.Error, ruleName, fallbackPath string) []diag.Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Diagnostic(ruleName, fallbackPath))
	}
	return out
}
