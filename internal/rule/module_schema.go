package rule

import (
	"fmt"

	"argus/internal/ast"
)

// ModuleSchema collects per-module visitors over a context of type C.
// Created standalone via NewModuleSchema it builds a complete rule;
// created inside ProjectSchema.WithModuleVisitor it contributes the
// module half of a project rule and the bridge supplies its contexts.
//
// Every With* call appends to the ordered list of its granularity;
// within one granularity callbacks run in registration order, each
// receiving the context the previous one returned.
type ModuleSchema[C any] struct {
	name       string
	newContext func() C

	header   []func(*ast.Header, C) ([]Error, C)
	comments []func([]ast.Comment, C) ([]Error, C)
	imports  []func(*ast.Import, C) ([]Error, C)
	declList []func([]*ast.Decl, C) ([]Error, C)
	decls    []func(*ast.Decl, Direction, C) ([]Error, C)
	exprs    []func(ast.Expr, Direction, C) ([]Error, C)
	final    []func(C) []Error
}

// NewModuleSchema starts a module-only rule named name. newContext
// seeds the context for each visited module.
func NewModuleSchema[C any](name string, newContext func() C) *ModuleSchema[C] {
	return &ModuleSchema[C]{name: name, newContext: newContext}
}

// WithHeaderVisitor registers a callback for the module declaration.
func (s *ModuleSchema[C]) WithHeaderVisitor(fn func(*ast.Header, C) ([]Error, C)) *ModuleSchema[C] {
	s.header = append(s.header, fn)
	return s
}

// WithCommentsVisitor registers a callback receiving every comment of
// the module in source order.
func (s *ModuleSchema[C]) WithCommentsVisitor(fn func([]ast.Comment, C) ([]Error, C)) *ModuleSchema[C] {
	s.comments = append(s.comments, fn)
	return s
}

// WithImportVisitor registers a callback invoked once per import, in
// source order.
func (s *ModuleSchema[C]) WithImportVisitor(fn func(*ast.Import, C) ([]Error, C)) *ModuleSchema[C] {
	s.imports = append(s.imports, fn)
	return s
}

// WithDeclarationListVisitor registers a callback receiving the full
// declaration list before individual declarations are walked.
func (s *ModuleSchema[C]) WithDeclarationListVisitor(fn func([]*ast.Decl, C) ([]Error, C)) *ModuleSchema[C] {
	s.declList = append(s.declList, fn)
	return s
}

// WithDeclarationVisitor registers a callback fired on both enter and
// exit of each top-level declaration, tagged with the direction.
func (s *ModuleSchema[C]) WithDeclarationVisitor(fn func(*ast.Decl, Direction, C) ([]Error, C)) *ModuleSchema[C] {
	s.decls = append(s.decls, fn)
	return s
}

// WithDeclarationEnterVisitor registers a callback fired only when a
// declaration is entered.
func (s *ModuleSchema[C]) WithDeclarationEnterVisitor(fn func(*ast.Decl, C) ([]Error, C)) *ModuleSchema[C] {
	return s.WithDeclarationVisitor(func(d *ast.Decl, dir Direction, ctx C) ([]Error, C) {
		if dir != OnEnter {
			return nil, ctx
		}
		return fn(d, ctx)
	})
}

// WithExpressionVisitor registers a callback fired on both enter and
// exit of each expression node, tagged with the direction. Enter order
// is pre-order, exit order post-order.
func (s *ModuleSchema[C]) WithExpressionVisitor(fn func(ast.Expr, Direction, C) ([]Error, C)) *ModuleSchema[C] {
	s.exprs = append(s.exprs, fn)
	return s
}

// WithExpressionEnterVisitor registers a callback fired only when an
// expression is entered.
func (s *ModuleSchema[C]) WithExpressionEnterVisitor(fn func(ast.Expr, C) ([]Error, C)) *ModuleSchema[C] {
	return s.WithExpressionVisitor(func(e ast.Expr, dir Direction, ctx C) ([]Error, C) {
		if dir != OnEnter {
			return nil, ctx
		}
		return fn(e, ctx)
	})
}

// WithFinalModuleEvaluation registers a callback run after the whole
// module has been walked.
func (s *ModuleSchema[C]) WithFinalModuleEvaluation(fn func(C) []Error) *ModuleSchema[C] {
	s.final = append(s.final, fn)
	return s
}

func (s *ModuleSchema[C]) hasAny() bool {
	return len(s.header) > 0 ||
		len(s.comments) > 0 ||
		len(s.imports) > 0 ||
		len(s.declList) > 0 ||
		len(s.decls) > 0 ||
		len(s.exprs) > 0 ||
		len(s.final) > 0
}

// Build finalizes a standalone module rule by wrapping it into a
// trivial project rule: project and module context share the type C,
// every module starts from a fresh newContext value and the project
// fold keeps the last contribution.
func (s *ModuleSchema[C]) Build() (*Rule, error) {
	if s.name == "" {
		return nil, ErrNoName
	}
	if s.newContext == nil {
		return nil, fmt.Errorf("rule %s: nil context constructor", s.name)
	}
	ps := NewProjectSchema[C, C](s.name, func() C {
		var zero C
		return zero
	})
	ps.modules = append(ps.modules, s)
	ps.bridge = &Bridge[C, C]{
		// свежий контекст на каждый модуль, проектный игнорируем
		ToModule:  func(_ ModuleKey, _ C) C { return s.newContext() },
		ToProject: func(_ ModuleKey, ctx C) C { return ctx },
		Fold:      func(_, b C) C { return b },
	}
	return ps.Build()
}
