package rules

import (
	"fmt"

	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/rule"
	"argus/internal/source"
)

type dupImportsCtx struct {
	first map[string]source.Span // путь → спан первого импорта
}

// NoDuplicateImports flags a module importing the same path more than
// once. Aliases do not matter: two imports of one path bind two names
// to the same module. The fix removes the repeated import statement.
func NoDuplicateImports() *rule.Rule {
	return mustBuild(rule.NewModuleSchema("noduplicateimports", func() *dupImportsCtx {
		return &dupImportsCtx{first: make(map[string]source.Span)}
	}).
		WithImportVisitor(func(imp *ast.Import, ctx *dupImportsCtx) ([]rule.Error, *dupImportsCtx) {
			prev, dup := ctx.first[imp.Path]
			if !dup {
				ctx.first[imp.Path] = imp.PathSpan
				return nil, ctx
			}
			err := rule.NewWarning(
				fmt.Sprintf("duplicate import of %s", imp.Path),
				imp.PathSpan,
			).
				WithNote(prev, "first imported here").
				WithFix("remove the duplicate import", diag.TextEdit{Span: imp.Loc})
			return []rule.Error{err}, ctx
		}).
		Build())
}
