package rules

import (
	"strings"

	"argus/internal/ast"
	"argus/internal/rule"
	"argus/internal/source"
)

const fixmeMarker = "FIXME"

type nofixmeCtx struct{}

// NoFixme flags FIXME markers left in comments. Each occurrence gets
// its own finding anchored at the marker itself, not the comment.
func NoFixme() *rule.Rule {
	return mustBuild(rule.NewModuleSchema("nofixme", func() nofixmeCtx { return nofixmeCtx{} }).
		WithCommentsVisitor(func(comments []ast.Comment, ctx nofixmeCtx) ([]rule.Error, nofixmeCtx) {
			var errs []rule.Error
			for _, c := range comments {
				// Text хранит комментарий вместе с маркерами, поэтому
				// индекс вхождения ложится прямо на спан.
				rest := c.Text
				base := c.Loc.Start
				for {
					idx := strings.Index(rest, fixmeMarker)
					if idx < 0 {
						break
					}
					start := base + uint32(idx)
					errs = append(errs, rule.NewWarning("comment contains FIXME", source.Span{
						File:  c.Loc.File,
						Start: start,
						End:   start + uint32(len(fixmeMarker)),
					}))
					skip := idx + len(fixmeMarker)
					rest = rest[skip:]
					base += uint32(skip)
				}
			}
			return errs, ctx
		}).
		Build())
}
