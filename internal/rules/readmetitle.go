package rules

import (
	"fmt"
	"strings"

	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/source"
)

type readmeTitleCtx struct {
	pkgName   string
	hasReadme bool
}

// ReadmeTitle checks that README.md opens with a level-one heading and
// that the heading matches the manifest package name. The first
// non-blank line must be the title; a missing README is flagged as a
// project-level finding.
func ReadmeTitle() *rule.Rule {
	return mustBuild(rule.NewProjectSchema[*readmeTitleCtx, struct{}]("readmetitle", func() *readmeTitleCtx {
		return &readmeTitleCtx{}
	}).
		WithManifestVisitor(func(m *project.Manifest, ctx *readmeTitleCtx) ([]rule.Error, *readmeTitleCtx) {
			ctx.pkgName = m.Name
			return nil, ctx
		}).
		WithReadmeVisitor(func(r *project.Readme, ctx *readmeTitleCtx) ([]rule.Error, *readmeTitleCtx) {
			ctx.hasReadme = true
			title, ok := readmeTitleOf(r.Content)
			if !ok {
				return []rule.Error{rule.NewInfo("README has no top-level title", source.Span{})}, ctx
			}
			if ctx.pkgName != "" && title != ctx.pkgName {
				msg := fmt.Sprintf("README title %q does not match package name %q", title, ctx.pkgName)
				return []rule.Error{rule.NewInfo(msg, source.Span{})}, ctx
			}
			return nil, ctx
		}).
		WithFinalProjectEvaluation(func(ctx *readmeTitleCtx) []rule.Error {
			if ctx.hasReadme {
				return nil
			}
			return []rule.Error{rule.NewInfo("project has no README.md", source.Span{})}
		}).
		Build())
}

// readmeTitleOf returns the text of the leading level-one heading.
func readmeTitleOf(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		title, ok := strings.CutPrefix(line, "# ")
		if !ok {
			// первый непустой текст обязан быть заголовком
			return "", false
		}
		return strings.TrimSpace(title), true
	}
	return "", false
}
