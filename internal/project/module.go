package project

import (
	"sort"

	"argus/internal/ast"
	"argus/internal/cache"
	"argus/internal/source"
)

// RawModule is one source file as the loader produced it, before
// validation. AST is nil when parsing failed.
type RawModule struct {
	File    string // путь файла относительно корня проекта
	FileID  source.FileID
	AST     *ast.Module
	Content cache.Digest
}

// Module is a validated source file inside a Project.
type Module struct {
	Path    string // namespace path из заголовка: "a/b"
	File    string
	FileID  source.FileID
	AST     *ast.Module
	Content cache.Digest
}

// ImportPaths returns the distinct imported namespace paths of the
// module in sorted order, project-local and external alike.
func (m *Module) ImportPaths() []string {
	if m == nil || m.AST == nil || len(m.AST.Imports) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(m.AST.Imports))
	for _, imp := range m.AST.Imports {
		if imp.Path != "" {
			uniq[imp.Path] = struct{}{}
		}
	}
	out := make([]string, 0, len(uniq))
	for p := range uniq {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func sameImportSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
