package project

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoModules is returned by Validate when the module set is empty.
var ErrNoModules = errors.New("project contains no modules")

// ErrStaleProject is returned when a traversal is attempted over a project
// whose graph and order were invalidated by an import-changing patch.
var ErrStaleProject = errors.New("project graph is stale, revalidate first")

// ParseFailedError reports every file whose module failed to parse.
// Files are sorted.
type ParseFailedError struct {
	Files []string
}

func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("%d module(s) failed to parse: %s", len(e.Files), strings.Join(e.Files, ", "))
}

// DuplicateNamesError reports one namespace path declared by several files.
// Если дублируется несколько имён, возвращается лексикографически наименьшее;
// Files перечисляет все файлы этого имени, отсортированные.
type DuplicateNamesError struct {
	Name  string
	Files []string
}

func (e *DuplicateNamesError) Error() string {
	return fmt.Sprintf("module %q is declared by %d files: %s", e.Name, len(e.Files), strings.Join(e.Files, ", "))
}

// ImportCycleError reports the first import cycle found during the
// depth-first topological attempt. Cycle is closed: the first and the
// last entries are the same namespace path.
type ImportCycleError struct {
	Cycle []string
}

func (e *ImportCycleError) Error() string {
	return fmt.Sprintf("import cycle: %s", strings.Join(e.Cycle, " -> "))
}
