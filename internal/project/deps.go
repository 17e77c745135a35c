package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DepsDirName is the directory with installed dependency listings.
const DepsDirName = "deps"

// ErrDepNameMissing indicates that a dependency listing lacks a name.
var ErrDepNameMissing = errors.New("missing dependency name")

// DepModule is the API surface of one library module: the namespace
// path and the value, type and operator names it exposes.
type DepModule struct {
	Path      string   `toml:"path"`
	Values    []string `toml:"values"`
	Types     []string `toml:"types"`
	Operators []string `toml:"operators"`
}

// Exposes reports whether the module exposes name as a value or type.
func (m *DepModule) Exposes(name string) bool {
	if m == nil {
		return false
	}
	for _, v := range m.Values {
		if v == name {
			return true
		}
	}
	for _, v := range m.Types {
		if v == name {
			return true
		}
	}
	return false
}

// Dependency is one installed library: a package name, a version and
// the listing of modules it provides.
type Dependency struct {
	Name    string      `toml:"name"`
	Version string      `toml:"version"`
	Modules []DepModule `toml:"modules"`
}

// DependencySet is the namespace-keyed lookup table over installed
// dependencies. Used by project-level visitors, not by validation.
type DependencySet struct {
	byName   map[string]*Dependency
	byModule map[string]*DepModule
	names    []string // отсортированные имена пакетов
}

// NewDependencySet indexes deps by package name and by module path.
// Повторное имя пакета или модульный путь затирает предыдущее: листинги
// читаются в отсортированном порядке файлов, так что исход детерминирован.
func NewDependencySet(deps []*Dependency) *DependencySet {
	s := &DependencySet{
		byName:   make(map[string]*Dependency, len(deps)),
		byModule: make(map[string]*DepModule),
	}
	for _, dep := range deps {
		if dep == nil || dep.Name == "" {
			continue
		}
		s.byName[dep.Name] = dep
		for i := range dep.Modules {
			mod := &dep.Modules[i]
			if mod.Path != "" {
				s.byModule[mod.Path] = mod
			}
		}
	}
	s.names = make([]string, 0, len(s.byName))
	for name := range s.byName {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	return s
}

// LoadDependencySet reads every deps/*.toml listing under root.
// Отсутствующий каталог deps не ошибка: возвращается пустой набор.
func LoadDependencySet(root string) (*DependencySet, error) {
	dir := filepath.Join(root, DepsDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDependencySet(nil), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var deps []*Dependency
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		dep, err := LoadDependency(path)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return NewDependencySet(deps), nil
}

// LoadDependency parses a single dependency listing file.
func LoadDependency(path string) (*Dependency, error) {
	var dep Dependency
	meta, err := toml.DecodeFile(path, &dep)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("name") || strings.TrimSpace(dep.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrDepNameMissing)
	}
	for _, mod := range dep.Modules {
		if !IsValidModulePath(mod.Path) {
			return nil, fmt.Errorf("%s: invalid module path %q", path, mod.Path)
		}
	}
	return &dep, nil
}

// Resolve returns the dependency registered under the package name.
func (s *DependencySet) Resolve(name string) (*Dependency, bool) {
	if s == nil {
		return nil, false
	}
	dep, ok := s.byName[name]
	return dep, ok
}

// Module returns the library module listing for a namespace path.
func (s *DependencySet) Module(path string) (*DepModule, bool) {
	if s == nil {
		return nil, false
	}
	mod, ok := s.byModule[path]
	return mod, ok
}

// Names returns the sorted package names of the set.
func (s *DependencySet) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// All returns every dependency sorted by package name.
func (s *DependencySet) All() []*Dependency {
	if s == nil {
		return nil
	}
	out := make([]*Dependency, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.byName[name])
	}
	return out
}

// Len returns the number of installed dependencies.
func (s *DependencySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
