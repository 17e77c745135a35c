package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"argus/internal/cache"
	"argus/internal/diag"
	"argus/internal/source"
	"argus/internal/syntax"
)

// SourceExt is the analyzed-language file extension.
const SourceExt = ".ag"

// Loader reads a project from disk: manifest, readme, dependency
// listings and every source file under the manifest's source dirs.
type Loader struct {
	Root    string
	FileSet *source.FileSet
}

// NewLoader creates a loader anchored at the project root.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, FileSet: source.NewFileSet()}
}

// LoadResult carries everything Validate needs plus parse diagnostics.
type LoadResult struct {
	Raw      []RawModule
	Manifest *Manifest
	Readme   *Readme
	Deps     *DependencySet
}

// Load reads the whole project. Ошибки парсинга исходников не ошибки
// загрузки: они попадают в reporter, а модуль остаётся с nil AST, чтобы
// Validate вернул типизированную ParseFailedError.
func (l *Loader) Load(reporter diag.Reporter) (*LoadResult, error) {
	res := &LoadResult{}

	manifestPath := filepath.Join(l.Root, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		res.Manifest = manifest
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", manifestPath, err)
	}

	readme, ok, err := LoadReadme(l.Root)
	if err != nil {
		return nil, err
	}
	if ok {
		res.Readme = readme
	}

	res.Deps, err = LoadDependencySet(l.Root)
	if err != nil {
		return nil, err
	}

	files, err := l.listSourceFiles(res.Manifest)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		rm, err := l.LoadModuleFile(file, reporter)
		if err != nil {
			return nil, err
		}
		res.Raw = append(res.Raw, rm)
	}
	return res, nil
}

// LoadModuleFile reads and parses a single source file. Путь file задан
// относительно корня проекта. При ошибке парсинга AST остаётся nil.
func (l *Loader) LoadModuleFile(file string, reporter diag.Reporter) (RawModule, error) {
	abs := filepath.Join(l.Root, filepath.FromSlash(file))
	id, err := l.FileSet.Load(abs)
	if err != nil {
		return RawModule{}, fmt.Errorf("failed to load %s: %w", file, err)
	}
	f := l.FileSet.Get(id)

	rm := RawModule{
		File:    file,
		FileID:  id,
		Content: cache.Digest(f.Hash),
	}
	bag := diag.NewBag(256)
	mod, ok := syntax.Parse(f, diag.BagReporter{Bag: bag})
	for _, d := range bag.Items() {
		d.Path = file
		if reporter != nil {
			reporter.Report(d)
		}
	}
	if ok {
		rm.AST = mod
	}
	return rm, nil
}

// listSourceFiles возвращает отсортированный список всех *.ag файлов
// в каталогах исходников, путями относительно корня проекта.
func (l *Loader) listSourceFiles(manifest *Manifest) ([]string, error) {
	dirs := []string{"src"}
	if manifest != nil {
		dirs = manifest.SourceDirs
	}

	var files []string
	seen := make(map[string]struct{})
	for _, dir := range dirs {
		base := filepath.Join(l.Root, filepath.FromSlash(dir))
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, SourceExt) {
				return nil
			}
			rel, err := filepath.Rel(l.Root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			files = append(files, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", base, err)
		}
	}

	// сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}
