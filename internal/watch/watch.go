// Package watch keeps a project analysis session alive across file
// system changes. A Watcher turns raw fsnotify events into
// project-relative Changes, Coalesce groups bursts of them into
// batches, and a Session applies each batch to the loaded project as
// incrementally as the change allows.
package watch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"argus/internal/project"
)

// Op classifies a file change for batching purposes.
type Op uint8

const (
	// OpWrite is a content change to an existing file.
	OpWrite Op = iota
	// OpCreate is a new file appearing.
	OpCreate
	// OpRemove is a file disappearing.
	OpRemove
	// OpRename is a file moving away from its watched path.
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Change is one relevant file event. Path is relative to the project
// root in slash form, the same shape the loader uses.
type Change struct {
	Path string
	Op   Op
}

// Watcher narrows file system notifications down to the files a
// project is built from: the manifest, the readme, dependency listings
// and sources under the manifest's source directories.
type Watcher struct {
	root    string
	srcDirs []string
	fsw     *fsnotify.Watcher
	out     chan Change
}

// NewWatcher watches the project root, its deps directory and every
// source directory recursively. Каталоги исходников берутся из
// манифеста; без манифеста действует то же умолчание, что у загрузчика.
func NewWatcher(root string, manifest *project.Manifest) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := []string{"src"}
	if manifest != nil {
		dirs = manifest.SourceDirs
	}
	w := &Watcher{
		root:    root,
		srcDirs: make([]string, 0, len(dirs)),
		fsw:     fsw,
		out:     make(chan Change, 64),
	}
	for _, dir := range dirs {
		w.srcDirs = append(w.srcDirs, path.Clean(filepath.ToSlash(dir)))
	}

	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	depsDir := filepath.Join(root, project.DepsDirName)
	if _, err := os.Stat(depsDir); err == nil {
		if err := fsw.Add(depsDir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", depsDir, err)
		}
	}
	for _, dir := range w.srcDirs {
		base := filepath.Join(root, filepath.FromSlash(dir))
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		if err := w.watchTree(base); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", base, err)
		}
	}
	return w, nil
}

// Changes returns the stream of relevant project changes. The channel
// closes when Run returns.
func (w *Watcher) Changes() <-chan Change { return w.out }

// Run forwards notifications until ctx is cancelled or the underlying
// watcher closes. Returns the first watcher error, nil on a clean stop.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch failed: %w", err)
		}
	}
}

// Close releases the underlying file system watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&^fsnotify.Chmod == 0 {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// новый подкаталог исходников надо подхватить, пока в нём
			// не начали появляться файлы
			if rel == project.DepsDirName || w.underSource(rel) {
				_ = w.watchTree(ev.Name)
			}
			return
		}
	}

	if !w.relevant(rel) {
		return
	}
	select {
	case w.out <- Change{Path: rel, Op: opOf(ev.Op)}:
	case <-ctx.Done():
	}
}

// watchTree recursively adds dir and its subdirectories, skipping
// hidden ones.
func (w *Watcher) watchTree(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if name := info.Name(); len(name) > 0 && name[0] == '.' && p != dir {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// relevant reports whether a root-relative path belongs to the project:
// an artifact, or a source file under one of the source directories.
func (w *Watcher) relevant(rel string) bool {
	if artifactPath(rel) {
		return true
	}
	return strings.HasSuffix(rel, project.SourceExt) && w.underSource(rel)
}

func (w *Watcher) underSource(rel string) bool {
	for _, dir := range w.srcDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// artifactPath reports whether a root-relative path is the manifest,
// the readme or a dependency listing.
func artifactPath(rel string) bool {
	if rel == project.ManifestName || rel == project.ReadmeName {
		return true
	}
	return path.Dir(rel) == project.DepsDirName && strings.HasSuffix(rel, ".toml")
}

// opOf collapses an fsnotify bitmask to the strongest single op.
func opOf(op fsnotify.Op) Op {
	switch {
	case op&fsnotify.Create != 0:
		return OpCreate
	case op&fsnotify.Remove != 0:
		return OpRemove
	case op&fsnotify.Rename != 0:
		return OpRename
	default:
		return OpWrite
	}
}
