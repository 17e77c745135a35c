package watch

import (
	"sort"
	"strings"

	"argus/internal/diag"
	"argus/internal/project"
	"argus/internal/source"
)

// Session keeps one project alive across watch passes. Each batch of
// changes advances the project to the state on disk, patching single
// modules in place when possible and reloading from scratch when the
// module set or the project artifacts changed.
type Session struct {
	root   string
	loader *project.Loader
	proj   *project.Project
}

// NewSession creates a session rooted at the project directory.
func NewSession(root string) *Session {
	return &Session{root: root, loader: project.NewLoader(root)}
}

// Project returns the current validated project. Nil until the first
// successful Load.
func (s *Session) Project() *project.Project { return s.proj }

// FileSet exposes the file set behind the current project, for
// rendering diagnostics with source excerpts.
func (s *Session) FileSet() *source.FileSet { return s.loader.FileSet }

// Load reads and validates the project from scratch. Диагностики
// парсинга уходят в reporter, структурные ошибки возвращаются как
// error; в обоих случаях предыдущее состояние сессии сохраняется.
func (s *Session) Load(reporter diag.Reporter) error {
	loader := project.NewLoader(s.root)
	res, err := loader.Load(reporter)
	if err != nil {
		return err
	}
	p, err := project.Validate(res.Raw, res.Manifest, res.Readme, res.Deps)
	if err != nil {
		return err
	}
	if s.proj != nil {
		p = p.WithCache(s.proj.Cache())
	}
	s.loader = loader
	s.proj = p
	return nil
}

// Apply advances the project over one debounced batch of changes.
// Записи в известные исходники накатываются патчами; всё остальное
// означает полную перезагрузку. On error the session keeps the last
// state that validated, so a later batch can recover.
func (s *Session) Apply(batch []Change, reporter diag.Reporter) error {
	if s.proj == nil {
		return s.Load(reporter)
	}

	full := false
	purge := false
	var edited []string
	for _, ch := range batch {
		switch {
		case artifactPath(ch.Path):
			// контексты правил затравливаются артефактами, в
			// фингерпринты модулей те не входят
			full = true
			purge = true
		case ch.Op != OpWrite:
			full = true
		case strings.HasSuffix(ch.Path, project.SourceExt):
			if _, ok := s.proj.ModuleByFile(ch.Path); ok {
				edited = append(edited, ch.Path)
			} else {
				full = true
			}
		}
	}

	if full {
		if purge {
			s.proj.Cache().Purge()
		}
		return s.Load(reporter)
	}
	return s.patch(edited, reporter)
}

// patch re-parses each edited file and folds it into the project.
func (s *Session) patch(files []string, reporter diag.Reporter) error {
	next := s.proj
	var failed []string
	for _, file := range files {
		rm, err := s.loader.LoadModuleFile(file, reporter)
		if err != nil {
			// файл мог исчезнуть между событием и чтением
			return s.Load(reporter)
		}
		if rm.AST == nil {
			failed = append(failed, file)
			continue
		}
		p, ok := next.Patch(rm)
		if !ok {
			// переименование неймспейса патчем не разруливается
			return s.Load(reporter)
		}
		next = p
	}

	// удачные патчи фиксируем даже при частичной неудаче: диск уже
	// ушёл вперёд, и следующее сохранение стартует отсюда
	s.proj = next
	if len(failed) > 0 {
		sort.Strings(failed)
		return &project.ParseFailedError{Files: failed}
	}
	if next.Stale() {
		p, err := next.Revalidate()
		if err != nil {
			return err
		}
		s.proj = p
	}
	return nil
}
