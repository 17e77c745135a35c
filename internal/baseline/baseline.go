// Package baseline persists an accepted set of diagnostics so that
// later runs report only new findings. The file is msgpack behind a
// schema version and is replaced atomically on write.
package baseline

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"argus/internal/cache"
	"argus/internal/diag"
)

// Current schema version - increment when the entry format changes.
const schemaVersion uint16 = 1

// entry keys one suppressed diagnostic. Spans are stored as byte
// offsets without the file handle: handles are not stable across runs,
// paths are.
type entry struct {
	Rule    string
	Path    string
	Start   uint32
	End     uint32
	Message cache.Digest
}

type baselineFile struct {
	Schema  uint16
	Entries []entry
}

type key struct {
	rule  string
	path  string
	start uint32
	end   uint32
	msg   cache.Digest
}

func keyOf(d diag.Diagnostic) key {
	return key{
		rule:  d.Rule,
		path:  d.Path,
		start: d.Primary.Start,
		end:   d.Primary.End,
		msg:   cache.Digest(sha256.Sum256([]byte(d.Message))),
	}
}

// Baseline is a set of accepted diagnostics.
type Baseline struct {
	keys map[key]struct{}
}

// New builds a baseline from a run's diagnostics.
func New(diags []diag.Diagnostic) *Baseline {
	b := &Baseline{keys: make(map[key]struct{}, len(diags))}
	for _, d := range diags {
		b.keys[keyOf(d)] = struct{}{}
	}
	return b
}

// Len reports the number of distinct accepted diagnostics.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Has reports whether the diagnostic is accepted by the baseline.
func (b *Baseline) Has(d diag.Diagnostic) bool {
	if b == nil {
		return false
	}
	_, ok := b.keys[keyOf(d)]
	return ok
}

// Filter returns the diagnostics not covered by the baseline, in the
// original order.
func (b *Baseline) Filter(diags []diag.Diagnostic) []diag.Diagnostic {
	if b == nil || len(b.keys) == 0 {
		return diags
	}
	kept := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !b.Has(d) {
			kept = append(kept, d)
		}
	}
	return kept
}

// Write serializes the baseline to path. The file is written next to
// its destination and moved into place, so readers never observe a
// partial baseline.
func (b *Baseline) Write(path string) error {
	entries := make([]entry, 0, b.Len())
	for k := range b.keys {
		entries = append(entries, entry{
			Rule:    k.rule,
			Path:    k.path,
			Start:   k.start,
			End:     k.end,
			Message: k.msg,
		})
	}
	// детерминированный порядок: файл удобно хранить в VCS
	sort.Slice(entries, func(i, j int) bool {
		a, c := entries[i], entries[j]
		if a.Path != c.Path {
			return a.Path < c.Path
		}
		if a.Start != c.Start {
			return a.Start < c.Start
		}
		if a.End != c.End {
			return a.End < c.End
		}
		return a.Rule < c.Rule
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "baseline-*")
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&baselineFile{Schema: schemaVersion, Entries: entries}); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), path)
}

// Load reads a baseline written by Write.
func Load(path string) (*Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file baselineFile
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: failed to decode baseline: %w", path, err)
	}
	if file.Schema != schemaVersion {
		return nil, fmt.Errorf("%s: unsupported baseline schema %d (tool expects %d)", path, file.Schema, schemaVersion)
	}
	b := &Baseline{keys: make(map[key]struct{}, len(file.Entries))}
	for _, e := range file.Entries {
		b.keys[key{rule: e.Rule, path: e.Path, start: e.Start, end: e.End, msg: e.Message}] = struct{}{}
	}
	return b, nil
}
