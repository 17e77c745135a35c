package cache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"argus/internal/diag"
)

// DefaultCapacity bounds the number of (rule, module) entries kept.
const DefaultCapacity = 4096

// Entry is one module's cached analysis result for one rule: the
// contribution it folded into the project context and the diagnostics
// it produced. An entry is only served back when the stored fingerprint
// matches the caller's, so stale results never leak across edits.
type Entry struct {
	Fingerprint  Digest
	Contribution any
	Diagnostics  []diag.Diagnostic
}

type storeKey struct {
	rule   string
	module string
}

// Store is the mutable shared state of incremental analysis. It is safe
// for concurrent use; the owning project threads it between runs.
type Store struct {
	entries *lru.Cache[storeKey, Entry]
	hits    atomic.Uint64
	misses  atomic.Uint64

	mu      sync.Mutex
	cfg     Digest
	haveCfg bool
}

// NewStore creates a Store bounded to capacity entries (DefaultCapacity
// when capacity is not positive).
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[storeKey, Entry](capacity)
	if err != nil {
		// lru.New errors only on non-positive size
		panic(err)
	}
	return &Store{entries: entries}
}

// Lookup returns the entry for (rule, module) when its fingerprint
// matches fp. A mismatching entry is evicted, not served.
func (s *Store) Lookup(rule, module string, fp Digest) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	key := storeKey{rule: rule, module: module}
	e, ok := s.entries.Get(key)
	if !ok {
		s.misses.Add(1)
		return Entry{}, false
	}
	if e.Fingerprint != fp {
		s.entries.Remove(key)
		s.misses.Add(1)
		return Entry{}, false
	}
	s.hits.Add(1)
	return e, true
}

// Put stores the entry for (rule, module), replacing any previous one.
func (s *Store) Put(rule, module string, e Entry) {
	if s == nil {
		return
	}
	s.entries.Add(storeKey{rule: rule, module: module}, e)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.entries.Len()
}

// Purge drops every entry. Used when the rule configuration changes:
// entries produced under another configuration must never be reused.
func (s *Store) Purge() {
	if s == nil {
		return
	}
	s.entries.Purge()
}

// EnsureConfig binds the store to a rule-configuration fingerprint.
// A store bound to a different fingerprint is purged before rebinding:
// entries produced under another configuration must never be served.
// Reports whether existing entries survived.
func (s *Store) EnsureConfig(d Digest) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveCfg && s.cfg == d {
		return true
	}
	kept := !s.haveCfg
	if s.haveCfg {
		s.entries.Purge()
	}
	s.cfg = d
	s.haveCfg = true
	return kept
}

// Stats reports hit/miss counters accumulated since creation.
func (s *Store) Stats() (hits, misses uint64) {
	if s == nil {
		return 0, 0
	}
	return s.hits.Load(), s.misses.Load()
}
