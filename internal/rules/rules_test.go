package rules

import (
	"context"
	"strings"
	"testing"

	"argus/internal/cache"
	"argus/internal/diag"
	"argus/internal/engine"
	"argus/internal/project"
	"argus/internal/rule"
	"argus/internal/source"
	"argus/internal/syntax"
)

// fixture описывает проект целиком: исходники плюс артефакты корня.
type fixture struct {
	srcs     map[string]string
	manifest *project.Manifest
	readme   *project.Readme
	deps     *project.DependencySet
}

func parseRaw(t *testing.T, fs *source.FileSet, file, src string) project.RawModule {
	t.Helper()
	id := fs.AddVirtual(file, []byte(src))
	f := fs.Get(id)
	bag := diag.NewBag(64)
	mod, ok := syntax.Parse(f, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("parse %s failed: %v", file, bag.Items())
	}
	return project.RawModule{File: file, FileID: id, AST: mod, Content: cache.Digest(f.Hash)}
}

func (fx fixture) analyze(t *testing.T, r *rule.Rule) []diag.Diagnostic {
	t.Helper()
	fs := source.NewFileSet()
	raw := make([]project.RawModule, 0, len(fx.srcs))
	for file, src := range fx.srcs {
		raw = append(raw, parseRaw(t, fs, file, src))
	}
	p, err := project.Validate(raw, fx.manifest, fx.readme, fx.deps)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	res, err := engine.Run(context.Background(), p, engine.Options{Rules: []*rule.Rule{r}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res.Diagnostics
}

func messages(diags []diag.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

// spanOf возвращает спан первого вхождения needle в src.
func spanOf(t *testing.T, src, needle string) (uint32, uint32) {
	t.Helper()
	idx := strings.Index(src, needle)
	if idx < 0 {
		t.Fatalf("%q not found in source", needle)
	}
	return uint32(idx), uint32(idx + len(needle))
}

func TestAllRulesBuildWithUniqueNames(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("len(Names()) = %d, want 7", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate rule name %q", n)
		}
		seen[n] = true
	}
}

func TestAllReturnsFreshInstances(t *testing.T) {
	a, b := All(), All()
	for i := range a {
		if a[i] == b[i] {
			t.Fatalf("rule %s is shared between All() calls", a[i].Name())
		}
	}
}
