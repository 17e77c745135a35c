package project

import (
	"testing"

	"argus/internal/cache"
)

func validProject(t *testing.T, l *testLoader, srcs map[string]string) *Project {
	t.Helper()
	var raw []RawModule
	for file, src := range srcs {
		raw = append(raw, l.rawModule(t, file, src))
	}
	p, err := Validate(raw, nil, nil, nil)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	return p
}

func TestCursorWalksTopologicalOrder(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag":  moduleSrc("app", "base"),
		"src/base.ag": moduleSrc("base"),
	})

	cur := p.Cursor()
	if cur.Len() != 2 {
		t.Fatalf("cursor Len = %d, want 2", cur.Len())
	}
	first, ok := cur.Next()
	if !ok || first.Path != "base" {
		t.Fatalf("first = %+v, %v, want base", first, ok)
	}
	second, ok := cur.Next()
	if !ok || second.Path != "app" {
		t.Fatalf("second = %+v, %v, want app", second, ok)
	}
	if _, ok := cur.Next(); ok {
		t.Fatal("cursor should be exhausted")
	}

	cur.Reset()
	again, ok := cur.Next()
	if !ok || again.Path != "base" {
		t.Fatalf("after Reset first = %+v, %v, want base", again, ok)
	}
}

func TestPatchSameImportsKeepsOrder(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag":  moduleSrc("app", "base"),
		"src/base.ag": moduleSrc("base"),
		"src/solo.ag": moduleSrc("solo"),
	})
	orderBefore := p.Order()
	fpAppBefore, _ := p.Fingerprint("app")
	fpBaseBefore, _ := p.Fingerprint("base")
	fpSoloBefore, _ := p.Fingerprint("solo")

	// то же множество импортов, другое содержимое
	rm := l.rawModule(t, "src/base.ag", "module base exposing (..)\nmain = 42\n")
	patched, ok := p.Patch(rm)
	if !ok {
		t.Fatal("Patch rejected an import-identical replacement")
	}
	if patched.Stale() {
		t.Error("Stale() = true, want false for import-identical patch")
	}

	orderAfter := patched.Order()
	if len(orderAfter) != len(orderBefore) {
		t.Fatalf("order changed: %v -> %v", orderBefore, orderAfter)
	}
	for i := range orderBefore {
		if orderAfter[i] != orderBefore[i] {
			t.Fatalf("order[%d] = %q, want %q", i, orderAfter[i], orderBefore[i])
		}
	}

	// фингерпринты изменились у base и его импортёра, но не у solo
	if fp, _ := patched.Fingerprint("base"); fp == fpBaseBefore {
		t.Error("fingerprint of base did not change")
	}
	if fp, _ := patched.Fingerprint("app"); fp == fpAppBefore {
		t.Error("fingerprint of app did not change")
	}
	if fp, _ := patched.Fingerprint("solo"); fp != fpSoloBefore {
		t.Error("fingerprint of solo changed, want stable")
	}

	// старый снапшот не тронут
	if m, _ := p.ModuleByPath("base"); m.FileID == rm.FileID {
		t.Error("previous snapshot was mutated by Patch")
	}
}

func TestPatchRejectsRename(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag": moduleSrc("app"),
	})

	rm := l.rawModule(t, "src/app.ag", moduleSrc("renamed"))
	if _, ok := p.Patch(rm); ok {
		t.Fatal("Patch accepted a namespace rename")
	}
}

func TestPatchRejectsUnknownFile(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag": moduleSrc("app"),
	})

	rm := l.rawModule(t, "src/new.ag", moduleSrc("brand/new"))
	if _, ok := p.Patch(rm); ok {
		t.Fatal("Patch accepted a file outside the project")
	}
}

func TestPatchRejectsNilAST(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag": moduleSrc("app"),
	})

	if _, ok := p.Patch(l.brokenModule("src/app.ag")); ok {
		t.Fatal("Patch accepted a module without AST")
	}
}

func TestPatchChangedImportsMarksStale(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag":  moduleSrc("app", "base"),
		"src/base.ag": moduleSrc("base"),
	})

	rm := l.rawModule(t, "src/app.ag", moduleSrc("app"))
	patched, ok := p.Patch(rm)
	if !ok {
		t.Fatal("Patch rejected an import-changing replacement")
	}
	if !patched.Stale() {
		t.Fatal("Stale() = false, want true after import-set change")
	}

	fresh, err := patched.Revalidate()
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if fresh.Stale() {
		t.Error("Stale() = true after Revalidate")
	}
	if got := fresh.Imports("app"); len(got) != 0 {
		t.Errorf("Imports(app) = %v, want none after dropping the import", got)
	}
}

func TestRevalidateKeepsCache(t *testing.T) {
	l := newTestLoader()
	p := validProject(t, l, map[string]string{
		"src/app.ag":  moduleSrc("app", "base"),
		"src/base.ag": moduleSrc("base"),
	})
	fp, _ := p.Fingerprint("base")
	p.Cache().Put("somerule", "base", cache.Entry{Fingerprint: fp})

	rm := l.rawModule(t, "src/app.ag", moduleSrc("app"))
	patched, _ := p.Patch(rm)
	fresh, err := patched.Revalidate()
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if fresh.Cache() != p.Cache() {
		t.Error("Revalidate dropped the cache store")
	}
	if _, ok := fresh.Cache().Lookup("somerule", "base", fp); !ok {
		t.Error("cache entry lost across Revalidate")
	}
}

func TestDirectDependenciesFallback(t *testing.T) {
	deps := NewDependencySet([]*Dependency{
		{Name: "lib-str", Modules: []DepModule{{Path: "lib/str", Values: []string{"concat"}}}},
		{Name: "lib-http", Modules: []DepModule{{Path: "lib/http"}}},
	})

	l := newTestLoader()
	raw := []RawModule{l.rawModule(t, "src/app.ag", moduleSrc("app"))}

	// без манифеста: разрешающий дефолт, все зависимости
	p, err := Validate(raw, nil, nil, deps)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := p.DirectDependencies(); len(got) != 2 {
		t.Fatalf("DirectDependencies = %d deps, want all 2", len(got))
	}

	// манифест с объявленными зависимостями фильтрует таблицу
	manifest := &Manifest{Name: "app", Direct: []string{"lib-str"}, Test: []string{"missing"}}
	p2, err := Validate(raw, manifest, nil, deps)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	direct := p2.DirectDependencies()
	if len(direct) != 1 || direct[0].Name != "lib-str" {
		t.Fatalf("DirectDependencies = %+v, want [lib-str]", direct)
	}
	if all := p2.AllDependencies(); len(all) != 2 {
		t.Errorf("AllDependencies = %d deps, want 2", len(all))
	}
}

func TestDependencySetLookup(t *testing.T) {
	deps := NewDependencySet([]*Dependency{
		{Name: "lib-str", Version: "1.4.0", Modules: []DepModule{
			{Path: "lib/str", Values: []string{"concat", "split"}},
			{Path: "lib/str/extra", Values: []string{"pad"}},
		}},
	})

	mod, ok := deps.Module("lib/str")
	if !ok {
		t.Fatal("Module(lib/str) not found")
	}
	if !mod.Exposes("concat") || mod.Exposes("pad") {
		t.Errorf("lib/str values = %v", mod.Values)
	}
	if _, ok := deps.Module("lib/unknown"); ok {
		t.Error("Module(lib/unknown) unexpectedly found")
	}
	if _, ok := deps.Resolve("lib-str"); !ok {
		t.Error("Resolve(lib-str) not found")
	}
	if names := deps.Names(); len(names) != 1 || names[0] != "lib-str" {
		t.Errorf("Names = %v", names)
	}
}
