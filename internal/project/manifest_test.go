package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "argus.toml", `
[package]
name = "my-app"
kind = "package"
source-directories = ["src", "tests"]

[dependencies]
direct = ["lib-str", "lib-core"]
test = ["lib-expect", "lib-str"]
`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if m.Name != "my-app" {
		t.Errorf("Name = %q, want %q", m.Name, "my-app")
	}
	if m.Kind != KindPackage {
		t.Errorf("Kind = %v, want package", m.Kind)
	}
	if len(m.SourceDirs) != 2 || m.SourceDirs[0] != "src" || m.SourceDirs[1] != "tests" {
		t.Errorf("SourceDirs = %v", m.SourceDirs)
	}

	declared := m.DeclaredDependencies()
	want := []string{"lib-core", "lib-expect", "lib-str"}
	if len(declared) != len(want) {
		t.Fatalf("DeclaredDependencies = %v, want %v", declared, want)
	}
	for i := range want {
		if declared[i] != want[i] {
			t.Errorf("declared[%d] = %q, want %q", i, declared[i], want[i])
		}
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "argus.toml", "[package]\nname = \"tiny\"\n")

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if m.Kind != KindApplication {
		t.Errorf("Kind = %v, want application default", m.Kind)
	}
	if len(m.SourceDirs) != 1 || m.SourceDirs[0] != "src" {
		t.Errorf("SourceDirs = %v, want [src]", m.SourceDirs)
	}
	if len(m.DeclaredDependencies()) != 0 {
		t.Errorf("DeclaredDependencies = %v, want empty", m.DeclaredDependencies())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "no package section", content: "[dependencies]\ndirect = []\n", wantErr: ErrPackageSectionMissing},
		{name: "no name", content: "[package]\nkind = \"application\"\n", wantErr: ErrPackageNameMissing},
		{name: "blank name", content: "[package]\nname = \"  \"\n", wantErr: ErrPackageNameMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".toml", tt.content)
			_, err := LoadManifest(path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	badKind := writeFile(t, dir, "badkind.toml", "[package]\nname = \"x\"\nkind = \"library\"\n")
	if _, err := LoadManifest(badKind); err == nil {
		t.Fatal("Expected an error for invalid kind")
	}
}

func TestLoadDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib-str.toml", `
name = "lib-str"
version = "1.4.0"

[[modules]]
path = "lib/str"
values = ["concat", "split"]

[[modules]]
path = "lib/str/extra"
values = ["pad"]
`)

	dep, err := LoadDependency(path)
	if err != nil {
		t.Fatalf("LoadDependency failed: %v", err)
	}
	if dep.Name != "lib-str" || dep.Version != "1.4.0" {
		t.Errorf("dep = %+v", dep)
	}
	if len(dep.Modules) != 2 || dep.Modules[0].Path != "lib/str" {
		t.Errorf("Modules = %+v", dep.Modules)
	}

	missing := writeFile(t, dir, "noname.toml", "version = \"1.0.0\"\n")
	if _, err := LoadDependency(missing); !errors.Is(err, ErrDepNameMissing) {
		t.Fatalf("err = %v, want ErrDepNameMissing", err)
	}

	badPath := writeFile(t, dir, "badpath.toml", "name = \"x\"\n\n[[modules]]\npath = \"lib//bad\"\n")
	if _, err := LoadDependency(badPath); err == nil {
		t.Fatal("Expected an error for invalid module path")
	}
}

func TestLoadDependencySetMissingDir(t *testing.T) {
	deps, err := LoadDependencySet(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDependencySet failed: %v", err)
	}
	if deps.Len() != 0 {
		t.Errorf("Len = %d, want 0", deps.Len())
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "argus.toml", "[package]\nname = \"x\"\n")
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest = %q, %v, %v", path, ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("manifest dir = %q, want %q", filepath.Dir(path), root)
	}

	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || gotRoot != root {
		t.Errorf("FindProjectRoot = %q, %v, %v, want %q", gotRoot, ok, err, root)
	}
}
