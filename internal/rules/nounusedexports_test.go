package rules

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/project"
)

func TestNoUnusedExportsFlagsOrphanAndExemptsEntry(t *testing.T) {
	lib := "module lib exposing (value, spare)\n" +
		"value = 1\n" +
		"spare = 2\n"
	fx := fixture{
		srcs: map[string]string{
			"src/main.ag": "module main exposing (main)\n" +
				"import lib\n" +
				"main = lib.value\n",
			"src/lib.ag": lib,
		},
		manifest: &project.Manifest{Name: "demo", Kind: project.KindApplication},
	}

	diags := fx.analyze(t, NoUnusedExports())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", messages(diags))
	}
	d := diags[0]
	if d.Message != "exposed value spare is never used outside lib" {
		t.Fatalf("Message = %q", d.Message)
	}
	if d.Severity != diag.SevWarning {
		t.Fatalf("Severity = %v, want warning", d.Severity)
	}
	if d.Path != "src/lib.ag" {
		t.Fatalf("Path = %q, want src/lib.ag", d.Path)
	}
	// спан метит имя в exposing-списке
	start, end := spanOf(t, lib, "spare")
	if d.Primary.Start != start || d.Primary.End != end {
		t.Fatalf("Primary = [%d,%d), want [%d,%d)", d.Primary.Start, d.Primary.End, start, end)
	}
}

func TestNoUnusedExportsEntryCheckedWithoutManifest(t *testing.T) {
	fx := fixture{srcs: map[string]string{
		"src/main.ag": "module main exposing (main)\nmain = 1\n",
	}}

	diags := fx.analyze(t, NoUnusedExports())
	if len(diags) != 1 || diags[0].Message != "exposed value main is never used outside main" {
		t.Fatalf("diagnostics = %v, want unused main", messages(diags))
	}
}

func TestNoUnusedExportsQuietCases(t *testing.T) {
	tests := []struct {
		name string
		srcs map[string]string
	}{
		{
			name: "qualified use counts",
			srcs: map[string]string{
				"src/main.ag": "module main exposing (main)\nimport lib\nmain = lib.value\n",
				"src/lib.ag":  "module lib exposing (value)\nvalue = 1\n",
			},
		},
		{
			name: "import exposing list counts",
			srcs: map[string]string{
				"src/main.ag": "module main exposing (main)\nimport lib exposing (value)\nmain = value\n",
				"src/lib.ag":  "module lib exposing (value)\nvalue = 1\n",
			},
		},
		{
			name: "import exposing all counts for every name",
			srcs: map[string]string{
				"src/main.ag": "module main exposing (main)\nimport lib exposing (..)\nmain = value\n",
				"src/lib.ag":  "module lib exposing (value, spare)\nvalue = 1\nspare = 2\n",
			},
		},
		{
			name: "module exposing all is skipped",
			srcs: map[string]string{
				"src/main.ag": "module main exposing (main)\nimport lib\nmain = lib.value\n",
				"src/lib.ag":  "module lib exposing (..)\nvalue = 1\nspare = 2\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := fixture{
				srcs:     tt.srcs,
				manifest: &project.Manifest{Name: "demo", Kind: project.KindApplication},
			}
			if diags := fx.analyze(t, NoUnusedExports()); len(diags) != 0 {
				t.Fatalf("diagnostics = %v, want none", messages(diags))
			}
		})
	}
}
