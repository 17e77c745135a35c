package rules

import (
	"strings"
	"testing"

	"argus/internal/diag"
)

func TestNoDuplicateImportsFlagsRepeat(t *testing.T) {
	app := "module app exposing (main)\n" +
		"import lib\n" +
		"import lib as l2\n" +
		"main = lib.value\n"
	fx := fixture{srcs: map[string]string{
		"src/app.ag": app,
		"src/lib.ag": "module lib exposing (value)\nvalue = 1\n",
	}}

	diags := fx.analyze(t, NoDuplicateImports())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", messages(diags))
	}
	d := diags[0]
	if d.Message != "duplicate import of lib" {
		t.Fatalf("Message = %q", d.Message)
	}
	if d.Severity != diag.SevWarning {
		t.Fatalf("Severity = %v, want warning", d.Severity)
	}

	// спан указывает на второе вхождение пути
	second := uint32(strings.LastIndex(app, "import lib as l2") + len("import "))
	if d.Primary.Start != second {
		t.Fatalf("Primary.Start = %d, want %d", d.Primary.Start, second)
	}

	if len(d.Notes) != 1 || d.Notes[0].Msg != "first imported here" {
		t.Fatalf("Notes = %+v, want pointer at first import", d.Notes)
	}
	first, _ := spanOf(t, app, "lib")
	if d.Notes[0].Span.Start != first {
		t.Fatalf("note span start = %d, want %d", d.Notes[0].Span.Start, first)
	}

	if len(d.Fixes) != 1 || d.Fixes[0].Title != "remove the duplicate import" {
		t.Fatalf("Fixes = %+v, want removal fix", d.Fixes)
	}
}

func TestNoDuplicateImportsDistinctPathsQuiet(t *testing.T) {
	fx := fixture{srcs: map[string]string{
		"src/app.ag": "module app exposing (main)\n" +
			"import lib\n" +
			"import lib/extra\n" +
			"main = lib.value\n",
		"src/lib.ag":       "module lib exposing (value)\nvalue = 1\n",
		"src/lib/extra.ag": "module lib/extra exposing (more)\nmore = 2\n",
	}}
	if diags := fx.analyze(t, NoDuplicateImports()); len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", messages(diags))
	}
}
