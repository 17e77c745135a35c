package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"argus/internal/diag"
	"argus/internal/source"
)

func TestPrettyHeaderAndCaret(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("helper x = x\n")
	fileID := fs.AddVirtual("src/app.ag", content)

	d := diag.NewError("nounusedprivate",
		source.Span{File: fileID, Start: 0, End: 6},
		"private value helper is never used").
		WithPath("src/app.ag")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{})
	output := buf.String()

	if !strings.Contains(output, "src/app.ag:1:1: ERROR nounusedprivate: private value helper is never used") {
		t.Fatalf("missing header, got:\n%s", output)
	}
	if !strings.Contains(output, "   1 | helper x = x") {
		t.Fatalf("missing source excerpt, got:\n%s", output)
	}
	if !strings.Contains(output, "     | ^~~~~~") {
		t.Fatalf("missing caret underline, got:\n%s", output)
	}
}

func TestPrettyCaretPastTabsAndWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	// таб превращается в четыре пробела, CJK-руны шириной 2
	content := []byte("\t世界 = 1\n")
	fileID := fs.AddVirtual("src/wide.ag", content)

	d := diag.NewError("nofixme",
		source.Span{File: fileID, Start: 1, End: 7},
		"comment contains FIXME").
		WithPath("src/wide.ag")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{})
	output := buf.String()

	if !strings.Contains(output, "     |     ^~~~\n") {
		t.Fatalf("caret not aligned past tab and wide runes, got:\n%s", output)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("a = 1\nb = 2\nc = 3\n")
	fileID := fs.AddVirtual("src/ctx.ag", content)

	d := diag.NewError("nounusedprivate",
		source.Span{File: fileID, Start: 6, End: 7},
		"private value b is never used").
		WithPath("src/ctx.ag")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{Context: 1})
	output := buf.String()

	for _, want := range []string{"   1 | a = 1", "   2 | b = 2", "   3 | c = 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing context line %q, got:\n%s", want, output)
		}
	}
}

func TestPrettyProjectLevelEntry(t *testing.T) {
	d := diag.New(diag.SevError, "project", source.Span{}, "import cycle: app -> lib -> app")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, source.NewFileSet(), PrettyOpts{})
	output := buf.String()

	if !strings.Contains(output, "project: ERROR project: import cycle: app -> lib -> app") {
		t.Fatalf("missing project-level header, got:\n%s", output)
	}
	if strings.Contains(output, " | ") {
		t.Fatalf("unexpected excerpt for a finding without a span, got:\n%s", output)
	}
}

func TestPrettyMaxCut(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("src/app.ag", []byte("x = 1\ny = 2\nz = 3\n"))

	diags := []diag.Diagnostic{
		diag.NewError("r", source.Span{File: fileID, Start: 0, End: 1}, "first").WithPath("src/app.ag"),
		diag.NewError("r", source.Span{File: fileID, Start: 6, End: 7}, "second").WithPath("src/app.ag"),
		diag.NewError("r", source.Span{File: fileID, Start: 12, End: 13}, "third").WithPath("src/app.ag"),
	}

	var buf bytes.Buffer
	Pretty(&buf, diags, fs, PrettyOpts{Max: 2})
	output := buf.String()

	if !strings.Contains(output, "second") {
		t.Fatalf("second diagnostic missing, got:\n%s", output)
	}
	if strings.Contains(output, "third") {
		t.Fatalf("third diagnostic should be cut, got:\n%s", output)
	}
	if !strings.Contains(output, "... and 1 more") {
		t.Fatalf("missing cut marker, got:\n%s", output)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("import lib/str\nimport lib/str\n")
	fileID := fs.AddVirtual("src/app.ag", content)

	d := diag.New(diag.SevWarning, "noduplicateimports",
		source.Span{File: fileID, Start: 22, End: 29},
		"duplicate import of lib/str").
		WithPath("src/app.ag").
		WithNote(source.Span{File: fileID, Start: 7, End: 14}, "first imported here").
		WithFix("remove the duplicate import",
			diag.TextEdit{Span: source.Span{File: fileID, Start: 15, End: 30}, NewText: ""})

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{ShowFixes: true})
	output := buf.String()

	if !strings.Contains(output, "note: src/app.ag:1:8: first imported here") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: remove the duplicate import") {
		t.Fatalf("expected fix entry, got:\n%s", output)
	}
	if !strings.Contains(output, "apply=\"\" at src/app.ag:2:1") {
		t.Fatalf("expected fix edit apply line, got:\n%s", output)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("-- FIXME drop this\nvalue = 1\n")
	fileID := fs.AddVirtual("src/app.ag", content)

	d := diag.New(diag.SevWarning, "nofixme",
		source.Span{File: fileID, Start: 3, End: 8},
		"comment contains FIXME").
		WithPath("src/app.ag").
		WithFix("drop the marker",
			diag.TextEdit{Span: source.Span{File: fileID, Start: 3, End: 9}, NewText: ""})

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{ShowFixes: true, ShowPreview: true})
	output := buf.String()

	if !strings.Contains(output, "preview:") {
		t.Fatalf("expected preview header, got:\n%s", output)
	}
	if !strings.Contains(output, "- -- FIXME drop this") {
		t.Fatalf("expected before line, got:\n%s", output)
	}
	if !strings.Contains(output, "+ -- drop this") {
		t.Fatalf("expected after line, got:\n%s", output)
	}
}

func TestPrettyDetails(t *testing.T) {
	d := diag.New(diag.SevError, "nounuseddeps", source.Span{}, "dependency str is never imported").
		WithPath("argus.toml").
		WithDetails("Declared in [dependencies] but no module imports it.")

	var on, off bytes.Buffer
	Pretty(&on, []diag.Diagnostic{d}, source.NewFileSet(), PrettyOpts{ShowDetails: true})
	Pretty(&off, []diag.Diagnostic{d}, source.NewFileSet(), PrettyOpts{})

	if !strings.Contains(on.String(), "Declared in [dependencies]") {
		t.Fatalf("details missing with ShowDetails, got:\n%s", on.String())
	}
	if strings.Contains(off.String(), "Declared in [dependencies]") {
		t.Fatalf("details leaked without ShowDetails, got:\n%s", off.String())
	}
}

func TestWriteSummary(t *testing.T) {
	diags := []diag.Diagnostic{
		{Severity: diag.SevError},
		{Severity: diag.SevError},
		{Severity: diag.SevWarning},
	}
	var buf bytes.Buffer
	WriteSummary(&buf, diags, false)
	if got := buf.String(); got != "2 errors, 1 warning\n" {
		t.Fatalf("WriteSummary = %q, want %q", got, "2 errors, 1 warning\n")
	}

	buf.Reset()
	WriteSummary(&buf, nil, false)
	if got := buf.String(); got != "no problems found\n" {
		t.Fatalf("WriteSummary empty = %q, want %q", got, "no problems found\n")
	}
}

func TestShortLines(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("src/app.ag", []byte("helper x = x\n"))

	diags := []diag.Diagnostic{
		diag.NewError("nounusedprivate",
			source.Span{File: fileID, Start: 0, End: 6},
			"private value helper is never used").WithPath("src/app.ag"),
		diag.New(diag.SevWarning, "readmetitle", source.Span{}, "README has no top-level title").WithPath("README.md"),
	}

	var buf bytes.Buffer
	Short(&buf, diags, fs)
	want := "src/app.ag:1:1: error: private value helper is never used [nounusedprivate]\n" +
		"README.md: warning: README has no top-level title [readmetitle]\n"
	if buf.String() != want {
		t.Fatalf("Short output = %q, want %q", buf.String(), want)
	}
}
