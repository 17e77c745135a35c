package baseline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"argus/internal/diag"
	"argus/internal/source"
)

func mkDiag(rule, path, message string, start, end uint32) diag.Diagnostic {
	return diag.Diagnostic{
		Rule:     rule,
		Severity: diag.SevError,
		Message:  message,
		Path:     path,
		Primary:  source.Span{Start: start, End: end},
	}
}

func TestRoundTrip(t *testing.T) {
	diags := []diag.Diagnostic{
		mkDiag("nofixme", "src/app.ag", "comment contains FIXME", 10, 15),
		mkDiag("nounusedprivate", "src/lib.ag", "private value helper is never used", 42, 48),
	}
	path := filepath.Join(t.TempDir(), "baseline.mp")
	if err := New(diags).Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	for _, d := range diags {
		if !b.Has(d) {
			t.Errorf("Has(%s %s) = false after round trip", d.Rule, d.Message)
		}
	}
}

func TestFilterKeepsNewFindings(t *testing.T) {
	old := mkDiag("nofixme", "src/app.ag", "comment contains FIXME", 10, 15)
	b := New([]diag.Diagnostic{old})

	fresh := []diag.Diagnostic{
		old,
		mkDiag("nofixme", "src/app.ag", "comment contains FIXME", 90, 95),
		mkDiag("nounusedprivate", "src/app.ag", "private value spare is never used", 10, 15),
	}
	got := b.Filter(fresh)
	if len(got) != 2 {
		t.Fatalf("Filter() kept %d diagnostics, want 2", len(got))
	}
	if got[0].Primary.Start != 90 || got[1].Rule != "nounusedprivate" {
		t.Fatalf("Filter() kept %v, want the moved and the re-ruled findings", got)
	}
}

func TestKeyIgnoresFileHandle(t *testing.T) {
	// идентификаторы файлов между запусками не совпадают
	a := mkDiag("nofixme", "src/app.ag", "comment contains FIXME", 10, 15)
	a.Primary.File = 3
	b := a
	b.Primary.File = 17

	base := New([]diag.Diagnostic{a})
	if !base.Has(b) {
		t.Fatal("Has() = false for the same finding under another file handle")
	}
}

func TestKeyDistinguishesMessage(t *testing.T) {
	a := mkDiag("nounusedprivate", "src/app.ag", "private value one is never used", 10, 15)
	b := mkDiag("nounusedprivate", "src/app.ag", "private value two is never used", 10, 15)
	base := New([]diag.Diagnostic{a})
	if base.Has(b) {
		t.Fatal("Has() = true for a different message at the same span")
	}
}

func TestLoadRejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.mp")
	raw, err := msgpack.Marshal(&baselineFile{Schema: schemaVersion + 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = Load(path)
	if err == nil {
		t.Fatal("Load() error = nil, want schema error")
	}
	if !strings.Contains(err.Error(), "schema") {
		t.Fatalf("Load() error = %q, want it to mention the schema", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.mp"))
	if err == nil {
		t.Fatal("Load() error = nil, want error for a missing file")
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.mp")
	first := New([]diag.Diagnostic{mkDiag("nofixme", "a.ag", "x", 0, 1)})
	if err := first.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	second := New([]diag.Diagnostic{
		mkDiag("nofixme", "a.ag", "x", 0, 1),
		mkDiag("nofixme", "b.ag", "y", 2, 3),
	})
	if err := second.Write(path); err != nil {
		t.Fatalf("Write() rewrite error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d after rewrite, want 2", got.Len())
	}
	// во временном каталоге не должно остаться tmp-файлов
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory holds %d files after writes, want 1", len(entries))
	}
}

func TestNilBaseline(t *testing.T) {
	var b *Baseline
	d := mkDiag("nofixme", "a.ag", "x", 0, 1)
	if b.Has(d) {
		t.Fatal("nil baseline accepted a diagnostic")
	}
	if got := b.Filter([]diag.Diagnostic{d}); len(got) != 1 {
		t.Fatalf("nil baseline filtered diagnostics: %v", got)
	}
	if b.Len() != 0 {
		t.Fatalf("nil Len() = %d, want 0", b.Len())
	}
}
