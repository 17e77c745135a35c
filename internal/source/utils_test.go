package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "file.ag")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want, err := AbsolutePath(target)
	if err != nil {
		t.Fatalf("AbsolutePath returned error: %v", err)
	}
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}

	target := filepath.Join(baseDir, "nested", "file.ag")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(filepath.Join("nested", "file.ag"))
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestToLineCol(t *testing.T) {
	// "ab\ncd\n\nx"
	idx := buildLineIndex([]byte("ab\ncd\n\nx"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start of file", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "second column", off: 1, want: LineCol{Line: 1, Col: 2}},
		{name: "newline itself", off: 2, want: LineCol{Line: 1, Col: 3}},
		{name: "start of second line", off: 3, want: LineCol{Line: 2, Col: 1}},
		{name: "empty line", off: 6, want: LineCol{Line: 3, Col: 1}},
		{name: "after empty line", off: 7, want: LineCol{Line: 4, Col: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toLineCol(idx, tt.off)
			if got != tt.want {
				t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
			}
		})
	}
}

func TestNormalizeNFC(t *testing.T) {
	// "é" как e + combining acute (NFD) должно свернуться в одну кодовую точку
	decomposed := []byte("é")
	got, changed := normalizeNFC(decomposed)
	if !changed {
		t.Error("Expected NFC normalization to be detected")
	}
	if string(got) != "é" {
		t.Errorf("normalizeNFC = %q, want %q", string(got), "é")
	}

	plain := []byte("hello")
	got, changed = normalizeNFC(plain)
	if changed {
		t.Error("Expected ASCII content to pass through unchanged")
	}
	if string(got) != "hello" {
		t.Errorf("normalizeNFC = %q, want %q", string(got), "hello")
	}
}
