package rules

import (
	"strings"
	"testing"
)

func TestNoFixmeFlagsLineComment(t *testing.T) {
	src := "module app exposing (main)\n" +
		"-- FIXME drop the shim\n" +
		"main = 1\n"
	fx := fixture{srcs: map[string]string{"src/app.ag": src}}

	diags := fx.analyze(t, NoFixme())
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", messages(diags))
	}
	d := diags[0]
	if d.Message != "comment contains FIXME" {
		t.Fatalf("Message = %q", d.Message)
	}
	start, end := spanOf(t, src, "FIXME")
	if d.Primary.Start != start || d.Primary.End != end {
		t.Fatalf("Primary = [%d,%d), want [%d,%d)", d.Primary.Start, d.Primary.End, start, end)
	}
}

func TestNoFixmeFlagsEveryMarker(t *testing.T) {
	src := "module app exposing (main)\n" +
		"{- FIXME first\n   FIXME second -}\n" +
		"main = 1\n" +
		"-- FIXME third\n"
	fx := fixture{srcs: map[string]string{"src/app.ag": src}}

	diags := fx.analyze(t, NoFixme())
	if len(diags) != 3 {
		t.Fatalf("diagnostics = %v, want three", messages(diags))
	}
	// спаны идут по позициям вхождений
	at := 0
	for i, d := range diags {
		idx := strings.Index(src[at:], "FIXME")
		if idx < 0 {
			t.Fatalf("ran out of markers at diagnostic %d", i)
		}
		want := uint32(at + idx)
		if d.Primary.Start != want {
			t.Fatalf("diagnostic %d start = %d, want %d", i, d.Primary.Start, want)
		}
		at += idx + len("FIXME")
	}
}

func TestNoFixmeQuiet(t *testing.T) {
	src := "module app exposing (main)\n" +
		"-- fixme in lower case stays\n" +
		"main = \"FIXME in a string is code, not a comment\"\n"
	fx := fixture{srcs: map[string]string{"src/app.ag": src}}
	if diags := fx.analyze(t, NoFixme()); len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", messages(diags))
	}
}
