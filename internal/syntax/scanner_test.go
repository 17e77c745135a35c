package syntax

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/source"
)

func scanText(t *testing.T, text string) ([]Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ag", []byte(text))
	bag := diag.NewBag(64)
	toks, _ := ScanAll(fs.Get(id), diag.BagReporter{Bag: bag})
	return toks, bag
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestScanKinds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Kind
	}{
		{
			name: "header",
			text: "module app/main exposing (main)",
			want: []Kind{KwModule, Ident, Op, Ident, KwExposing, LParen, Ident, RParen, EOF},
		},
		{
			name: "expose all",
			text: "exposing (..)",
			want: []Kind{KwExposing, LParen, DotDot, RParen, EOF},
		},
		{
			name: "import with alias",
			text: "import lib/list as l",
			want: []Kind{KwImport, Ident, Op, Ident, KwAs, Ident, EOF},
		},
		{
			name: "declaration",
			text: "inc x = x + 1",
			want: []Kind{Ident, Ident, Eq, Ident, Op, Int, EOF},
		},
		{
			name: "operators",
			text: "a == b /= c <= d >= e ++ f && g || h",
			want: []Kind{Ident, Op, Ident, Op, Ident, Op, Ident, Op, Ident, Op, Ident, Op, Ident, Op, Ident, EOF},
		},
		{
			name: "lambda",
			text: "\\x -> x",
			want: []Kind{Backslash, Ident, Arrow, Ident, EOF},
		},
		{
			name: "qualified reference",
			text: "l.map",
			want: []Kind{Ident, Dot, Ident, EOF},
		},
		{
			name: "numbers",
			text: "1 2.5 10",
			want: []Kind{Int, Float, Int, EOF},
		},
		{
			name: "string literal",
			text: `greet = "hello \"world\""`,
			want: []Kind{Ident, Eq, String, EOF},
		},
		{
			name: "list",
			text: "[1, 2]",
			want: []Kind{LBracket, Int, Comma, Int, RBracket, EOF},
		},
		{
			name: "let in",
			text: "let a = 1; b = 2 in a",
			want: []Kind{KwLet, Ident, Eq, Int, Semi, Ident, Eq, Int, KwIn, Ident, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := scanText(t, tt.text)
			if bag.HasErrors() {
				t.Fatalf("unexpected scan errors: %v", bag.Items())
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("kinds = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("kinds[%d] = %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestScanComments(t *testing.T) {
	fs := source.NewFileSet()
	text := "-- line one\nmain = 1 {- block\nspanning -} \n-- tail"
	id := fs.AddVirtual("test.ag", []byte(text))
	bag := diag.NewBag(64)
	_, comments := ScanAll(fs.Get(id), diag.BagReporter{Bag: bag})

	if bag.HasErrors() {
		t.Fatalf("unexpected scan errors: %v", bag.Items())
	}
	if len(comments) != 3 {
		t.Fatalf("len(comments) = %d, want 3", len(comments))
	}
	if comments[0].Text != "-- line one" || comments[0].Block {
		t.Errorf("comments[0] = %+v, want line comment '-- line one'", comments[0])
	}
	if !comments[1].Block {
		t.Errorf("comments[1] expected to be a block comment")
	}
	if comments[2].Text != "-- tail" {
		t.Errorf("comments[2].Text = %q, want %q", comments[2].Text, "-- tail")
	}
}

func TestScanNestedBlockComment(t *testing.T) {
	toks, bag := scanText(t, "{- outer {- inner -} still outer -} x")
	if bag.HasErrors() {
		t.Fatalf("unexpected scan errors: %v", bag.Items())
	}
	got := kinds(toks)
	if len(got) != 2 || got[0] != Ident || got[1] != EOF {
		t.Errorf("kinds = %v, want [Ident EOF]", got)
	}
}

func TestScanUnterminated(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "string", text: `s = "oops`},
		{name: "string at newline", text: "s = \"oops\nnext = 1"},
		{name: "block comment", text: "{- never closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := scanText(t, tt.text)
			if !bag.HasErrors() {
				t.Error("Expected a scan error")
			}
		})
	}
}

func TestScanUnknownChar(t *testing.T) {
	_, bag := scanText(t, "main = 1 #")
	if !bag.HasErrors() {
		t.Fatal("Expected a scan error for unknown character")
	}
	d := bag.Items()[0]
	if d.Rule != RuleName {
		t.Errorf("Rule = %q, want %q", d.Rule, RuleName)
	}
	if d.Path != "test.ag" {
		t.Errorf("Path = %q, want %q", d.Path, "test.ag")
	}
}

func TestScanBOL(t *testing.T) {
	toks, _ := scanText(t, "main =\n  1\nnext = 2")

	// main(BOL) =  1  next(BOL) = 2
	wantBOL := []bool{true, false, false, true, false, false}
	for i, want := range wantBOL {
		if toks[i].BOL != want {
			t.Errorf("toks[%d] (%s %q) BOL = %v, want %v", i, toks[i].Kind, toks[i].Text, toks[i].BOL, want)
		}
	}
}
