package fuzztests

import (
	"testing"

	"argus/internal/diag"
	"argus/internal/source"
	"argus/internal/syntax"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzScannerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.ag", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		toks, comments := syntax.ScanAll(file, diag.BagReporter{Bag: bag})

		if len(toks) == 0 {
			t.Fatalf("ScanAll returned no tokens")
		}
		last := toks[len(toks)-1]
		if last.Kind != syntax.EOF {
			t.Fatalf("last token = %v, want EOF", last.Kind)
		}

		// контент нормализован, спаны должны указывать в него
		limit := uint32(len(file.Content))
		var prev uint32
		for i, tok := range toks {
			sp := tok.Span
			if sp.File != file.ID {
				t.Fatalf("token[%d] file = %d, want %d", i, sp.File, file.ID)
			}
			if sp.Start > sp.End || sp.End > limit {
				t.Fatalf("token[%d] span %v out of bounds [0, %d)", i, sp, limit)
			}
			if tok.Kind != syntax.EOF && sp.End == sp.Start {
				t.Fatalf("token[%d] %v has empty span", i, tok.Kind)
			}
			if sp.Start < prev {
				t.Fatalf("token[%d] starts at %d before previous %d", i, sp.Start, prev)
			}
			prev = sp.Start
		}

		prev = 0
		for i, c := range comments {
			if c.Loc.Start > c.Loc.End || c.Loc.End > limit {
				t.Fatalf("comment[%d] span %v out of bounds [0, %d)", i, c.Loc, limit)
			}
			if c.Loc.Start < prev {
				t.Fatalf("comment[%d] out of order", i)
			}
			prev = c.Loc.Start
		}
	})
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
