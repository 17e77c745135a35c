package fuzztests

import (
	"strings"
	"testing"
	"time"

	"argus/internal/diag"
	"argus/internal/source"
	"argus/internal/syntax"
	"argus/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsModule(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.ag", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(128)
		mod, _ := syntax.Parse(file, diag.BagReporter{Bag: bag})
		if mod == nil {
			t.Fatal("Parse returned nil module")
		}

		if err := testkit.CheckSpanInvariants(mod, file); err != nil {
			t.Fatalf("span invariants: %v\ninput (%d bytes): %q",
				err, len(input), truncateForLog(input, 200))
		}
	})
}

// FuzzParserNoHang tests that the parser terminates on any input. It
// uses a timeout to detect loops in error recovery.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// формы, склонные зацикливать восстановление
	f.Add([]byte("module a exposing (x)\nx = " + strings.Repeat("(", 2000)))
	f.Add([]byte("module a exposing (x)\nx = " + strings.Repeat("[1,", 1000)))
	f.Add([]byte("module a exposing (x)\nx = \\\\\\\\"))
	f.Add([]byte("module a exposing (x)\nx = let let let in in in 1"))
	f.Add([]byte(strings.Repeat("import a/b\n", 500)))
	f.Add([]byte("module a exposing (x)\nx = 1 " + strings.Repeat("+ ", 3000)))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		done := make(chan struct{})
		go func() {
			defer close(done)

			fs := source.NewFileSet()
			fileID := fs.AddVirtual("fuzz.ag", input)
			file := fs.Get(fileID)

			bag := diag.NewBag(128)
			_, _ = syntax.Parse(file, diag.BagReporter{Bag: bag})
		}()

		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes.
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
