// Package testkit holds shared checks for parser-facing tests and fuzz
// harnesses. It asserts structural invariants that every parsed module
// must satisfy regardless of input quality.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"argus/internal/ast"
	"argus/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed
// module:
//  1. the module span covers the whole file and points at it
//  2. every node span is inside the content bounds of the same file
//  3. imports, declarations and comments carry non-empty spans
//  4. comments appear in source order
//
// The header is exempt from (3): продолжение после сломанной шапки
// оставляет её span пустым.
func CheckSpanInvariants(mod *ast.Module, sf *source.File) error {
	if mod == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}

	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	if mod.Loc.File != sf.ID {
		return fmt.Errorf("module span points to different file id: got=%d want=%d", mod.Loc.File, sf.ID)
	}
	if mod.Loc.Start != 0 || mod.Loc.End != lenContent {
		return fmt.Errorf("module span %v does not cover content [0, %d)", mod.Loc, lenContent)
	}

	if !mod.Header.Loc.Empty() {
		if err := checkBounds("header", mod.Header.Loc, sf.ID, lenContent); err != nil {
			return err
		}
	}
	if mod.Header.Name != "" {
		if err := checkNode("header name", mod.Header.NameSpan, sf.ID, lenContent); err != nil {
			return err
		}
	}

	for i, imp := range mod.Imports {
		if err := checkNode(fmt.Sprintf("import[%d]", i), imp.Loc, sf.ID, lenContent); err != nil {
			return err
		}
		if err := checkNode(fmt.Sprintf("import[%d] path", i), imp.PathSpan, sf.ID, lenContent); err != nil {
			return err
		}
	}

	for i, d := range mod.Decls {
		if err := checkNode(fmt.Sprintf("decl[%d] %s", i, d.Name), d.Loc, sf.ID, lenContent); err != nil {
			return err
		}
		if err := checkNode(fmt.Sprintf("decl[%d] name", i), d.NameSpan, sf.ID, lenContent); err != nil {
			return err
		}
		if d.NameSpan.Start < d.Loc.Start || d.NameSpan.End > d.Loc.End {
			return fmt.Errorf("decl[%d] name span %v escapes decl span %v", i, d.NameSpan, d.Loc)
		}
	}

	var prev uint32
	for i, c := range mod.Comments {
		if err := checkNode(fmt.Sprintf("comment[%d]", i), c.Loc, sf.ID, lenContent); err != nil {
			return err
		}
		if c.Loc.Start < prev {
			return fmt.Errorf("comment[%d] out of source order: start %d after %d", i, c.Loc.Start, prev)
		}
		prev = c.Loc.Start
	}

	return nil
}

// checkNode requires a non-empty in-bounds span.
func checkNode(what string, sp source.Span, id source.FileID, lenContent uint32) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("%s span is empty: %v", what, sp)
	}
	return checkBounds(what, sp, id, lenContent)
}

// checkBounds requires the span to index the right file within content.
func checkBounds(what string, sp source.Span, id source.FileID, lenContent uint32) error {
	if sp.File != id {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", what, sp.File, id)
	}
	if sp.Start > sp.End {
		return fmt.Errorf("%s span is inverted: %v", what, sp)
	}
	if sp.End > lenContent {
		return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, lenContent)
	}
	return nil
}
