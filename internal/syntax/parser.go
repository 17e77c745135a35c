package syntax

import (
	"fmt"
	"strings"

	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/source"
)

// Parse scans and parses one file into a module. Problems are reported
// to the reporter; ok is false when any of them was an error, in which
// case the returned module must not enter a project.
func Parse(file *source.File, reporter diag.Reporter) (*ast.Module, bool) {
	bag := diag.NewBag(128)
	collect := diag.BagReporter{Bag: bag}

	toks, comments := ScanAll(file, collect)

	p := &parser{
		file:     file,
		toks:     toks,
		reporter: collect,
	}
	mod := p.parseModule()
	mod.Comments = comments

	for _, d := range bag.Items() {
		if reporter != nil {
			reporter.Report(d)
		}
	}
	return mod, !bag.HasErrors()
}

type parser struct {
	file     *source.File
	toks     []Token
	pos      int
	reporter diag.Reporter
}

func (p *parser) tok() Token {
	return p.toks[p.pos]
}

func (p *parser) at(k Kind) bool {
	return p.tok().Kind == k
}

func (p *parser) bump() Token {
	t := p.tok()
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) eat(k Kind) (Token, bool) {
	if p.at(k) {
		return p.bump(), true
	}
	return p.tok(), false
}

func (p *parser) expect(k Kind) (Token, bool) {
	if t, ok := p.eat(k); ok {
		return t, true
	}
	t := p.tok()
	p.errorf(t.Span, "expected %s, found %s", k, t.Kind)
	return t, false
}

func (p *parser) errorf(sp source.Span, format string, args ...any) {
	diag.ReportError(p.reporter, RuleName, sp, fmt.Sprintf(format, args...)).
		WithPath(p.file.Path).
		Emit()
}

// syncToLineStart пропускает токены до начала следующей строки верхнего уровня.
func (p *parser) syncToLineStart() {
	p.bump()
	for !p.at(EOF) && !p.tok().BOL {
		p.bump()
	}
}

func (p *parser) parseModule() *ast.Module {
	mod := &ast.Module{}

	mod.Header = p.parseHeader()
	mod.Imports = p.parseImports()

	for !p.at(EOF) {
		if !p.at(Ident) || !p.tok().BOL {
			t := p.tok()
			p.errorf(t.Span, "expected declaration, found %s", t.Kind)
			p.syncToLineStart()
			continue
		}
		if d := p.parseDecl(); d != nil {
			mod.Decls = append(mod.Decls, d)
		}
	}

	mod.Loc = source.Span{File: p.file.ID, Start: 0, End: uint32(len(p.file.Content))}
	return mod
}

func (p *parser) parseHeader() ast.Header {
	var h ast.Header
	start := p.tok().Span

	if _, ok := p.expect(KwModule); !ok {
		p.syncToLineStart()
		return h
	}
	name, nameSpan, ok := p.parsePath()
	if !ok {
		p.syncToLineStart()
		return h
	}
	h.Name = name
	h.NameSpan = nameSpan

	if _, ok := p.expect(KwExposing); !ok {
		p.syncToLineStart()
		return h
	}
	if ex, ok := p.parseExposing(); ok {
		h.Exposing = ex
	}
	h.Loc = start.Cover(p.prevSpan())
	return h
}

// parsePath собирает путь модуля: ident ('/' ident)*
func (p *parser) parsePath() (string, source.Span, bool) {
	first, ok := p.expect(Ident)
	if !ok {
		return "", first.Span, false
	}
	segments := []string{first.Text}
	sp := first.Span

	for p.at(Op) && p.tok().Text == "/" {
		p.bump()
		seg, ok := p.expect(Ident)
		if !ok {
			return "", sp, false
		}
		segments = append(segments, seg.Text)
		sp = sp.Cover(seg.Span)
	}
	return strings.Join(segments, "/"), sp, true
}

func (p *parser) parseExposing() (ast.Exposing, bool) {
	var ex ast.Exposing
	lp, ok := p.expect(LParen)
	if !ok {
		return ex, false
	}
	sp := lp.Span

	if p.at(DotDot) {
		p.bump()
		ex.All = true
	} else {
		for {
			name, ok := p.expect(Ident)
			if !ok {
				return ex, false
			}
			ex.Names = append(ex.Names, ast.ExposedName{Name: name.Text, Loc: name.Span})
			if _, ok := p.eat(Comma); !ok {
				break
			}
		}
	}

	rp, ok := p.expect(RParen)
	if !ok {
		return ex, false
	}
	ex.Loc = sp.Cover(rp.Span)
	return ex, true
}

func (p *parser) parseImports() []*ast.Import {
	var imports []*ast.Import
	for p.at(KwImport) {
		kw := p.bump()

		path, pathSpan, ok := p.parsePath()
		if !ok {
			p.syncToLineStart()
			continue
		}
		imp := &ast.Import{Path: path, PathSpan: pathSpan}
		sp := kw.Span.Cover(pathSpan)

		if p.at(KwAs) {
			p.bump()
			alias, ok := p.expect(Ident)
			if !ok {
				p.syncToLineStart()
				continue
			}
			imp.Alias = alias.Text
			sp = sp.Cover(alias.Span)
		}
		if p.at(KwExposing) {
			p.bump()
			ex, ok := p.parseExposing()
			if !ok {
				p.syncToLineStart()
				continue
			}
			imp.Exposing = &ex
			sp = sp.Cover(ex.Loc)
		}
		imp.Loc = sp
		imports = append(imports, imp)
	}
	return imports
}

func (p *parser) parseDecl() *ast.Decl {
	name := p.bump() // Ident, проверен вызывающим
	d := &ast.Decl{Name: name.Text, NameSpan: name.Span}

	for p.at(Ident) && !p.tok().BOL {
		param := p.bump()
		d.Params = append(d.Params, ast.Param{Name: param.Text, Loc: param.Span})
	}

	if _, ok := p.expect(Eq); !ok {
		p.syncToLineStart()
		return nil
	}

	body, ok := p.parseExpr()
	if !ok {
		p.syncToLineStart()
		return nil
	}
	d.Body = body
	d.Loc = name.Span.Cover(body.Span())
	return d
}

func (p *parser) prevSpan() source.Span {
	if p.pos == 0 {
		return p.tok().Span
	}
	return p.toks[p.pos-1].Span
}
