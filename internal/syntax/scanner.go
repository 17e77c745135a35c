package syntax

import (
	"fmt"

	"argus/internal/ast"
	"argus/internal/diag"
	"argus/internal/source"
)

// RuleName is the rule identity syntax diagnostics are reported under.
const RuleName = "syntax"

type scanner struct {
	file     *source.File
	off      uint32
	reporter diag.Reporter
	comments []ast.Comment
}

// ScanAll tokenizes the whole file, reporting lexical problems to the
// reporter. Comments are collected separately in source order; the
// returned token slice always ends with EOF.
func ScanAll(file *source.File, reporter diag.Reporter) ([]Token, []ast.Comment) {
	s := &scanner{file: file, reporter: reporter}
	var toks []Token
	for {
		tok := s.next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, s.comments
		}
	}
}

func (s *scanner) len() uint32 {
	return uint32(len(s.file.Content))
}

func (s *scanner) eof() bool {
	return s.off >= s.len()
}

func (s *scanner) peek() byte {
	return s.file.Content[s.off]
}

func (s *scanner) peekAt(n uint32) (byte, bool) {
	if s.off+n >= s.len() {
		return 0, false
	}
	return s.file.Content[s.off+n], true
}

func (s *scanner) span(start uint32) source.Span {
	return source.Span{File: s.file.ID, Start: start, End: s.off}
}

func (s *scanner) text(sp source.Span) string {
	return string(s.file.Content[sp.Start:sp.End])
}

// atLineStart: токен начинается в колонке 1
func (s *scanner) atLineStart(start uint32) bool {
	return start == 0 || s.file.Content[start-1] == '\n'
}

func (s *scanner) errorf(sp source.Span, format string, args ...any) {
	diag.ReportError(s.reporter, RuleName, sp, fmt.Sprintf(format, args...)).
		WithPath(s.file.Path).
		Emit()
}

func (s *scanner) next() Token {
	s.skipTrivia()

	start := s.off
	if s.eof() {
		return Token{Kind: EOF, Span: s.span(start), BOL: s.atLineStart(start)}
	}

	bol := s.atLineStart(start)
	ch := s.peek()

	var kind Kind
	switch {
	case isIdentStart(ch):
		kind = s.scanIdent()
	case isDigit(ch):
		kind = s.scanNumber()
	case ch == '"':
		kind = s.scanString()
	default:
		kind = s.scanOperatorOrPunct()
	}

	sp := s.span(start)
	return Token{Kind: kind, Text: s.text(sp), Span: sp, BOL: bol}
}

// skipTrivia пропускает пробелы и собирает комментарии.
func (s *scanner) skipTrivia() {
	for !s.eof() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			s.off++
		case ch == '-' && s.peekIs(1, '-'):
			s.scanLineComment()
		case ch == '{' && s.peekIs(1, '-'):
			s.scanBlockComment()
		default:
			return
		}
	}
}

func (s *scanner) peekIs(n uint32, want byte) bool {
	b, ok := s.peekAt(n)
	return ok && b == want
}

func (s *scanner) scanLineComment() {
	start := s.off
	for !s.eof() && s.peek() != '\n' {
		s.off++
	}
	sp := s.span(start)
	s.comments = append(s.comments, ast.Comment{Text: s.text(sp), Loc: sp})
}

func (s *scanner) scanBlockComment() {
	start := s.off
	s.off += 2 // за "{-"
	depth := 1
	for !s.eof() && depth > 0 {
		switch {
		case s.peek() == '{' && s.peekIs(1, '-'):
			depth++
			s.off += 2
		case s.peek() == '-' && s.peekIs(1, '}'):
			depth--
			s.off += 2
		default:
			s.off++
		}
	}
	sp := s.span(start)
	if depth > 0 {
		s.errorf(sp, "unterminated block comment")
	}
	s.comments = append(s.comments, ast.Comment{Text: s.text(sp), Block: true, Loc: sp})
}

func (s *scanner) scanIdent() Kind {
	start := s.off
	for !s.eof() && isIdentContinue(s.peek()) {
		s.off++
	}
	if kw, ok := keywords[s.text(s.span(start))]; ok {
		return kw
	}
	return Ident
}

func (s *scanner) scanNumber() Kind {
	for !s.eof() && isDigit(s.peek()) {
		s.off++
	}
	// дробная часть, но не '..'
	if !s.eof() && s.peek() == '.' {
		next, ok := s.peekAt(1)
		if ok && isDigit(next) {
			s.off++ // '.'
			for !s.eof() && isDigit(s.peek()) {
				s.off++
			}
			return Float
		}
	}
	return Int
}

func (s *scanner) scanString() Kind {
	start := s.off
	s.off++ // открывающая кавычка
	for !s.eof() {
		switch s.peek() {
		case '"':
			s.off++
			return String
		case '\\':
			s.off++
			if !s.eof() {
				s.off++
			}
		case '\n':
			s.errorf(s.span(start), "unterminated string literal")
			return String
		default:
			s.off++
		}
	}
	s.errorf(s.span(start), "unterminated string literal")
	return String
}

func (s *scanner) scanOperatorOrPunct() Kind {
	ch := s.peek()
	start := s.off

	two := func(next byte) bool {
		return s.peekIs(1, next)
	}

	switch ch {
	case '(':
		s.off++
		return LParen
	case ')':
		s.off++
		return RParen
	case '[':
		s.off++
		return LBracket
	case ']':
		s.off++
		return RBracket
	case ',':
		s.off++
		return Comma
	case ';':
		s.off++
		return Semi
	case '\\':
		s.off++
		return Backslash
	case '.':
		if two('.') {
			s.off += 2
			return DotDot
		}
		s.off++
		return Dot
	case '=':
		if two('=') {
			s.off += 2
			return Op
		}
		s.off++
		return Eq
	case '-':
		if two('>') {
			s.off += 2
			return Arrow
		}
		s.off++
		return Op
	case '+':
		if two('+') {
			s.off += 2
			return Op
		}
		s.off++
		return Op
	case '*', '%':
		s.off++
		return Op
	case '/':
		if two('=') {
			s.off += 2
			return Op
		}
		s.off++
		return Op
	case '<', '>':
		if two('=') {
			s.off += 2
			return Op
		}
		s.off++
		return Op
	case '&':
		if two('&') {
			s.off += 2
			return Op
		}
	case '|':
		if two('|') {
			s.off += 2
			return Op
		}
	}

	// неизвестный символ: сообщаем и пропускаем
	s.off++
	sp := s.span(start)
	s.errorf(sp, "unexpected character %q", s.text(sp))
	return Op
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
