package syntax

import (
	"argus/internal/source"
)

// Kind classifies scanned tokens.
type Kind uint8

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String

	KwModule
	KwImport
	KwExposing
	KwAs
	KwIf
	KwThen
	KwElse
	KwLet
	KwIn

	LParen
	RParen
	LBracket
	RBracket
	Comma
	Semi
	Eq
	Backslash
	Arrow
	Dot
	DotDot
	Op
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Int:
		return "int literal"
	case Float:
		return "float literal"
	case String:
		return "string literal"
	case KwModule:
		return "'module'"
	case KwImport:
		return "'import'"
	case KwExposing:
		return "'exposing'"
	case KwAs:
		return "'as'"
	case KwIf:
		return "'if'"
	case KwThen:
		return "'then'"
	case KwElse:
		return "'else'"
	case KwLet:
		return "'let'"
	case KwIn:
		return "'in'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Comma:
		return "','"
	case Semi:
		return "';'"
	case Eq:
		return "'='"
	case Backslash:
		return "'\\'"
	case Arrow:
		return "'->'"
	case Dot:
		return "'.'"
	case DotDot:
		return "'..'"
	case Op:
		return "operator"
	}
	return "unknown"
}

// Token is one significant token. BOL marks tokens that start at
// column 1: the parser uses it as the declaration boundary.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
	BOL  bool
}

var keywords = map[string]Kind{
	"module":   KwModule,
	"import":   KwImport,
	"exposing": KwExposing,
	"as":       KwAs,
	"if":       KwIf,
	"then":     KwThen,
	"else":     KwElse,
	"let":      KwLet,
	"in":       KwIn,
}
