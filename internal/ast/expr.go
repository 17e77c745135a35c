package ast

import (
	"argus/internal/source"
)

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// LitKind discriminates literal expressions.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	}
	return "unknown"
}

// Ident is a reference, optionally qualified by an import's local name:
// `map`, `l.map`.
type Ident struct {
	Qual string // "" для неквалифицированных ссылок
	Name string
	Loc  source.Span
}

// Lit is an int, float or string literal. Value keeps the source text.
type Lit struct {
	Kind  LitKind
	Value string
	Loc   source.Span
}

// Call is left-associative application: `f a b` is Call{Call{f,a},b}
// flattened to Fn=f, Args=[a,b].
type Call struct {
	Fn   Expr
	Args []Expr
	Loc  source.Span
}

// Binary is an infix operator application.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Loc   source.Span
}

// If is `if cond then a else b`.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  source.Span
}

// LetBind is one binding inside a let expression.
type LetBind struct {
	Name     string
	NameSpan source.Span
	Value    Expr
	Loc      source.Span
}

// Let is `let n = e; m = e2 in body`.
type Let struct {
	Binds []*LetBind
	Body  Expr
	Loc   source.Span
}

// Lambda is `\x y -> body`.
type Lambda struct {
	Params []Param
	Body   Expr
	Loc    source.Span
}

// List is `[a, b, c]`.
type List struct {
	Elems []Expr
	Loc   source.Span
}

// Paren keeps explicit grouping so spans stay faithful to the source.
type Paren struct {
	Inner Expr
	Loc   source.Span
}

func (e *Ident) Span() source.Span  { return e.Loc }
func (e *Lit) Span() source.Span    { return e.Loc }
func (e *Call) Span() source.Span   { return e.Loc }
func (e *Binary) Span() source.Span { return e.Loc }
func (e *If) Span() source.Span     { return e.Loc }
func (e *Let) Span() source.Span    { return e.Loc }
func (e *Lambda) Span() source.Span { return e.Loc }
func (e *List) Span() source.Span   { return e.Loc }
func (e *Paren) Span() source.Span  { return e.Loc }

func (*Ident) exprNode()  {}
func (*Lit) exprNode()    {}
func (*Call) exprNode()   {}
func (*Binary) exprNode() {}
func (*If) exprNode()     {}
func (*Let) exprNode()    {}
func (*Lambda) exprNode() {}
func (*List) exprNode()   {}
func (*Paren) exprNode()  {}
