package syntax

import (
	"argus/internal/ast"
)

// binding powers: чем больше, тем сильнее связывает
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "/=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"++": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) parseExpr() (ast.Expr, bool) {
	switch p.tok().Kind {
	case Backslash:
		return p.parseLambda()
	case KwLet:
		return p.parseLet()
	case KwIf:
		return p.parseIf()
	}
	return p.parseBinary(1)
}

func (p *parser) parseLambda() (ast.Expr, bool) {
	bs := p.bump() // '\'
	lam := &ast.Lambda{}

	for p.at(Ident) && !p.tok().BOL {
		param := p.bump()
		lam.Params = append(lam.Params, ast.Param{Name: param.Text, Loc: param.Span})
	}
	if len(lam.Params) == 0 {
		p.errorf(p.tok().Span, "expected parameter after '\\'")
		return nil, false
	}
	if _, ok := p.expect(Arrow); !ok {
		return nil, false
	}
	body, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	lam.Body = body
	lam.Loc = bs.Span.Cover(body.Span())
	return lam, true
}

func (p *parser) parseLet() (ast.Expr, bool) {
	kw := p.bump() // 'let'
	let := &ast.Let{}

	for {
		name, ok := p.expect(Ident)
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(Eq); !ok {
			return nil, false
		}
		value, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		let.Binds = append(let.Binds, &ast.LetBind{
			Name:     name.Text,
			NameSpan: name.Span,
			Value:    value,
			Loc:      name.Span.Cover(value.Span()),
		})
		if _, ok := p.eat(Semi); !ok {
			break
		}
	}

	if _, ok := p.expect(KwIn); !ok {
		return nil, false
	}
	body, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	let.Body = body
	let.Loc = kw.Span.Cover(body.Span())
	return let, true
}

func (p *parser) parseIf() (ast.Expr, bool) {
	kw := p.bump() // 'if'

	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(KwThen); !ok {
		return nil, false
	}
	thenE, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(KwElse); !ok {
		return nil, false
	}
	elseE, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	return &ast.If{
		Cond: cond,
		Then: thenE,
		Else: elseE,
		Loc:  kw.Span.Cover(elseE.Span()),
	}, true
}

// parseBinary - precedence climbing над приложениями.
func (p *parser) parseBinary(minPrec int) (ast.Expr, bool) {
	left, ok := p.parseApply()
	if !ok {
		return nil, false
	}

	for p.at(Op) && !p.tok().BOL {
		prec, known := binaryPrec[p.tok().Text]
		if !known || prec < minPrec {
			break
		}
		op := p.bump()
		right, ok := p.parseBinaryOperand(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.Binary{
			Op:    op.Text,
			Left:  left,
			Right: right,
			Loc:   left.Span().Cover(right.Span()),
		}
	}
	return left, true
}

// правый операнд бинарного оператора может быть и if/let/lambda:
// `a + if c then x else y` читается жадно до конца выражения
func (p *parser) parseBinaryOperand(minPrec int) (ast.Expr, bool) {
	switch p.tok().Kind {
	case Backslash:
		return p.parseLambda()
	case KwLet:
		return p.parseLet()
	case KwIf:
		return p.parseIf()
	}
	return p.parseBinary(minPrec)
}

// parseApply: atom atom* - применение левоассоциативно.
func (p *parser) parseApply() (ast.Expr, bool) {
	fn, ok := p.parseAtom()
	if !ok {
		return nil, false
	}

	var args []ast.Expr
	for p.atAtomStart() && !p.tok().BOL {
		arg, ok := p.parseAtom()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return fn, true
	}
	return &ast.Call{
		Fn:   fn,
		Args: args,
		Loc:  fn.Span().Cover(args[len(args)-1].Span()),
	}, true
}

func (p *parser) atAtomStart() bool {
	switch p.tok().Kind {
	case Ident, Int, Float, String, LParen, LBracket:
		return true
	}
	return false
}

func (p *parser) parseAtom() (ast.Expr, bool) {
	t := p.tok()
	// выражение не может начинаться в колонке 1: это граница декларации
	if t.BOL {
		p.errorf(t.Span, "expected expression, found start of new line")
		return nil, false
	}
	switch t.Kind {
	case Ident:
		p.bump()
		// квалифицированная ссылка: alias.name
		if p.at(Dot) {
			p.bump()
			name, ok := p.expect(Ident)
			if !ok {
				return nil, false
			}
			return &ast.Ident{
				Qual: t.Text,
				Name: name.Text,
				Loc:  t.Span.Cover(name.Span),
			}, true
		}
		return &ast.Ident{Name: t.Text, Loc: t.Span}, true

	case Int:
		p.bump()
		return &ast.Lit{Kind: ast.LitInt, Value: t.Text, Loc: t.Span}, true

	case Float:
		p.bump()
		return &ast.Lit{Kind: ast.LitFloat, Value: t.Text, Loc: t.Span}, true

	case String:
		p.bump()
		return &ast.Lit{Kind: ast.LitString, Value: t.Text, Loc: t.Span}, true

	case LParen:
		lp := p.bump()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		rp, okClose := p.expect(RParen)
		if !okClose {
			return nil, false
		}
		return &ast.Paren{Inner: inner, Loc: lp.Span.Cover(rp.Span)}, true

	case LBracket:
		return p.parseList()
	}

	p.errorf(t.Span, "expected expression, found %s", t.Kind)
	return nil, false
}

func (p *parser) parseList() (ast.Expr, bool) {
	lb := p.bump() // '['
	list := &ast.List{}

	if p.at(RBracket) {
		rb := p.bump()
		list.Loc = lb.Span.Cover(rb.Span)
		return list, true
	}

	for {
		elem, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		list.Elems = append(list.Elems, elem)
		if _, ok := p.eat(Comma); !ok {
			break
		}
	}

	rb, ok := p.expect(RBracket)
	if !ok {
		return nil, false
	}
	list.Loc = lb.Span.Cover(rb.Span)
	return list, true
}
