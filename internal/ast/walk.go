package ast

// Inspect walks the expression tree depth-first. enter runs pre-order
// and exit runs post-order. When enter returns false the node's
// children are skipped; exit still fires for the node itself.
// Either callback may be nil.
func Inspect(e Expr, enter func(Expr) bool, exit func(Expr)) {
	if e == nil {
		return
	}

	descend := true
	if enter != nil {
		descend = enter(e)
	}

	if descend {
		for _, child := range Children(e) {
			Inspect(child, enter, exit)
		}
	}

	if exit != nil {
		exit(e)
	}
}

// Children returns the direct subexpressions of e in source order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Call:
		out := make([]Expr, 0, len(n.Args)+1)
		out = append(out, n.Fn)
		out = append(out, n.Args...)
		return out
	case *Binary:
		return []Expr{n.Left, n.Right}
	case *If:
		return []Expr{n.Cond, n.Then, n.Else}
	case *Let:
		out := make([]Expr, 0, len(n.Binds)+1)
		for _, b := range n.Binds {
			out = append(out, b.Value)
		}
		out = append(out, n.Body)
		return out
	case *Lambda:
		return []Expr{n.Body}
	case *List:
		return n.Elems
	case *Paren:
		return []Expr{n.Inner}
	}
	// Ident и Lit - листья
	return nil
}
