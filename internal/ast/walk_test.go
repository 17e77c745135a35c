package ast

import (
	"strings"
	"testing"
)

func ident(name string) *Ident {
	return &Ident{Name: name}
}

func TestInspectOrder(t *testing.T) {
	// f (g x) y
	expr := &Call{
		Fn: ident("f"),
		Args: []Expr{
			&Paren{Inner: &Call{Fn: ident("g"), Args: []Expr{ident("x")}}},
			ident("y"),
		},
	}

	var trace []string
	Inspect(expr,
		func(e Expr) bool {
			trace = append(trace, "enter:"+label(e))
			return true
		},
		func(e Expr) {
			trace = append(trace, "exit:"+label(e))
		})

	want := []string{
		"enter:call", "enter:f", "exit:f",
		"enter:paren", "enter:call", "enter:g", "exit:g",
		"enter:x", "exit:x", "exit:call", "exit:paren",
		"enter:y", "exit:y", "exit:call",
	}
	got := strings.Join(trace, " ")
	if got != strings.Join(want, " ") {
		t.Errorf("Inspect order = %v, want %v", trace, want)
	}
}

func TestInspectSkipChildren(t *testing.T) {
	// if c then a else b: пропускаем детей if, но exit для него срабатывает
	expr := &If{Cond: ident("c"), Then: ident("a"), Else: ident("b")}

	var entered, exited []string
	Inspect(expr,
		func(e Expr) bool {
			entered = append(entered, label(e))
			return false
		},
		func(e Expr) {
			exited = append(exited, label(e))
		})

	if len(entered) != 1 || entered[0] != "if" {
		t.Errorf("entered = %v, want [if]", entered)
	}
	if len(exited) != 1 || exited[0] != "if" {
		t.Errorf("exited = %v, want [if]", exited)
	}
}

func TestInspectLetBindings(t *testing.T) {
	// let a = x; b = y in body - значения биндов обходятся до body
	expr := &Let{
		Binds: []*LetBind{
			{Name: "a", Value: ident("x")},
			{Name: "b", Value: ident("y")},
		},
		Body: ident("body"),
	}

	var names []string
	Inspect(expr, func(e Expr) bool {
		if id, ok := e.(*Ident); ok {
			names = append(names, id.Name)
		}
		return true
	}, nil)

	want := "x y body"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("visit order = %q, want %q", got, want)
	}
}

func TestExposingExposes(t *testing.T) {
	tests := []struct {
		name     string
		exposing Exposing
		query    string
		want     bool
	}{
		{
			name:     "exposed name",
			exposing: Exposing{Names: []ExposedName{{Name: "map"}, {Name: "filter"}}},
			query:    "map",
			want:     true,
		},
		{
			name:     "hidden name",
			exposing: Exposing{Names: []ExposedName{{Name: "map"}}},
			query:    "reduce",
			want:     false,
		},
		{
			name:     "expose all",
			exposing: Exposing{All: true},
			query:    "anything",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exposing.Exposes(tt.query); got != tt.want {
				t.Errorf("Exposes(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestImportLocalName(t *testing.T) {
	tests := []struct {
		imp  Import
		want string
	}{
		{imp: Import{Path: "lib/str"}, want: "str"},
		{imp: Import{Path: "lib/str", Alias: "s"}, want: "s"},
		{imp: Import{Path: "single"}, want: "single"},
	}

	for _, tt := range tests {
		if got := tt.imp.LocalName(); got != tt.want {
			t.Errorf("LocalName(%q, alias %q) = %q, want %q", tt.imp.Path, tt.imp.Alias, got, tt.want)
		}
	}
}

func label(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		return n.Name
	case *Call:
		return "call"
	case *Paren:
		return "paren"
	case *If:
		return "if"
	case *Let:
		return "let"
	}
	return "?"
}
