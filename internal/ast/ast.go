// Package ast defines the syntax tree produced by internal/syntax and
// consumed by the analysis engine. Nodes are plain values with source
// spans; the tree is immutable after parsing.
package ast

import (
	"argus/internal/source"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Span() source.Span
}

// Module is one parsed source file.
type Module struct {
	Header   Header
	Comments []Comment // все комментарии файла в исходном порядке
	Imports  []*Import
	Decls    []*Decl
	Loc      source.Span
}

func (m *Module) Span() source.Span { return m.Loc }

// Name returns the declared namespace path ("a/b").
func (m *Module) Name() string { return m.Header.Name }

// Header is the module declaration line.
type Header struct {
	Name     string // нормализованный путь "a/b"
	NameSpan source.Span
	Exposing Exposing
	Loc      source.Span
}

func (h *Header) Span() source.Span { return h.Loc }

// Exposing lists what a header or import makes visible.
type Exposing struct {
	All   bool
	Names []ExposedName
	Loc   source.Span
}

type ExposedName struct {
	Name string
	Loc  source.Span
}

// Exposes reports whether name is visible through this exposing list.
func (e Exposing) Exposes(name string) bool {
	if e.All {
		return true
	}
	for _, n := range e.Names {
		if n.Name == name {
			return true
		}
	}
	return false
}

// Import is one import line: path, optional alias, optional exposing.
type Import struct {
	Path     string
	PathSpan source.Span
	Alias    string // "" когда нет as
	Exposing *Exposing
	Loc      source.Span
}

func (i *Import) Span() source.Span { return i.Loc }

// LocalName returns the qualifier this import binds: the alias when
// present, otherwise the last path segment.
func (i *Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	for j := len(i.Path) - 1; j >= 0; j-- {
		if i.Path[j] == '/' {
			return i.Path[j+1:]
		}
	}
	return i.Path
}

// Comment is one line or block comment.
type Comment struct {
	Text  string // включая маркеры -- / {- -}
	Block bool
	Loc   source.Span
}

func (c *Comment) Span() source.Span { return c.Loc }

// Param is a declaration or lambda parameter.
type Param struct {
	Name string
	Loc  source.Span
}

// Decl is one top-level value declaration: name params = body.
type Decl struct {
	Name     string
	NameSpan source.Span
	Params   []Param
	Body     Expr
	Loc      source.Span
}

func (d *Decl) Span() source.Span { return d.Loc }
