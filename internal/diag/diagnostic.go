package diag

import (
	"argus/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type TextEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a structured correction suggestion. The engine never applies
// edits itself; renderers surface them and external tooling may.
type Fix struct {
	Title string
	Edits []TextEdit
}

// Diagnostic is one finding of one rule against one location.
// Path names the owning file ("" for project-global findings); Primary
// points into the FileSet version the finding was produced against.
type Diagnostic struct {
	Rule     string
	Severity Severity
	Message  string
	Details  []string
	Path     string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, rule string, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Rule:     rule,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(rule string, primary source.Span, msg string) Diagnostic {
	return New(SevError, rule, primary, msg)
}

func (d Diagnostic) WithPath(path string) Diagnostic {
	d.Path = path
	return d
}

func (d Diagnostic) WithDetails(paragraphs ...string) Diagnostic {
	d.Details = append(d.Details, paragraphs...)
	return d
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...TextEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
