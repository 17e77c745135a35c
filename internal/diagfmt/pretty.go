// Package diagfmt renders rule diagnostics for terminals and tools:
// pretty (excerpt with caret underline), short (one line per finding),
// JSON and SARIF 2.1.0.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"argus/internal/diag"
	"argus/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	ruleColor    = color.New(color.FgMagenta)
	headerColor  = color.New(color.Bold)
	gutterColor  = color.New(color.FgBlue)
	addColor     = color.New(color.FgGreen)
	delColor     = color.New(color.FgRed)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// ProjectPath labels findings that belong to no file.
const ProjectPath = "project"

// ProjectError converts a structural load or validation error into the
// single project-level entry every renderer shows for it.
func ProjectError(err error) diag.Diagnostic {
	return diag.New(diag.SevError, "project", source.Span{}, err.Error())
}

// locationString renders "<path>:<line>:<col>" for a diagnostic, or
// just the path when the span carries no position. File-less findings
// show up under the project label.
func locationString(d diag.Diagnostic, fs *source.FileSet) string {
	path := d.Path
	if path == "" {
		path = ProjectPath
	}
	if fs == nil || d.Primary.Empty() || int(d.Primary.File) >= fs.Len() {
		return path
	}
	start, _ := fs.Resolve(d.Primary)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func spanLocation(sp source.Span, path string, fs *source.FileSet) string {
	if path == "" {
		path = ProjectPath
	}
	if fs == nil || sp.Empty() || int(sp.File) >= fs.Len() {
		return path
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// Pretty renders diagnostics for humans. Expects the slice already
// sorted; each entry prints a location header, the source line with a
// caret underline, then details, notes and fixes per the options.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		return c.Sprint(s)
	}

	for i, d := range diags {
		if opts.Max > 0 && i == opts.Max {
			fmt.Fprintf(w, "... and %d more\n", len(diags)-opts.Max)
			return
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeOne(w, d, fs, opts, paint)
	}
}

func writeOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, paint func(*color.Color, string) string) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		paint(headerColor, locationString(d, fs)),
		paint(severityColor(d.Severity), d.Severity.String()),
		paint(ruleColor, d.Rule),
		d.Message,
	)

	if fs != nil && !d.Primary.Empty() && int(d.Primary.File) < fs.Len() {
		writeExcerpt(w, fs, d.Primary, d.Severity, opts, paint)
	}

	if opts.ShowDetails {
		for _, para := range d.Details {
			fmt.Fprintf(w, "  %s\n", para)
		}
	}

	for _, note := range d.Notes {
		fmt.Fprintf(w, "  note: %s: %s\n", spanLocation(note.Span, d.Path, fs), note.Msg)
	}

	if opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(w, "  fix #%d: %s\n", i+1, fix.Title)
			for _, edit := range fix.Edits {
				fmt.Fprintf(w, "    apply=%q at %s\n", edit.NewText, spanLocation(edit.Span, d.Path, fs))
				if opts.ShowPreview && fs != nil {
					if preview, err := buildFixEditPreview(fs, edit); err == nil {
						fmt.Fprintln(w, "    preview:")
						for _, line := range preview.before {
							fmt.Fprintf(w, "      %s\n", paint(delColor, "- "+line))
						}
						for _, line := range preview.after {
							fmt.Fprintf(w, "      %s\n", paint(addColor, "+ "+line))
						}
					}
				}
			}
		}
	}
}

// writeExcerpt prints the source lines around the span start and an
// underline row. Tabs are expanded before measuring so the caret stays
// aligned; wide runes are measured with their display width.
func writeExcerpt(w io.Writer, fs *source.FileSet, sp source.Span, sev diag.Severity, opts PrettyOpts, paint func(*color.Color, string) string) {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)

	first := start.Line
	if opts.Context > 0 && first > uint32(opts.Context) {
		first = start.Line - uint32(opts.Context)
	} else if opts.Context > 0 {
		first = 1
	}
	last := start.Line + uint32(max(opts.Context, 0))

	for line := first; line <= last; line++ {
		text := f.GetLine(line)
		if text == "" && line > start.Line {
			break
		}
		display := expandTabs(text)
		if opts.Width > 0 && runewidth.StringWidth(display) > opts.Width {
			display = runewidth.Truncate(display, opts.Width, "...")
		}
		fmt.Fprintf(w, "%s%s\n", paint(gutterColor, fmt.Sprintf("%4d | ", line)), display)

		if line != start.Line {
			continue
		}
		lineStart := lineStartOffset(f, line)
		prefix := expandTabs(text[:min(int(sp.Start-lineStart), len(text))])
		pad := runewidth.StringWidth(prefix)
		if opts.Width > 0 && pad >= opts.Width {
			continue
		}
		segEnd := int(sp.End - lineStart)
		if segEnd > len(text) {
			segEnd = len(text)
		}
		segment := expandTabs(text[min(int(sp.Start-lineStart), len(text)):segEnd])
		width := max(runewidth.StringWidth(segment), 1)
		underline := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s%s%s\n",
			paint(gutterColor, "     | "),
			strings.Repeat(" ", pad),
			paint(severityColor(sev), underline),
		)
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// WriteSummary prints the closing count line for pretty output.
func WriteSummary(w io.Writer, diags []diag.Diagnostic, colored bool) {
	var errs, warns, infos int
	for _, d := range diags {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	paint := func(c *color.Color, s string) string {
		if !colored {
			return s
		}
		return c.Sprint(s)
	}
	if errs+warns+infos == 0 {
		fmt.Fprintln(w, paint(addColor, "no problems found"))
		return
	}
	parts := make([]string, 0, 3)
	if errs > 0 {
		parts = append(parts, paint(errorColor, fmt.Sprintf("%d %s", errs, plural(errs, "error"))))
	}
	if warns > 0 {
		parts = append(parts, paint(warningColor, fmt.Sprintf("%d %s", warns, plural(warns, "warning"))))
	}
	if infos > 0 {
		parts = append(parts, paint(infoColor, fmt.Sprintf("%d %s", infos, plural(infos, "info"))))
	}
	fmt.Fprintf(w, "%s\n", strings.Join(parts, ", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
